package scoring

import "sort"

// NoEmail is shown for participants without an email on file.
const NoEmail = "No email"

// InclusionPolicy decides whether participants with no activity appear on the board.
type InclusionPolicy int

const (
	// IncludeInactive lists every participant, including those with no points and no approvals.
	IncludeInactive InclusionPolicy = iota
	// ExcludeInactive drops participants whose aggregate is not Active.
	ExcludeInactive
)

// Entry is one ranked row of the leaderboard.
type Entry struct {
	Aggregate
	Rank   int     `json:"rank"`
	Badges []Badge `json:"badges"`
}

// ViewerSummary is the requesting user's own position.
type ViewerSummary struct {
	Rank        int     `json:"rank"`
	TotalPoints int     `json:"total_points"`
	Badges      []Badge `json:"badges"`
}

// Leaderboard is the full ranked board plus the viewer's summary when the viewer is on it.
type Leaderboard struct {
	Entries []Entry        `json:"entries"`
	Viewer  *ViewerSummary `json:"viewer,omitempty"`
}

// Rank orders aggregates by total points descending and assigns ranks 1..N.
// Ties keep their input order. The input slice is not modified.
func Rank(aggregates []Aggregate) []Entry {
	sorted := make([]Aggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPoints > sorted[j].TotalPoints
	})

	entries := make([]Entry, len(sorted))
	for i, agg := range sorted {
		entries[i] = Entry{
			Aggregate: agg,
			Rank:      i + 1,
			Badges:    EvaluateBadges(agg.Stats()),
		}
	}
	return entries
}

// Build aggregates each participant's history, applies the inclusion policy, ranks the result and
// locates the viewer. histories is keyed by user id; a participant without an entry has no
// reflections. Participant order is the tie-break order.
func Build(participants []Participant, histories map[string][]ReflectionRecord, viewerID string, policy InclusionPolicy) Leaderboard {
	aggregates := make([]Aggregate, 0, len(participants))
	for _, p := range participants {
		if p.Email == "" {
			p.Email = NoEmail
		}
		agg := AggregateReflections(p, histories[p.UserID])
		if policy == ExcludeInactive && !agg.Active() {
			continue
		}
		aggregates = append(aggregates, agg)
	}

	board := Leaderboard{Entries: Rank(aggregates)}
	if viewerID == "" {
		return board
	}
	for _, e := range board.Entries {
		if e.UserID == viewerID {
			board.Viewer = &ViewerSummary{Rank: e.Rank, TotalPoints: e.TotalPoints, Badges: e.Badges}
			break
		}
	}
	return board
}
