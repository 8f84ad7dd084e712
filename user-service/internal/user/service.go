package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/events"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/pubsub"
)

var validate = validator.New()

type service struct {
	repo      Repository
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewService creates a new user service
func NewService(repo Repository, publisher pubsub.Publisher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = pubsub.NewLogPublisher(logger)
	}
	return &service{repo: repo, publisher: publisher, logger: logger}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}

	var (
		profile  *Profile
		metadata ProfileMetadata
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.repo.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		m, err := s.repo.GetProfileMetadata(ctx, userID)
		if err != nil {
			return err
		}
		metadata = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildProfileResponse(profile, metadata), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, updates ProfileUpdateInput) (*ProfileResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	if updates.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	updates = normalizeUpdate(updates)
	if err := validateStruct(updates); err != nil {
		return nil, err
	}

	var (
		updated  *Profile
		metadata ProfileMetadata
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.repo.UpsertProfile(ctx, userID, updates)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})

	g.Go(func() error {
		m, err := s.repo.GetProfileMetadata(ctx, userID)
		if err != nil {
			return err
		}
		metadata = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildProfileResponse(updated, metadata), nil
}

func (s *service) SelectRole(ctx context.Context, userID string, selection RoleSelection) (*ProfileResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	selection.Role = strings.TrimSpace(selection.Role)
	selection.Email = strings.TrimSpace(selection.Email)
	if err := validateStruct(selection); err != nil {
		return nil, err
	}

	profile, err := s.repo.SetRole(ctx, userID, selection)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, pubsub.TopicUserEvents, userID, events.TypeUserRoleSelected, events.UserRoleSelected{
		UserID: userID,
		Email:  profile.Email,
		Role:   profile.Role,
	}); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "type", events.TypeUserRoleSelected, "error", err)
	}

	metadata, err := s.repo.GetProfileMetadata(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildProfileResponse(profile, metadata), nil
}

func defaultProfile(userID string) *Profile {
	return &Profile{UserID: userID, Skills: []string{}}
}

func buildProfileResponse(profile *Profile, metadata ProfileMetadata) *ProfileResponse {
	resp := &ProfileResponse{Profile: *profile, ProfileMetadata: metadata}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	return resp
}

func normalizeUpdate(in ProfileUpdateInput) ProfileUpdateInput {
	in.DisplayName = trimPtr(in.DisplayName)
	in.Bio = trimPtr(in.Bio)
	in.Location = trimPtr(in.Location)
	in.LinkedIn = trimPtr(in.LinkedIn)
	if in.Skills != nil {
		skills := normalizeSkills(*in.Skills)
		in.Skills = &skills
	}
	return in
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

// normalizeSkills trims entries and drops blanks and exact duplicates, preserving order.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, "; "))
}
