package progress

import "errors"

var (
	// ErrMissingUserID indicates a required user id was absent.
	ErrMissingUserID = errors.New("user id is required")
	// ErrNotFound indicates the requested user document does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrSourceUnavailable indicates the participant list or a reflection history could not be read.
	ErrSourceUnavailable = errors.New("leaderboard source unavailable")
)
