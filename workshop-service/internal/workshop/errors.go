package workshop

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden indicates the caller's role or ownership does not allow the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a duplicate identifier collision.
	ErrConflict = errors.New("already exists")
	// ErrAlreadyRegistered indicates the learner is already registered for the workshop.
	ErrAlreadyRegistered = errors.New("already registered for workshop")
	// ErrNotRegistered indicates the learner must register before taking part in the workshop.
	ErrNotRegistered = errors.New("not registered for workshop")
	// ErrAlreadySubmitted indicates the learner already has a reflection for the lesson.
	ErrAlreadySubmitted = errors.New("reflection already submitted for lesson")
	// ErrAlreadyReviewed indicates the reflection is no longer pending.
	ErrAlreadyReviewed = errors.New("reflection already reviewed")
)
