package user

import "errors"

var (
	// ErrMissingUserID indicates the caller identity was not supplied.
	ErrMissingUserID = errors.New("missing user id")
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
