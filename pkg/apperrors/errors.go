package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrSearchDisabled    = errors.New("search store is not enabled")
	ErrSearchUnavailable = errors.New("search store unavailable")
)
