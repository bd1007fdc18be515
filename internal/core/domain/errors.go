package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateRequest = errors.New("duplicate request")
)
