package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidScore = errors.New("score must be a cosine similarity in [-1, 1]")
	ErrEmptyContent = errors.New("content cannot be empty")
)
