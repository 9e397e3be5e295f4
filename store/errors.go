package store

import "errors"

var (
	// ErrAlreadyExists is returned when creating a post whose id is already stored.
	ErrAlreadyExists = errors.New("store: post already exists")

	// ErrMissingID is returned when creating a post without an id.
	ErrMissingID = errors.New("store: post id is required")

	// ErrMissingCreatedAt is returned when creating a post without a creation time.
	ErrMissingCreatedAt = errors.New("store: post created_at is required")
)
