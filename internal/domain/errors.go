package domain

import "errors"

var (
	// ErrNotFound reports that geocoding or a place lookup found nothing.
	ErrNotFound = errors.New("location not found")

	// ErrInvalidRequest reports caller input that cannot be processed.
	ErrInvalidRequest = errors.New("invalid request")
)
