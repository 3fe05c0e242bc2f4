package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrAllSourcesFailed      = errors.New("all listing sources failed")
	ErrNoEmbedFound          = errors.New("no embeddable stream found")
)
