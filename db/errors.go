package db

import "errors"

var (
	// ErrNotFound is returned when a network or version is not in the store
	ErrNotFound = errors.New("not found")
)
