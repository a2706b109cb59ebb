package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the store rejects the session's
	// credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream is returned when the backing store fails or the network
	// call itself fails
	ErrUpstream = errors.New("upstream store error")
)
