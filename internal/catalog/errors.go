package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the identifier is unknown to both store and provider.
	ErrNotFound = errors.New("movie not found")

	// ErrConfiguration indicates the provider credential is missing or rejected.
	ErrConfiguration = errors.New("provider not configured")

	// ErrInvalidRecord indicates a provider payload that cannot be normalized.
	ErrInvalidRecord = errors.New("invalid provider record")

	// ErrEmptyCriteria rejects a criteria purge with no criteria set.
	ErrEmptyCriteria = errors.New("purge criteria must not be empty")
)

// FetchError wraps a failed provider call.
type FetchError struct {
	Op  string // "search" or "detail"
	Key string // search term or IMDb id
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("provider %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ItemError records one failed item of a batch detail fetch.
type ItemError struct {
	IMDBID string
	Err    error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.IMDBID, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }
