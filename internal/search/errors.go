package search

import "errors"

var (
	// ErrInvalidArgument marks programmer errors in value-object construction.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedDictionary marks a serialized form missing required keys.
	// The dictionary shape is a contract, not untrusted content.
	ErrMalformedDictionary = errors.New("malformed search dictionary")
)
