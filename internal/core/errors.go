package core

import "errors"

var (
	// ErrMalformedResponse is returned when the agent body is neither the idle
	// sentinel nor a JSON array of results
	ErrMalformedResponse = errors.New("malformed scan response")
	// ErrUnexpectedStatus is returned when the agent answers with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected agent status")
	// ErrMalformedItem marks a single result that is missing required fields
	ErrMalformedItem = errors.New("malformed scan result")
)
