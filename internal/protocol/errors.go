package protocol

import "errors"

// Sentinel errors for the failure modes named in the specification's
// error handling design. Callers compare with errors.Is.
var (
	// ErrMalformedFrame means a frame was too short for its declared
	// type, carried an unknown type byte's payload that could not be
	// interpreted, or had an inconsistent length prefix.
	ErrMalformedFrame = errors.New("protocol: malformed frame")

	// ErrUnknownAgent means a public request named an agent-id with no
	// open duplex channel registered.
	ErrUnknownAgent = errors.New("protocol: unknown agent")

	// ErrTimeout means a pending request was not fulfilled within its
	// deadline.
	ErrTimeout = errors.New("protocol: request timed out")

	// ErrInvalidUpgrade means a duplex channel upgrade request was
	// missing the clientId query parameter.
	ErrInvalidUpgrade = errors.New("protocol: missing clientId")
)
