package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotAvailable indicates a required capability (retrieval chain, vector
	// store, model backend) could not be obtained for this request
	ErrNotAvailable = errors.New("service not available")
	// ErrNoSignal indicates the input yielded no usable signal (no keywords,
	// empty extracted text); callers should ask for more input
	ErrNoSignal = errors.New("no usable signal in input")
	// ErrMissingCredential indicates a required API credential is absent from
	// the process configuration
	ErrMissingCredential = errors.New("missing API credential")
)
