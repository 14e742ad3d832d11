package errors

import "errors"

// This package defines the sentinel errors shared by the relay. Services wrap
// them with fmt.Errorf("%w: ...") and the API layer maps them to HTTP status
// codes with errors.Is, so no package below the API knows about HTTP.

var (
	// ErrConfiguration signifies that the upstream base address or API key
	// is missing. It is raised before any network call is made.
	// This is mapped to a 500 Internal Server Error HTTP status.
	ErrConfiguration = errors.New("missing upstream configuration")

	// ErrInvalidCapability signifies that the caller asked for something
	// other than chat or image generation.
	// This is mapped to a 400 Bad Request HTTP status.
	ErrInvalidCapability = errors.New("invalid capability")

	// ErrValidation signifies that the request body failed validation.
	// This is mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream signifies a non-2xx answer from the upstream API. The
	// concrete error is usually a *relay.UpstreamError carrying the message
	// extracted from the upstream body.
	// This is mapped to a 500 Internal Server Error HTTP status.
	ErrUpstream = errors.New("upstream request failed")

	// ErrMalformedEvent signifies a stream line that could not be decoded.
	// It never leaves the relay: the line is skipped and streaming goes on.
	ErrMalformedEvent = errors.New("malformed stream event")

	// ErrDataShape signifies a successful upstream response that lacks an
	// expected field, e.g. an image response without a URL.
	// This is mapped to a 500 Internal Server Error HTTP status.
	ErrDataShape = errors.New("unexpected upstream response shape")

	// ErrInternal signifies an unexpected error on the server.
	ErrInternal = errors.New("internal server error")
)
