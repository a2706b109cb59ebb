package flow

import "errors"

var (
	// ErrInvalidInput indicates the request failed validation before any
	// network call was issued.
	ErrInvalidInput = errors.New("invalid flow input")

	// ErrUpstream indicates the model backend returned a non-success
	// response or the call itself failed. Terminal; nothing retries.
	ErrUpstream = errors.New("model backend error")

	// ErrSchemaInvalid indicates the model output was empty or did not
	// match the required shape. Treated like an upstream failure.
	ErrSchemaInvalid = errors.New("model output failed schema validation")
)
