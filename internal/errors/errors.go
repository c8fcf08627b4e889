package errors

import (
	"errors"
)

// indicates an unrecoverable error from the model provider
var ErrPermanentFailure = errors.New("permanent failure, do not retry")

// request is missing a field or carries an unusable value
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidDocument = errors.New("invalid pdf document")
	ErrEmptyDocument   = errors.New("document has no pages")
)

// model returned no text
var ErrEmptyResponse = errors.New("model returned empty response")
