package common

import "errors"

// Service error taxonomy. Handlers map these onto HTTP status codes at the
// boundary; services wrap them with fmt.Errorf("%w") for detail.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrInvalidMessage      = errors.New("message needs a body or an attachment")
	ErrInvalidAttachment   = errors.New("invalid attachment")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrEmptyCohort         = errors.New("cohort resolved to no recipients")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
