package smoketest

import "errors"

// Sentinel kinds for smoke run failures.
var (
	ErrUnhealthy      = errors.New("service is not healthy")
	ErrCheckFailed    = errors.New("check failed")
	ErrUnexpectedHTTP = errors.New("unexpected response")
)
