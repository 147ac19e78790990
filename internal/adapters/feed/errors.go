package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	ErrBadPayload     = errors.New("upstream payload is not a valid entity feed")
)
