package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrInvalidRecord = errors.New("invalid wire record")
)
