package rule

import "errors"

// Sentinel kinds for rule errors.
var (
	ErrInvalidDayIndex = errors.New("anchor day outside 0..6")
	ErrUnknownKind     = errors.New("unknown recurrence kind")
)
