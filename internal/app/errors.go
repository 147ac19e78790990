package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidWindow = errors.New("window end not after start")
)
