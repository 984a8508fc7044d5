package netassoc

import "errors"

// Domain-specific errors for network association.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrProbeFailed is returned when the reachability probe cannot reach
	// its target.
	ErrProbeFailed = errors.New("netassoc: probe failed")

	// ErrCommandFailed is returned when an nmcli invocation fails.
	ErrCommandFailed = errors.New("netassoc: nmcli command failed")
)
