package publish

import "errors"

// Domain-specific errors for payload publishing.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnsupportedValue is returned when a document field holds a
	// non-scalar value.
	ErrUnsupportedValue = errors.New("publish: unsupported field value")

	// ErrEncodeMismatch is returned when the measured payload size and the
	// written payload size disagree. Indicates a bug, never bad input.
	ErrEncodeMismatch = errors.New("publish: measured size mismatch")

	// ErrEmptyTopic is returned when a publish targets an empty channel.
	ErrEmptyTopic = errors.New("publish: topic cannot be empty")

	// ErrPublishFailed wraps broker-session failures during transmission.
	ErrPublishFailed = errors.New("publish: transmission failed")
)
