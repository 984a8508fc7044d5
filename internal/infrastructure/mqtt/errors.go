package mqtt

import "errors"

// Domain-specific errors for broker session operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when transmitting on a dead session.
	ErrNotConnected = errors.New("mqtt: session not connected")

	// ErrConnectFailed is returned when a connect attempt fails.
	ErrConnectFailed = errors.New("mqtt: connect failed")

	// ErrPublishFailed is returned when message transmission fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrMessageInFlight is returned by BeginMessage while a previous
	// message is still open.
	ErrMessageInFlight = errors.New("mqtt: message already in flight")

	// ErrNoMessage is returned by Write or EndMessage without a
	// preceding BeginMessage.
	ErrNoMessage = errors.New("mqtt: no message in flight")
)
