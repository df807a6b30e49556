package mqtt

import "errors"

var (
	// ErrConnectionFailed wraps the failure of the first connect.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected is returned while the broker link is down.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrPublishFailed wraps broker rejections, ack timeouts and oversized
	// payloads.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	ErrInvalidQoS   = errors.New("mqtt: qos must be 0, 1 or 2")
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
