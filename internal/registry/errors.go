package registry

import "errors"

// Domain errors for the registry.
var (
	// ErrInvalidNode is returned for node ids outside 1..254.
	ErrInvalidNode = errors.New("registry: invalid node id")

	// ErrDuplicateChannel is returned when a (node, child) key is added twice.
	ErrDuplicateChannel = errors.New("registry: channel already registered")

	// ErrChannelNotFound is returned when no channel has the requested key.
	ErrChannelNotFound = errors.New("registry: channel not found")

	// ErrCorruptSnapshot is returned when a snapshot file cannot be decoded.
	ErrCorruptSnapshot = errors.New("registry: corrupt snapshot")

	// ErrNodeIDsExhausted is returned by Allocate when every node id is in use.
	ErrNodeIDsExhausted = errors.New("registry: node ids exhausted")
)
