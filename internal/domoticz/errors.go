package domoticz

import "errors"

// Domain errors for the Domoticz client.
var (
	// ErrUnavailable is returned when the Domoticz server cannot be reached.
	ErrUnavailable = errors.New("domoticz: server unavailable")

	// ErrBadResponse is returned when Domoticz answers with an HTTP error,
	// undecodable JSON or a non-OK status.
	ErrBadResponse = errors.New("domoticz: bad response")

	// ErrDeviceNotFound is returned when a device query returns no result.
	ErrDeviceNotFound = errors.New("domoticz: device not found")

	// ErrUnsupportedDeviceType is returned when a device cannot be created
	// for the requested type.
	ErrUnsupportedDeviceType = errors.New("domoticz: unsupported device type")

	// ErrCreateUnconfirmed is returned when a virtual sensor was created but
	// the new device could not be identified.
	ErrCreateUnconfirmed = errors.New("domoticz: created device not found")
)
