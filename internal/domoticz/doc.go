// Package domoticz is the controller side of the MySensors bridge.
//
// It holds the Domoticz virtual device type table, the static mapping from
// MySensors presentation types to device types, an HTTP client for the
// Domoticz JSON API (json.htm) and the update translator that turns the last
// known channel readings of a device into a single device update.
//
// # Composite devices
//
// MySensors presents one physical quantity per child. Domoticz models
// weather sensors as one device carrying temperature, humidity and
// barometric pressure. Several registry channels sharing one Domoticz device
// id are combined by BuildUpdate into one "udevice" command:
//
//	D_T_H:   svalue=TEMP;HUM;HUM_STAT
//	D_T_H_B: svalue=TEMP;HUM;HUM_STAT;BARO;FORECAST
//
// Missing sub-values are sent as 0.
//
// # Errors
//
// Transport and decoding failures are reported as ErrUnavailable and
// ErrBadResponse. Callers log them and drop the dependent action; the client
// never retries.
package domoticz
