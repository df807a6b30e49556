package gateway

import (
	"context"
	"net/url"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// Logger is the structured logger used by the gateway.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Controller is the part of the Domoticz API the dispatcher uses.
// *domoticz.Client satisfies it.
type Controller interface {
	// DeviceValue returns the textual value of a device.
	DeviceValue(ctx context.Context, deviceID int) (string, error)

	// Send performs an update built by domoticz.BuildUpdate.
	Send(ctx context.Context, query url.Values) error

	// CreateDevice provisions a virtual device and returns its idx.
	CreateDevice(ctx context.Context, deviceType domoticz.DeviceType) (int, error)
}

// SwitchLister lists the controller's switch devices for reconciliation.
// *domoticz.Client satisfies it.
type SwitchLister interface {
	Switches(ctx context.Context) ([]domoticz.SwitchStatus, error)
}

// LineWriter sends one telegram line to the sensor network.
type LineWriter interface {
	// WriteLine writes line plus the delimiter, blocking until done.
	WriteLine(line string) error
}

// Transport is the character stream to the serial gateway.
// *serialport.Transport satisfies it.
type Transport interface {
	LineWriter

	// ReadLine returns the next complete line without blocking the loop.
	// ok is false when no line is available yet.
	ReadLine() (line string, ok bool, err error)
}

// SnapshotStore persists the whole registry. *registry.Store satisfies it.
type SnapshotStore interface {
	Save(r *registry.Registry) error
}
