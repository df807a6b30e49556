package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// DispatcherOptions holds the dependencies of a Dispatcher.
type DispatcherOptions struct {
	// Registry is the channel table. Required.
	Registry *registry.Registry

	// Allocator tracks node ids. Defaults to one derived from Registry.
	Allocator *registry.NodeAllocator

	// Controller is the Domoticz API. Required.
	Controller Controller

	// Writer sends reply telegrams. Required.
	Writer LineWriter

	// Sinks receive reading changes. Optional.
	Sinks []ReadingSink

	// Logger is optional.
	Logger Logger

	// Metrics is optional.
	Metrics *Metrics

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// LocalTime makes time replies carry local wall-clock seconds instead
	// of the Unix epoch.
	LocalTime bool
}

// Dispatcher interprets inbound telegrams against the registry.
//
// Thread Safety:
//   - Not safe for concurrent use; called from the gateway loop only.
type Dispatcher struct {
	component
	alloc     *registry.NodeAllocator
	ctrl      Controller
	localTime bool
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("telegram writer is required")
	}

	alloc := opts.Allocator
	if alloc == nil {
		alloc = registry.NewNodeAllocatorFrom(opts.Registry)
	}

	return &Dispatcher{
		component: newComponent(opts.Registry, opts.Writer, opts.Sinks,
			opts.Logger, opts.Metrics, opts.Now),
		alloc:     alloc,
		ctrl:      opts.Controller,
		localTime: opts.LocalTime,
	}, nil
}

// Dispatch applies one telegram.
//
// Acknowledgements and unknown or out-of-scope message types are ignored.
// A failed controller call or reply write does not undo the registry
// change that preceded it; the failure is returned for logging.
//
// Parameters:
//   - ctx: Context for controller calls
//   - t: Parsed inbound telegram
//
// Returns:
//   - error: Controller, transport or allocation failure, nil otherwise
func (d *Dispatcher) Dispatch(ctx context.Context, t mysensors.Telegram) error {
	if t.IsAck() {
		return nil
	}

	switch t.Type {
	case mysensors.Set:
		return d.handleSet(ctx, t)
	case mysensors.Req:
		return d.handleReq(ctx, t)
	case mysensors.Internal:
		return d.handleInternal(ctx, t)
	case mysensors.Presentation:
		return d.handlePresentation(ctx, t)
	case mysensors.Stream:
		d.logger.Debug("stream telegram ignored", "node", t.Node)
		return nil
	default:
		d.logger.Debug("unknown message type ignored", "telegram", t.String())
		return nil
	}
}

// handleSet stores a reported value and forwards it to the mapped device.
func (d *Dispatcher) handleSet(ctx context.Context, t mysensors.Telegram) error {
	ch, err := d.reg.SetReading(t.Node, t.Child, t.Payload, d.now())
	if err != nil {
		d.logger.Debug("value for unknown channel ignored",
			"node", t.Node, "child", t.Child, "value_type", t.ValueType().String())
		return nil
	}
	d.changed = true
	d.notify(ctx, ch, history.OriginSensor)

	if !ch.Mapped() {
		return nil
	}
	return d.updateDevice(ctx, ch.DeviceID)
}

// updateDevice pushes the readings of every channel sharing deviceID.
func (d *Dispatcher) updateDevice(ctx context.Context, deviceID int) error {
	channels := d.reg.ByDeviceID(deviceID)
	if len(channels) == 0 {
		return nil
	}

	readings := make([]domoticz.ChannelReading, len(channels))
	for i, ch := range channels {
		readings[i] = domoticz.ChannelReading{Sensor: ch.SensorType, Reading: ch.Reading}
	}
	query := domoticz.BuildUpdate(deviceID, channels[0].DeviceType, readings)

	if err := d.ctrl.Send(ctx, query); err != nil {
		d.metrics.controllerError("update")
		return fmt.Errorf("updating device %d: %w", deviceID, err)
	}
	return nil
}

// handleReq answers a node asking for the controller's value.
func (d *Dispatcher) handleReq(ctx context.Context, t mysensors.Telegram) error {
	ch, err := d.reg.SetReading(t.Node, t.Child, t.Payload, d.now())
	if err != nil {
		d.logger.Debug("request for unknown channel ignored", "node", t.Node, "child", t.Child)
		return nil
	}
	d.changed = true
	d.notify(ctx, ch, history.OriginRequest)

	if !ch.Mapped() {
		d.logger.Info("request for channel without device", "channel", ch.Key().String())
		return nil
	}

	value, err := d.ctrl.DeviceValue(ctx, ch.DeviceID)
	if err != nil {
		d.metrics.controllerError("read")
		return fmt.Errorf("reading device %d for %s: %w", ch.DeviceID, ch.Key(), err)
	}

	reply := mysensors.NewSetTelegram(t.Node, t.Child, t.ValueType(), false, value)
	if err := d.send(reply.String()); err != nil {
		return fmt.Errorf("replying to %s: %w", ch.Key(), err)
	}
	return nil
}

// handleInternal covers time, id and sketch name messages.
func (d *Dispatcher) handleInternal(ctx context.Context, t mysensors.Telegram) error {
	switch t.InternalType() {
	case mysensors.InternalTime:
		reply := mysensors.NewInternalTelegram(t.Node, t.Child, mysensors.InternalTime,
			strconv.FormatInt(d.epoch(), 10))
		reply.Ack = 1
		if err := d.send(reply.String()); err != nil {
			return fmt.Errorf("sending time to node %d: %w", t.Node, err)
		}
		return nil

	case mysensors.InternalIDRequest:
		return d.assignNodeID(ctx, t)

	case mysensors.InternalSketchName:
		n := d.reg.SetNodeInfo(t.Node, t.Payload)
		if n > 0 {
			d.changed = true
		}
		d.logger.Info("sketch name reported", "node", t.Node, "sketch", t.Payload, "channels", n)
		d.notifyNode(ctx, NodeEvent{Node: t.Node, Kind: NodeEventSketchName, Info: t.Payload})
		return nil

	case mysensors.InternalGatewayReady:
		d.logger.Info("serial gateway ready", "message", t.Payload)
		return nil

	default:
		d.logger.Debug("internal message ignored",
			"node", t.Node, "subtype", t.InternalType().String(), "payload", t.Payload)
		return nil
	}
}

// epoch returns the time reply payload.
func (d *Dispatcher) epoch() int64 {
	now := d.now()
	if !d.localTime {
		return now.Unix()
	}
	_, offset := now.Zone()
	return now.Unix() + int64(offset)
}

// assignNodeID hands the next free id to a node without one.
func (d *Dispatcher) assignNodeID(ctx context.Context, t mysensors.Telegram) error {
	id, err := d.alloc.Allocate()
	if err != nil {
		return fmt.Errorf("assigning node id: %w", err)
	}

	reply := mysensors.NewInternalTelegram(t.Node, t.Child, mysensors.InternalIDResponse, strconv.Itoa(id))
	d.logger.Info("node id assigned", "node_id", id, "free", d.alloc.Free())
	d.notifyNode(ctx, NodeEvent{Node: id, Kind: NodeEventIDAssigned})
	if err := d.send(reply.String()); err != nil {
		return fmt.Errorf("sending node id %d: %w", id, err)
	}
	return nil
}

// handlePresentation registers a newly announced channel and provisions its
// Domoticz device.
func (d *Dispatcher) handlePresentation(ctx context.Context, t mysensors.Telegram) error {
	if !d.alloc.IsUsed(t.Node) {
		d.logger.Debug("presentation from unknown node ignored", "node", t.Node)
		return nil
	}
	if t.Child == mysensors.NodeLevelChild {
		d.logger.Debug("node presentation ignored", "node", t.Node, "sensor", t.SensorType().String())
		return nil
	}
	sensor := t.SensorType()
	if !sensor.Known() {
		d.logger.Debug("unknown sensor type ignored", "node", t.Node, "child", t.Child, "sensor", int(sensor))
		return nil
	}
	if _, ok := d.reg.Get(t.Node, t.Child); ok {
		d.logger.Debug("channel already present", "node", t.Node, "child", t.Child)
		return nil
	}

	deviceType := domoticz.DeviceTypeFor(sensor)

	var deviceID int
	var createErr error
	if deviceType != domoticz.DeviceNone {
		deviceID, createErr = d.ctrl.CreateDevice(ctx, deviceType)
		if createErr != nil {
			deviceID = 0
			d.metrics.controllerError("create")
			createErr = fmt.Errorf("creating %s device for %d/%d: %w", deviceType, t.Node, t.Child, createErr)
		}
	}

	ch, err := d.reg.Add(registry.Channel{
		Node:       t.Node,
		Child:      t.Child,
		SensorType: sensor,
		DeviceID:   deviceID,
		DeviceType: deviceType,
	})
	if err != nil {
		return errors.Join(createErr, fmt.Errorf("registering channel: %w", err))
	}
	d.changed = true

	d.logger.Info("channel registered",
		"channel", ch.Key().String(),
		"sensor", sensor.String(),
		"device_id", deviceID,
		"device_type", deviceType.String())
	d.notifyNode(ctx, NodeEvent{Node: t.Node, Kind: NodeEventPresented, Info: ch.Key().String()})
	return createErr
}
