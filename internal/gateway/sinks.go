package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// ReadingEvent is one reading change applied to the registry.
type ReadingEvent struct {
	// Channel is a copy of the channel after the change.
	Channel registry.Channel

	// Origin tells which path produced the reading.
	Origin history.Origin
}

// NodeEvent is a node housekeeping change.
type NodeEvent struct {
	Node int    `json:"node"`
	Kind string `json:"event"`
	Info string `json:"info,omitempty"`
}

// Node event kinds.
const (
	NodeEventIDAssigned = "id_assigned"
	NodeEventSketchName = "sketch_name"
	NodeEventPresented  = "channel_presented"
)

// ReadingSink receives reading changes.
//
// HandleReading runs on the gateway loop and must not block for long.
type ReadingSink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// HandleReading processes one reading change.
	HandleReading(ctx context.Context, ev ReadingEvent) error
}

// NodeEventSink is implemented by sinks that also want node events.
type NodeEventSink interface {
	HandleNodeEvent(ctx context.Context, ev NodeEvent) error
}

// Maintainer is implemented by sinks with periodic housekeeping. The gateway
// calls Maintain on the snapshot cadence.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Publisher publishes MQTT messages. *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink publishes channel state as retained JSON messages.
type MQTTSink struct {
	pub    Publisher
	topics mqtt.Topics
	qos    byte
}

// NewMQTTSink creates a sink publishing under the given topic layout.
func NewMQTTSink(pub Publisher, topics mqtt.Topics, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topics: topics, qos: qos}
}

// channelStatePayload is the retained state message of a channel.
type channelStatePayload struct {
	Node       int    `json:"node"`
	Child      int    `json:"child"`
	SensorType string `json:"sensor_type"`
	DeviceID   int    `json:"device_id,omitempty"`
	DeviceType string `json:"device_type"`
	Reading    string `json:"reading"`
	Origin     string `json:"origin"`
	LastUpdate string `json:"last_update,omitempty"`
}

// Name returns "mqtt".
func (s *MQTTSink) Name() string { return "mqtt" }

// HandleReading publishes the channel state to <prefix>/state/<node>/<child>.
func (s *MQTTSink) HandleReading(_ context.Context, ev ReadingEvent) error {
	ch := ev.Channel
	msg := channelStatePayload{
		Node:       ch.Node,
		Child:      ch.Child,
		SensorType: ch.SensorType.String(),
		DeviceID:   ch.DeviceID,
		DeviceType: ch.DeviceType.String(),
		Reading:    ch.Reading,
		Origin:     string(ev.Origin),
	}
	if !ch.LastUpdate.IsZero() {
		msg.LastUpdate = ch.LastUpdate.UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling channel state: %w", err)
	}
	return s.pub.Publish(s.topics.ChannelState(ch.Node, ch.Child), payload, s.qos, true)
}

// HandleNodeEvent publishes a non-retained event to <prefix>/event/<node>.
func (s *MQTTSink) HandleNodeEvent(_ context.Context, ev NodeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling node event: %w", err)
	}
	return s.pub.Publish(s.topics.NodeEvent(ev.Node), payload, s.qos, false)
}

// PointWriter writes channel readings to a time-series store.
// *influxdb.Client satisfies it.
type PointWriter interface {
	WriteChannelReading(r influxdb.ChannelReading)
}

// InfluxSink writes numeric readings as InfluxDB points.
//
// Readings that are not numbers (text payloads, "On") are skipped.
type InfluxSink struct {
	w PointWriter
}

// NewInfluxSink creates a sink writing through w.
func NewInfluxSink(w PointWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

// Name returns "influxdb".
func (s *InfluxSink) Name() string { return "influxdb" }

// HandleReading queues a point for a numeric reading.
func (s *InfluxSink) HandleReading(_ context.Context, ev ReadingEvent) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(ev.Channel.Reading), 64)
	if err != nil {
		return nil //nolint:nilerr // non-numeric readings are not time series
	}
	ch := ev.Channel
	s.w.WriteChannelReading(influxdb.ChannelReading{
		Node:       ch.Node,
		Child:      ch.Child,
		SensorType: ch.SensorType.String(),
		DeviceID:   ch.DeviceID,
		Origin:     string(ev.Origin),
		Value:      value,
		Time:       ch.LastUpdate,
	})
	return nil
}

// HistoryRecorder stores history entries. *history.Repository satisfies it.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// HistorySink appends every reading change to the SQLite history.
type HistorySink struct {
	rec       HistoryRecorder
	retention time.Duration
}

// NewHistorySink creates a sink. A positive retention enables pruning in
// Maintain.
func NewHistorySink(rec HistoryRecorder, retention time.Duration) *HistorySink {
	return &HistorySink{rec: rec, retention: retention}
}

// Name returns "history".
func (s *HistorySink) Name() string { return "history" }

// HandleReading records the change.
func (s *HistorySink) HandleReading(ctx context.Context, ev ReadingEvent) error {
	ch := ev.Channel
	return s.rec.Record(ctx, history.Entry{
		Node:       ch.Node,
		Child:      ch.Child,
		SensorType: ch.SensorType.String(),
		DeviceID:   ch.DeviceID,
		Reading:    ch.Reading,
		Origin:     ev.Origin,
		RecordedAt: ch.LastUpdate,
	})
}

// Maintain drops entries older than the retention.
func (s *HistorySink) Maintain(ctx context.Context) error {
	if s.retention <= 0 {
		return nil
	}
	if _, err := s.rec.Prune(ctx, s.retention); err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}
	return nil
}
