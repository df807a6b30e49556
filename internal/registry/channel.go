package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
)

// Node id bounds.
const (
	// MinNodeID is the lowest id a sensor node can have.
	MinNodeID = 1

	// MaxNodeID is the highest id a sensor node can have. Node 255 is the
	// broadcast/unassigned id and node 0 is the gateway.
	MaxNodeID = 254
)

// TimestampLayout is the snapshot format of LastUpdate, in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// Key identifies a channel.
type Key struct {
	Node  int
	Child int
}

// String returns "node/child".
func (k Key) String() string {
	return strconv.Itoa(k.Node) + "/" + strconv.Itoa(k.Child)
}

// Channel is one sensor or actuator on a node and its Domoticz mapping.
type Channel struct {
	// Node is the node id, 1..254.
	Node int

	// Child is the sensor id within the node.
	Child int

	// SensorType is the presentation type the node announced.
	SensorType mysensors.SensorType

	// DeviceID is the Domoticz device idx. Zero means not provisioned.
	DeviceID int

	// DeviceType is fixed when the channel is created and never recomputed
	// from SensorType.
	DeviceType domoticz.DeviceType

	// Reading is the last known value as text.
	Reading string

	// LastUpdate is when Reading last changed, at second resolution.
	// The zero time means never.
	LastUpdate time.Time

	// NodeInfo is the sketch name reported by the node.
	NodeInfo string
}

// Key returns the registry key of the channel.
func (c *Channel) Key() Key {
	return Key{Node: c.Node, Child: c.Child}
}

// Mapped reports whether the channel is backed by a Domoticz device.
func (c *Channel) Mapped() bool {
	return c.DeviceID != 0
}

// channelJSON is the snapshot record layout.
type channelJSON struct {
	Node       int                  `json:"Node"`
	Child      int                  `json:"Child"`
	Type       mysensors.SensorType `json:"Type"`
	DeviceID   snapshotInt          `json:"Domoticz_id"`
	DeviceType domoticz.DeviceType  `json:"Dcz_Type"`
	LastUpdate *string              `json:"LastUpdate"`
	Reading    snapshotText         `json:"Reading"`
	NodeInfo   string               `json:"NodeInfo,omitempty"`
}

// MarshalJSON encodes the channel in the snapshot record layout.
func (c Channel) MarshalJSON() ([]byte, error) {
	rec := channelJSON{
		Node:       c.Node,
		Child:      c.Child,
		Type:       c.SensorType,
		DeviceID:   snapshotInt(c.DeviceID),
		DeviceType: c.DeviceType,
		Reading:    snapshotText(c.Reading),
		NodeInfo:   c.NodeInfo,
	}
	if !c.LastUpdate.IsZero() {
		s := c.LastUpdate.In(time.Local).Format(TimestampLayout)
		rec.LastUpdate = &s
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes a snapshot record.
//
// Records written by older controllers are accepted: numeric readings,
// string or null device ids and null timestamps.
func (c *Channel) UnmarshalJSON(data []byte) error {
	var rec channelJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	ch := Channel{
		Node:       rec.Node,
		Child:      rec.Child,
		SensorType: rec.Type,
		DeviceID:   int(rec.DeviceID),
		DeviceType: rec.DeviceType,
		Reading:    string(rec.Reading),
		NodeInfo:   rec.NodeInfo,
	}
	if rec.LastUpdate != nil && *rec.LastUpdate != "" {
		t, err := time.ParseInLocation(TimestampLayout, *rec.LastUpdate, time.Local)
		if err != nil {
			return fmt.Errorf("channel %d/%d: LastUpdate: %w", rec.Node, rec.Child, err)
		}
		ch.LastUpdate = t
	}

	*c = ch
	return nil
}

// snapshotInt accepts a number, a numeric string or null.
type snapshotInt int

func (n *snapshotInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(string(bytes.Trim(data, `"`)))
	if err != nil {
		return fmt.Errorf("decoding device id %s: %w", data, err)
	}
	*n = snapshotInt(v)
	return nil
}

// snapshotText accepts a string, a number or null.
type snapshotText string

func (s *snapshotText) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = snapshotText(str)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("decoding reading %s: %w", data, err)
		}
		*s = snapshotText(num.String())
	}
	return nil
}
