package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// ReadingMeasurement is the measurement holding channel readings.
const ReadingMeasurement = "channel_readings"

// ChannelReading is one numeric reading of a channel.
type ChannelReading struct {
	Node       int
	Child      int
	SensorType string
	DeviceID   int
	Origin     string
	Value      float64
	Time       time.Time
}

// WriteChannelReading writes one channel reading to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Node, child, sensor type and origin are tags; the Domoticz device id is
// a tag only when the channel is mapped.
//
// Example:
//
//	client.WriteChannelReading(influxdb.ChannelReading{
//	    Node: 12, Child: 3, SensorType: "S_TEMP", Origin: "sensor",
//	    Value: 21.5, Time: time.Now(),
//	})
func (c *Client) WriteChannelReading(r ChannelReading) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(NewChannelReadingPoint(r))
	c.queued.Add(1)
}

// NewChannelReadingPoint builds the point written by WriteChannelReading.
func NewChannelReadingPoint(r ChannelReading) *write.Point {
	tags := map[string]string{
		"node":        strconv.Itoa(r.Node),
		"child":       strconv.Itoa(r.Child),
		"sensor_type": r.SensorType,
		"origin":      r.Origin,
	}
	if r.DeviceID != 0 {
		tags["device_id"] = strconv.Itoa(r.DeviceID)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	return write.NewPoint(
		ReadingMeasurement,
		tags,
		map[string]any{"value": r.Value},
		ts,
	)
}
