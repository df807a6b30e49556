// Package influxdb records channel readings in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking batched writes and health monitoring. Every
// numeric reading that passes through the bridge becomes one point in the
// channel_readings measurement, tagged by node, child, sensor type and
// origin (sensor, request or controller).
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteChannelReading(influxdb.ChannelReading{
//	    Node: 12, Child: 3, SensorType: "S_TEMP", Origin: "sensor", Value: 21.5,
//	})
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
