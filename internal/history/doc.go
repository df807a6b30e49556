// Package history records channel reading changes in SQLite.
//
// Every change the gateway applies to the registry is appended with its
// origin: a sensor SET, a sensor REQ, or a controller change picked up by
// the reconciliation poller. The status API reads it back per channel.
//
// The table is created by the migrations package (reading_history).
package history
