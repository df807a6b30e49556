// Package registry holds the channel registry of the MySensors bridge.
//
// A channel is one quantity on one node, keyed by (node, child). Each
// channel remembers the Domoticz device it is mapped to, the last reading
// and when it changed. Several channels may share a device id; that is how
// composite weather devices are modelled.
//
// The registry lives in memory and is owned by the gateway loop goroutine;
// it is not safe for concurrent use. Store persists it as a single JSON
// array, compatible with the MySensors_DB.txt files of earlier controllers.
//
// NodeAllocator hands out node ids to nodes that request one. It is rebuilt
// from the registry at startup and never releases an id.
package registry
