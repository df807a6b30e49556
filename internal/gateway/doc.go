// Package gateway is the translation engine between a MySensors serial
// gateway and Domoticz.
//
// Three parts share the channel registry:
//
//   - Dispatcher interprets one inbound telegram: it updates the registry,
//     pushes device updates to the controller, provisions devices for newly
//     presented channels and answers time, id and value requests.
//   - Poller reconciles switch devices changed on the controller side (a
//     light toggled in the Domoticz UI) back into the sensor network.
//   - Gateway runs both from a single loop goroutine together with the
//     periodic registry snapshot.
//
// Thread Safety:
//   - The registry and node allocator are owned by the loop goroutine and
//     are never locked. Other goroutines (the status API) read the View,
//     a copy published after every iteration that changed the registry.
//
// Reading changes are fanned out to ReadingSinks (MQTT, InfluxDB, SQLite
// history). Sink failures are logged and counted; they never affect the
// registry or the controller.
package gateway
