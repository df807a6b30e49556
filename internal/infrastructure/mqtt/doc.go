// Package mqtt mirrors gateway readings to an MQTT broker.
//
// Domoticz stays the controller; the broker is an optional observer feed.
// Topics live under a configurable prefix:
//
//	<prefix>/state/<node>/<child>   retained channel state (JSON)
//	<prefix>/event/<node>           node events (JSON)
//	<prefix>/status                 retained online/offline document and will
//
// Typical use:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.PublishRetained(client.Topics().ChannelState(12, 3), payload)
package mqtt
