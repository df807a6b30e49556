package mqtt

import (
	"strconv"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "mysensors"

// Topics builds the bridge's MQTT topics under a common prefix.
//
//	topics := mqtt.NewTopics("home/mysensors")
//	topics.ChannelState(12, 3) // "home/mysensors/state/12/3"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder. Surrounding slashes are trimmed and an
// empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// ChannelState returns the retained state topic of one channel.
//
// Example: mysensors/state/12/3
func (t Topics) ChannelState(node, child int) string {
	return t.prefix + "/state/" + strconv.Itoa(node) + "/" + strconv.Itoa(child)
}

// NodeEvent returns the topic for node level events such as a sketch name
// report or an id assignment.
//
// Example: mysensors/event/12
func (t Topics) NodeEvent(node int) string {
	return t.prefix + "/event/" + strconv.Itoa(node)
}

// Status returns the retained bridge status topic, also used for LWT.
//
// Example: mysensors/status
func (t Topics) Status() string {
	return t.prefix + "/status"
}

// AllChannelStates returns a wildcard matching every channel state topic.
//
// Example: mysensors/state/#
func (t Topics) AllChannelStates() string {
	return t.prefix + "/state/#"
}
