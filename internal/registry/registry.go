package registry

import (
	"fmt"
	"sort"
	"time"
)

// Registry is the in-memory channel table.
//
// Channels are kept in insertion order; lookups by key and by device id go
// through indexes. Pointers returned by Get and ByDeviceID stay valid for
// the lifetime of the registry and may be mutated only through Registry
// methods.
//
// Thread Safety:
//   - Not safe for concurrent use. The gateway loop owns the registry and
//     publishes copies (see Snapshot) for other goroutines.
type Registry struct {
	channels []*Channel
	byKey    map[Key]*Channel
	byDevice map[int][]*Channel
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byKey:    make(map[Key]*Channel),
		byDevice: make(map[int][]*Channel),
	}
}

// FromChannels builds a registry from decoded snapshot records.
//
// Returns:
//   - *Registry: Registry holding the channels in order
//   - error: ErrInvalidNode or ErrDuplicateChannel for the first bad record
func FromChannels(channels []Channel) (*Registry, error) {
	r := New()
	for _, ch := range channels {
		if _, err := r.Add(ch); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Len returns the number of channels.
func (r *Registry) Len() int {
	return len(r.channels)
}

// Get returns the channel with the given key.
func (r *Registry) Get(node, child int) (*Channel, bool) {
	ch, ok := r.byKey[Key{Node: node, Child: child}]
	return ch, ok
}

// Add registers a new channel.
//
// Parameters:
//   - ch: Channel to add; its key must be unused
//
// Returns:
//   - *Channel: The stored channel
//   - error: ErrInvalidNode or ErrDuplicateChannel
func (r *Registry) Add(ch Channel) (*Channel, error) {
	if ch.Node < MinNodeID || ch.Node > MaxNodeID {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNode, ch.Node)
	}
	key := ch.Key()
	if _, exists := r.byKey[key]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateChannel, key)
	}

	stored := &ch
	r.channels = append(r.channels, stored)
	r.byKey[key] = stored
	if stored.Mapped() {
		r.byDevice[stored.DeviceID] = append(r.byDevice[stored.DeviceID], stored)
	}
	return stored, nil
}

// SetReading stores a new reading for a channel, stamped at now truncated
// to the second.
//
// Returns:
//   - *Channel: The updated channel
//   - error: ErrChannelNotFound
func (r *Registry) SetReading(node, child int, reading string, now time.Time) (*Channel, error) {
	ch, ok := r.Get(node, child)
	if !ok {
		return nil, fmt.Errorf("%w: %d/%d", ErrChannelNotFound, node, child)
	}
	ch.Reading = reading
	ch.LastUpdate = now.Truncate(time.Second)
	return ch, nil
}

// SetDeviceReading stores the same reading on every channel of a device.
//
// Returns:
//   - []*Channel: Updated channels in insertion order, empty if none match
func (r *Registry) SetDeviceReading(deviceID int, reading string, now time.Time) []*Channel {
	channels := r.ByDeviceID(deviceID)
	stamp := now.Truncate(time.Second)
	for _, ch := range channels {
		ch.Reading = reading
		ch.LastUpdate = stamp
	}
	return channels
}

// ByDeviceID returns the channels mapped to a Domoticz device in insertion
// order. Device id 0 never matches.
func (r *Registry) ByDeviceID(deviceID int) []*Channel {
	if deviceID == 0 {
		return nil
	}
	return r.byDevice[deviceID]
}

// SetNodeInfo attaches info to every channel of a node.
//
// Returns:
//   - int: Number of channels updated
func (r *Registry) SetNodeInfo(node int, info string) int {
	n := 0
	for _, ch := range r.channels {
		if ch.Node == node {
			ch.NodeInfo = info
			n++
		}
	}
	return n
}

// Nodes returns the distinct node ids in ascending order.
func (r *Registry) Nodes() []int {
	seen := make(map[int]struct{})
	for _, ch := range r.channels {
		seen[ch.Node] = struct{}{}
	}
	nodes := make([]int, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return nodes
}

// Snapshot returns a copy of every channel in insertion order.
func (r *Registry) Snapshot() []Channel {
	out := make([]Channel, len(r.channels))
	for i, ch := range r.channels {
		out[i] = *ch
	}
	return out
}
