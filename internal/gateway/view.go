package gateway

import (
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// View is a read-only copy of the registry for other goroutines.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type View struct {
	mu        sync.RWMutex
	channels  []registry.Channel
	index     map[registry.Key]int
	updatedAt time.Time
}

// NewView creates an empty view.
func NewView() *View {
	return &View{index: make(map[registry.Key]int)}
}

// update replaces the view contents with channels, which it takes ownership of.
func (v *View) update(channels []registry.Channel, at time.Time) {
	index := make(map[registry.Key]int, len(channels))
	for i := range channels {
		index[channels[i].Key()] = i
	}

	v.mu.Lock()
	v.channels = channels
	v.index = index
	v.updatedAt = at
	v.mu.Unlock()
}

// Channels returns a copy of every channel in registry order.
func (v *View) Channels() []registry.Channel {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]registry.Channel, len(v.channels))
	copy(out, v.channels)
	return out
}

// Channel returns one channel.
func (v *View) Channel(node, child int) (registry.Channel, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i, ok := v.index[registry.Key{Node: node, Child: child}]
	if !ok {
		return registry.Channel{}, false
	}
	return v.channels[i], true
}

// Len returns the number of channels.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.channels)
}

// UpdatedAt returns when the view was last published, zero if never.
func (v *View) UpdatedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.updatedAt
}
