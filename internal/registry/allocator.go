package registry

// NodeAllocator hands out sensor node ids.
//
// The table covers ids 1..MaxNodeID; an id once marked is never released.
//
// Thread Safety:
//   - Not safe for concurrent use; owned by the gateway loop like Registry.
type NodeAllocator struct {
	used [MaxNodeID + 1]bool
}

// NewNodeAllocator creates an allocator with every id free.
func NewNodeAllocator() *NodeAllocator {
	return &NodeAllocator{}
}

// NewNodeAllocatorFrom creates an allocator with the nodes of r marked used.
func NewNodeAllocatorFrom(r *Registry) *NodeAllocator {
	a := NewNodeAllocator()
	for _, node := range r.Nodes() {
		a.MarkUsed(node)
	}
	return a
}

// Allocate marks the lowest free id used and returns it.
//
// Returns:
//   - int: The new id, or MaxNodeID when none is free
//   - error: ErrNodeIDsExhausted when none is free; the returned MaxNodeID
//     is then already in use and must not be handed to a node
func (a *NodeAllocator) Allocate() (int, error) {
	for id := MinNodeID; id <= MaxNodeID; id++ {
		if !a.used[id] {
			a.used[id] = true
			return id, nil
		}
	}
	return MaxNodeID, ErrNodeIDsExhausted
}

// MarkUsed marks an id as allocated. Ids outside 1..MaxNodeID are ignored.
func (a *NodeAllocator) MarkUsed(node int) {
	if node >= MinNodeID && node <= MaxNodeID {
		a.used[node] = true
	}
}

// IsUsed reports whether an id has been allocated.
func (a *NodeAllocator) IsUsed(node int) bool {
	return node >= MinNodeID && node <= MaxNodeID && a.used[node]
}

// Free returns the number of ids still available.
func (a *NodeAllocator) Free() int {
	n := 0
	for id := MinNodeID; id <= MaxNodeID; id++ {
		if !a.used[id] {
			n++
		}
	}
	return n
}
