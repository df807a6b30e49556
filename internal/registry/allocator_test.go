package registry

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
)

func TestNodeAllocator_Sequence(t *testing.T) {
	a := NewNodeAllocator()

	for want := 1; want <= 10; want++ {
		got, err := a.Allocate()
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		if got != want {
			t.Errorf("Allocate() = %d, want %d", got, want)
		}
	}
}

func TestNodeAllocator_Exhaustion(t *testing.T) {
	a := NewNodeAllocator()

	var last int
	for i := 0; i < MaxNodeID; i++ {
		id, err := a.Allocate()
		if err != nil {
			t.Fatalf("Allocate() #%d error = %v", i+1, err)
		}
		last = id
	}
	if last != MaxNodeID {
		t.Errorf("254th Allocate() = %d, want %d", last, MaxNodeID)
	}

	id, err := a.Allocate()
	if !errors.Is(err, ErrNodeIDsExhausted) {
		t.Errorf("255th Allocate() error = %v, want ErrNodeIDsExhausted", err)
	}
	if id != MaxNodeID {
		t.Errorf("255th Allocate() = %d, want %d", id, MaxNodeID)
	}
	if a.Free() != 0 {
		t.Errorf("Free() = %d, want 0", a.Free())
	}
}

func TestNodeAllocator_SkipsUsed(t *testing.T) {
	r := New()
	for _, node := range []int{1, 2, 4} {
		if _, err := r.Add(Channel{Node: node, Child: 0, SensorType: mysensors.SensorTemp}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	a := NewNodeAllocatorFrom(r)

	for _, want := range []int{3, 5, 6} {
		got, err := a.Allocate()
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		if got != want {
			t.Errorf("Allocate() = %d, want %d", got, want)
		}
	}
	if !a.IsUsed(4) || a.IsUsed(7) {
		t.Error("IsUsed() does not reflect the table")
	}
}

func TestNodeAllocator_MarkUsedIgnoresReserved(t *testing.T) {
	a := NewNodeAllocator()
	a.MarkUsed(0)
	a.MarkUsed(255)
	a.MarkUsed(-1)

	if a.Free() != MaxNodeID {
		t.Errorf("Free() = %d, want %d", a.Free(), MaxNodeID)
	}
}
