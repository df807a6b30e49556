package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

func newTestPoller(t *testing.T, ctrl *MockController, tr *MockTransport, sink *MockSink,
	clock *fakeClock, channels ...registry.Channel,
) (*Poller, *registry.Registry) {
	t.Helper()
	reg, err := registry.FromChannels(channels)
	if err != nil {
		t.Fatalf("FromChannels() error = %v", err)
	}
	p, err := NewPoller(PollerOptions{
		Registry: reg,
		Switches: ctrl,
		Writer:   tr,
		Sinks:    []ReadingSink{sink},
		Now:      clock.Now,
	})
	if err != nil {
		t.Fatalf("NewPoller() error = %v", err)
	}
	return p, reg
}

func switchChannel(node, child, deviceID int, sensor mysensors.SensorType, last time.Time) registry.Channel {
	return registry.Channel{
		Node:       node,
		Child:      child,
		SensorType: sensor,
		DeviceID:   deviceID,
		DeviceType: domoticz.DeviceSwitch,
		Reading:    "0",
		LastUpdate: last,
	}
}

func TestPoll(t *testing.T) {
	clock := newFakeClock()
	stored := clock.Now().Add(-time.Hour)

	tests := []struct {
		name        string
		sw          domoticz.SwitchStatus
		wantWritten []string
		wantReading string
	}{
		{
			name:        "newer on",
			sw:          domoticz.SwitchStatus{ID: 60, Data: "On", LastUpdate: stored.Add(time.Minute)},
			wantWritten: []string{"7;1;1;1;3;100"},
			wantReading: "100",
		},
		{
			name:        "newer closed",
			sw:          domoticz.SwitchStatus{ID: 60, Data: "Closed", LastUpdate: stored.Add(time.Second)},
			wantWritten: []string{"7;1;1;1;3;0"},
			wantReading: "0",
		},
		{
			name:        "newer dimmer level",
			sw:          domoticz.SwitchStatus{ID: 60, Data: "Set Level: 40 %", Level: 40, LastUpdate: stored.Add(time.Minute)},
			wantWritten: []string{"7;1;1;1;3;40"},
			wantReading: "40",
		},
		{
			name:        "same time skipped",
			sw:          domoticz.SwitchStatus{ID: 60, Data: "On", LastUpdate: stored},
			wantReading: "0",
		},
		{
			name:        "older skipped",
			sw:          domoticz.SwitchStatus{ID: 60, Data: "On", LastUpdate: stored.Add(-time.Minute)},
			wantReading: "0",
		},
		{
			name:        "unknown device skipped",
			sw:          domoticz.SwitchStatus{ID: 99, Data: "On", LastUpdate: clock.Now()},
			wantReading: "0",
		},
		{
			name:        "unparsed controller time skipped",
			sw:          domoticz.SwitchStatus{ID: 60, Data: "On"},
			wantReading: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewMockController()
			ctrl.switches = []domoticz.SwitchStatus{tt.sw}
			tr := &MockTransport{}
			sink := &MockSink{}
			p, reg := newTestPoller(t, ctrl, tr, sink, clock,
				switchChannel(7, 1, 60, mysensors.SensorDimmer, stored),
				switchChannel(7, 2, 60, mysensors.SensorLight, stored))

			if err := p.Poll(context.Background()); err != nil {
				t.Fatalf("Poll() error = %v", err)
			}

			written := tr.GetWritten()
			if len(written) != len(tt.wantWritten) {
				t.Fatalf("written = %v, want %v", written, tt.wantWritten)
			}
			for i := range written {
				if written[i] != tt.wantWritten[i] {
					t.Errorf("written[%d] = %q, want %q", i, written[i], tt.wantWritten[i])
				}
			}

			for _, child := range []int{1, 2} {
				ch, _ := reg.Get(7, child)
				if ch.Reading != tt.wantReading {
					t.Errorf("7/%d Reading = %q, want %q", child, ch.Reading, tt.wantReading)
				}
				if len(tt.wantWritten) > 0 && !ch.LastUpdate.Equal(clock.Now()) {
					t.Errorf("7/%d LastUpdate = %v, want %v", child, ch.LastUpdate, clock.Now())
				}
			}

			applied := len(tt.wantWritten) > 0
			if p.takeChanged() != applied {
				t.Errorf("changed = %v, want %v", !applied, applied)
			}
			if applied {
				readings := sink.GetReadings()
				if len(readings) != 2 || readings[0].Origin != history.OriginController {
					t.Errorf("sink readings = %+v", readings)
				}
			}
		})
	}
}

func TestPoll_NeverUpdatedChannel(t *testing.T) {
	clock := newFakeClock()
	ctrl := NewMockController()
	ctrl.switches = []domoticz.SwitchStatus{{ID: 60, Data: "Off", LastUpdate: clock.Now().Add(-24 * time.Hour)}}
	tr := &MockTransport{}

	p, _ := newTestPoller(t, ctrl, tr, &MockSink{}, clock,
		switchChannel(7, 1, 60, mysensors.SensorLight, time.Time{}))

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if written := tr.GetWritten(); len(written) != 1 || written[0] != "7;1;1;1;3;0" {
		t.Errorf("written = %v", written)
	}
}

func TestPoll_SecondPassIsQuiet(t *testing.T) {
	clock := newFakeClock()
	ctrl := NewMockController()
	ctrl.switches = []domoticz.SwitchStatus{{ID: 60, Data: "On", LastUpdate: clock.Now().Add(-time.Second)}}
	tr := &MockTransport{}

	p, _ := newTestPoller(t, ctrl, tr, &MockSink{}, clock,
		switchChannel(7, 1, 60, mysensors.SensorLight, clock.Now().Add(-time.Hour)))

	for i := 0; i < 2; i++ {
		clock.Advance(time.Second)
		if err := p.Poll(context.Background()); err != nil {
			t.Fatalf("Poll() #%d error = %v", i, err)
		}
	}
	if got := len(tr.GetWritten()); got != 1 {
		t.Errorf("telegrams written = %d, want 1", got)
	}
}

func TestPoll_Errors(t *testing.T) {
	clock := newFakeClock()

	t.Run("listing failure", func(t *testing.T) {
		ctrl := NewMockController()
		ctrl.listErr = domoticz.ErrUnavailable
		p, _ := newTestPoller(t, ctrl, &MockTransport{}, &MockSink{}, clock)
		if err := p.Poll(context.Background()); !errors.Is(err, domoticz.ErrUnavailable) {
			t.Errorf("Poll() error = %v, want ErrUnavailable", err)
		}
	})

	t.Run("write failure keeps registry update", func(t *testing.T) {
		ctrl := NewMockController()
		ctrl.switches = []domoticz.SwitchStatus{{ID: 60, Data: "On", LastUpdate: clock.Now()}}
		tr := &MockTransport{writeErr: errors.New("port closed")}
		p, reg := newTestPoller(t, ctrl, tr, &MockSink{}, clock,
			switchChannel(7, 1, 60, mysensors.SensorLight, time.Time{}))

		if err := p.Poll(context.Background()); err == nil {
			t.Error("Poll() expected write error")
		}
		if ch, _ := reg.Get(7, 1); ch.Reading != "100" {
			t.Errorf("Reading = %q, want 100", ch.Reading)
		}
	})
}

func TestSwitchLevel(t *testing.T) {
	tests := []struct {
		data  string
		level int
		want  int
	}{
		{"On", 0, 100},
		{"Off", 70, 0},
		{"Open", 0, 100},
		{"Closed", 50, 0},
		{"Up", 0, 100},
		{"Down", 0, 0},
		{"Set Level: 35 %", 35, 35},
		{"", 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got := SwitchLevel(domoticz.SwitchStatus{Data: tt.data, Level: tt.level})
			if got != tt.want {
				t.Errorf("SwitchLevel(%q, %d) = %d, want %d", tt.data, tt.level, got, tt.want)
			}
		})
	}
}
