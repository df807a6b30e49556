package gateway

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// MockController implements Controller and SwitchLister for testing.
type MockController struct {
	mu        sync.Mutex
	values    map[int]string
	valueErr  error
	sendErr   error
	createErr error
	nextID    int
	switches  []domoticz.SwitchStatus
	listErr   error

	sent    []url.Values
	created []domoticz.DeviceType
	reads   []int
}

func NewMockController() *MockController {
	return &MockController{values: make(map[int]string), nextID: 100}
}

func (m *MockController) DeviceValue(_ context.Context, deviceID int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, deviceID)
	if m.valueErr != nil {
		return "", m.valueErr
	}
	return m.values[deviceID], nil
}

func (m *MockController) Send(_ context.Context, query url.Values) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, query)
	return nil
}

func (m *MockController) CreateDevice(_ context.Context, deviceType domoticz.DeviceType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, deviceType)
	if m.createErr != nil {
		return 0, m.createErr
	}
	id := m.nextID
	m.nextID++
	return id, nil
}

func (m *MockController) Switches(_ context.Context) ([]domoticz.SwitchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domoticz.SwitchStatus(nil), m.switches...), nil
}

func (m *MockController) GetSent() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]url.Values(nil), m.sent...)
}

func (m *MockController) GetCreated() []domoticz.DeviceType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domoticz.DeviceType(nil), m.created...)
}

// MockTransport implements Transport for testing.
type MockTransport struct {
	mu       sync.Mutex
	incoming []string
	readErr  error
	writeErr error
	written  []string
}

func (m *MockTransport) ReadLine() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	if len(m.incoming) == 0 {
		return "", false, nil
	}
	line := m.incoming[0]
	m.incoming = m.incoming[1:]
	return line, true, nil
}

func (m *MockTransport) WriteLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, line)
	return nil
}

func (m *MockTransport) Feed(lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incoming = append(m.incoming, lines...)
}

func (m *MockTransport) GetWritten() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}

// MockStore implements SnapshotStore for testing.
type MockStore struct {
	mu    sync.Mutex
	saves [][]registry.Channel
	err   error
}

func (m *MockStore) Save(r *registry.Registry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, r.Snapshot())
	return m.err
}

func (m *MockStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

// MockSink implements ReadingSink, NodeEventSink and Maintainer.
type MockSink struct {
	mu         sync.Mutex
	readings   []ReadingEvent
	nodeEvents []NodeEvent
	maintained int
	readingErr error
}

func (m *MockSink) Name() string { return "mock" }

func (m *MockSink) HandleReading(_ context.Context, ev ReadingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, ev)
	return m.readingErr
}

func (m *MockSink) HandleNodeEvent(_ context.Context, ev NodeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodeEvents = append(m.nodeEvents, ev)
	return nil
}

func (m *MockSink) Maintain(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maintained++
	return nil
}

func (m *MockSink) GetReadings() []ReadingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ReadingEvent(nil), m.readings...)
}

func (m *MockSink) GetNodeEvents() []NodeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NodeEvent(nil), m.nodeEvents...)
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
