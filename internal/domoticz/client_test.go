package domoticz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
)

// fakeDomoticz records every query and answers through a handler func.
type fakeDomoticz struct {
	mu      sync.Mutex
	queries []url.Values
	answer  func(q url.Values) (int, string)
}

func (f *fakeDomoticz) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/json.htm" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	status, body := f.answer(q)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func (f *fakeDomoticz) recorded() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]url.Values, len(f.queries))
	copy(out, f.queries)
	return out
}

func newTestClient(t *testing.T, answer func(q url.Values) (int, string)) (*Client, *fakeDomoticz) {
	t.Helper()
	fake := &fakeDomoticz{answer: answer}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.DomoticzConfig{URL: srv.URL, HardwareID: 4, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, fake
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	if _, err := NewClient(config.DomoticzConfig{URL: "json.htm"}); err == nil {
		t.Error("NewClient() expected error for relative URL")
	}
}

func TestClient_DeviceValue(t *testing.T) {
	c, fake := newTestClient(t, func(q url.Values) (int, string) {
		return http.StatusOK, `{"status":"OK","result":[{"idx":"7","Data":"21.5 C"}]}`
	})

	got, err := c.DeviceValue(context.Background(), 7)
	if err != nil {
		t.Fatalf("DeviceValue() error = %v", err)
	}
	if got != "21.5 C" {
		t.Errorf("DeviceValue() = %q, want %q", got, "21.5 C")
	}

	q := fake.recorded()[0]
	if q.Get("type") != "devices" || q.Get("rid") != "7" {
		t.Errorf("DeviceValue() query = %v", q)
	}
}

func TestClient_DeviceValue_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"status":"OK"}`
	})

	_, err := c.DeviceValue(context.Background(), 99)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("DeviceValue() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http error", http.StatusInternalServerError, `oops`, ErrBadResponse},
		{"invalid json", http.StatusOK, `{not json`, ErrBadResponse},
		{"status ERR", http.StatusOK, `{"status":"ERR"}`, ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(url.Values) (int, string) {
				return tt.status, tt.body
			})
			err := c.Send(context.Background(), url.Values{"type": {"command"}})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Send() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(config.DomoticzConfig{URL: base, HardwareID: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("HealthCheck() error = %v, want ErrUnavailable", err)
	}
}

func TestClient_Switches(t *testing.T) {
	c, fake := newTestClient(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"status":"OK","result":[
			{"idx":"3","Data":"On","Level":0,"LastUpdate":"2024-03-01 10:00:05"},
			{"idx":"9","Data":"Set Level: 40 %","Level":40,"LastUpdate":"garbage"}
		]}`
	})

	got, err := c.Switches(context.Background())
	if err != nil {
		t.Fatalf("Switches() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Switches() returned %d entries, want 2", len(got))
	}

	want := time.Date(2024, 3, 1, 10, 0, 5, 0, time.Local)
	if got[0].ID != 3 || got[0].Data != "On" || !got[0].LastUpdate.Equal(want) {
		t.Errorf("Switches()[0] = %+v", got[0])
	}
	if got[1].ID != 9 || got[1].Level != 40 || !got[1].LastUpdate.IsZero() {
		t.Errorf("Switches()[1] = %+v", got[1])
	}

	q := fake.recorded()[0]
	if q.Get("filter") != "light" || q.Get("used") != "true" {
		t.Errorf("Switches() query = %v", q)
	}
}

func TestClient_CreateDevice(t *testing.T) {
	c, fake := newTestClient(t, func(q url.Values) (int, string) {
		if q.Get("type") == "createvirtualsensor" {
			return http.StatusOK, `{"status":"OK","title":"CreateVirtualSensor"}`
		}
		return http.StatusOK, `{"status":"OK","result":[
			{"idx":"20","HardwareID":4},
			{"idx":"21","HardwareID":4}
		]}`
	})

	id, err := c.CreateDevice(context.Background(), DeviceTempHum)
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if id != 21 {
		t.Errorf("CreateDevice() = %d, want 21", id)
	}

	queries := fake.recorded()
	if len(queries) != 2 {
		t.Fatalf("CreateDevice() made %d calls, want 2", len(queries))
	}
	if queries[0].Get("idx") != "4" || queries[0].Get("sensortype") != "82" {
		t.Errorf("create query = %v", queries[0])
	}
	if queries[1].Get("used") != "false" || queries[1].Get("order") != "ID" {
		t.Errorf("listing query = %v", queries[1])
	}
}

func TestClient_CreateDevice_Unconfirmed(t *testing.T) {
	c, _ := newTestClient(t, func(q url.Values) (int, string) {
		if q.Get("type") == "createvirtualsensor" {
			return http.StatusOK, `{"status":"OK"}`
		}
		return http.StatusOK, `{"status":"OK","result":[{"idx":"30","HardwareID":2}]}`
	})

	id, err := c.CreateDevice(context.Background(), DeviceTemp)
	if !errors.Is(err, ErrCreateUnconfirmed) {
		t.Errorf("CreateDevice() error = %v, want ErrCreateUnconfirmed", err)
	}
	if id != 0 {
		t.Errorf("CreateDevice() = %d, want 0", id)
	}
}

func TestClient_CreateDevice_Unsupported(t *testing.T) {
	c, fake := newTestClient(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"status":"OK"}`
	})

	if _, err := c.CreateDevice(context.Background(), DeviceNone); !errors.Is(err, ErrUnsupportedDeviceType) {
		t.Errorf("CreateDevice(None) error = %v, want ErrUnsupportedDeviceType", err)
	}
	if n := len(fake.recorded()); n != 0 {
		t.Errorf("CreateDevice(None) made %d calls, want 0", n)
	}
}

func TestClient_BasicAuth(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		fmt.Fprint(w, `{"status":"OK"}`)
	}))
	defer srv.Close()

	c, err := NewClient(config.DomoticzConfig{URL: srv.URL, HardwareID: 1, Username: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if gotUser != "admin" || gotPass != "pw" {
		t.Errorf("basic auth = %q/%q, want admin/pw", gotUser, gotPass)
	}
}
