package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/history"
)

func TestHandleListChannels(t *testing.T) {
	srv := testServer(t, nil)

	tests := []struct {
		target    string
		wantCode  int
		wantCount int
	}{
		{"/api/v1/channels", http.StatusOK, 3},
		{"/api/v1/channels?node=12", http.StatusOK, 2},
		{"/api/v1/channels?node=99", http.StatusOK, 0},
		{"/api/v1/channels?node=abc", http.StatusBadRequest, 0},
		{"/api/v1/channels?node=255", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := doRequest(t, srv, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var body struct {
				Channels []channelResponse `json:"channels"`
				Count    int               `json:"count"`
			}
			decodeBody(t, rec, &body)
			if body.Count != tt.wantCount || len(body.Channels) != tt.wantCount {
				t.Errorf("count = %d (%d channels), want %d", body.Count, len(body.Channels), tt.wantCount)
			}
		})
	}
}

func TestHandleGetChannel(t *testing.T) {
	srv := testServer(t, nil)

	rec := doRequest(t, srv, "/api/v1/channels/12/3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got channelResponse
	decodeBody(t, rec, &got)
	want := channelResponse{
		Node:       12,
		Child:      3,
		SensorType: "S_TEMP",
		DeviceID:   40,
		DeviceType: "D_TEMP",
		Reading:    "21.5",
		LastUpdate: "2026-05-04T10:00:00Z",
		NodeInfo:   "Lounge",
	}
	if got != want {
		t.Errorf("channel = %+v, want %+v", got, want)
	}

	for target, code := range map[string]int{
		"/api/v1/channels/12/9":   http.StatusNotFound,
		"/api/v1/channels/0/3":    http.StatusBadRequest,
		"/api/v1/channels/12/x":   http.StatusBadRequest,
		"/api/v1/channels/12/256": http.StatusBadRequest,
	} {
		if rec := doRequest(t, srv, target); rec.Code != code {
			t.Errorf("GET %s status = %d, want %d", target, rec.Code, code)
		}
	}
}

func TestHandleChannelHistory(t *testing.T) {
	repo := openHistory(t)
	ctx := context.Background()
	for i, reading := range []string{"20", "21", "22"} {
		err := repo.Record(ctx, history.Entry{
			Node: 12, Child: 3, SensorType: "S_TEMP", DeviceID: 40,
			Reading: reading, Origin: history.OriginSensor,
			RecordedAt: testUpdate.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	srv := testServer(t, func(d *Deps) { d.History = repo })

	rec := doRequest(t, srv, "/api/v1/channels/12/3/history?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Node    int             `json:"node"`
		Child   int             `json:"child"`
		History []history.Entry `json:"history"`
		Count   int             `json:"count"`
	}
	decodeBody(t, rec, &body)
	if body.Count != 2 || len(body.History) != 2 {
		t.Fatalf("count = %d, want 2", body.Count)
	}
	if body.History[0].Reading != "22" || body.History[1].Reading != "21" {
		t.Errorf("history = %+v, want newest first", body.History)
	}

	rec = doRequest(t, srv, "/api/v1/channels/12/4/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty history status = %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if body.Count != 0 || body.History == nil {
		t.Errorf("empty history = %+v, want empty list", body)
	}
}

func TestHandleChannelHistory_Errors(t *testing.T) {
	tests := []struct {
		name     string
		history  HistoryQuerier
		target   string
		wantCode int
	}{
		{"unavailable", nil, "/api/v1/channels/12/3/history", http.StatusServiceUnavailable},
		{"unknown channel", MockHistory{}, "/api/v1/channels/12/9/history", http.StatusNotFound},
		{"bad limit", MockHistory{}, "/api/v1/channels/12/3/history?limit=0", http.StatusBadRequest},
		{"limit too large", MockHistory{}, "/api/v1/channels/12/3/history?limit=501", http.StatusBadRequest},
		{"query failure", MockHistory{err: errors.New("locked")}, "/api/v1/channels/12/3/history", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, func(d *Deps) { d.History = tt.history })
			if rec := doRequest(t, srv, tt.target); rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestParseHistoryLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", defaultHistoryLimit, false},
		{"1", 1, false},
		{"500", 500, false},
		{"501", 0, true},
		{"-1", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := parseHistoryLimit(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseHistoryLimit(%q) = %d, %v", tt.raw, got, err)
		}
	}
}
