package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500

	// maxChildID is the highest child id the radio protocol can carry.
	maxChildID = 255
)

// channelResponse is the API shape of one channel.
type channelResponse struct {
	Node       int    `json:"node"`
	Child      int    `json:"child"`
	SensorType string `json:"sensor_type"`
	DeviceID   int    `json:"device_id"`
	DeviceType string `json:"device_type"`
	Reading    string `json:"reading"`
	LastUpdate string `json:"last_update,omitempty"`
	NodeInfo   string `json:"node_info,omitempty"`
}

func toChannelResponse(ch registry.Channel) channelResponse {
	resp := channelResponse{
		Node:       ch.Node,
		Child:      ch.Child,
		SensorType: ch.SensorType.String(),
		DeviceID:   ch.DeviceID,
		DeviceType: ch.DeviceType.String(),
		Reading:    ch.Reading,
		NodeInfo:   ch.NodeInfo,
	}
	if !ch.LastUpdate.IsZero() {
		resp.LastUpdate = ch.LastUpdate.UTC().Format(time.RFC3339)
	}
	return resp
}

// handleListChannels returns every channel, optionally filtered by ?node=.
func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	nodeFilter := -1
	if raw := r.URL.Query().Get("node"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < registry.MinNodeID || n > registry.MaxNodeID {
			writeBadRequest(w, "invalid node")
			return
		}
		nodeFilter = n
	}

	channels := s.channels.Channels()
	out := make([]channelResponse, 0, len(channels))
	for _, ch := range channels {
		if nodeFilter >= 0 && ch.Node != nodeFilter {
			continue
		}
		out = append(out, toChannelResponse(ch))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"channels": out,
		"count":    len(out),
	})
}

// handleGetChannel returns one channel.
func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	node, child, err := parseChannelKey(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ch, ok := s.channels.Channel(node, child)
	if !ok {
		writeNotFound(w, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, toChannelResponse(ch))
}

// handleChannelHistory returns the newest reading history entries of a
// channel, newest first.
func (s *Server) handleChannelHistory(w http.ResponseWriter, r *http.Request) {
	node, child, err := parseChannelKey(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if _, ok := s.channels.Channel(node, child); !ok {
		writeNotFound(w, "channel not found")
		return
	}

	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "reading history unavailable")
		return
	}

	entries, err := s.history.Query(r.Context(), node, child, limit)
	if err != nil {
		s.logger.Error("querying reading history", "node", node, "child", child, "error", err)
		writeInternalError(w, "failed to load reading history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"node":    node,
		"child":   child,
		"history": entries,
		"count":   len(entries),
	})
}

// parseChannelKey reads the {node} and {child} URL parameters.
func parseChannelKey(r *http.Request) (node, child int, err error) {
	node, err = strconv.Atoi(chi.URLParam(r, "node"))
	if err != nil || node < registry.MinNodeID || node > registry.MaxNodeID {
		return 0, 0, fmt.Errorf("invalid node")
	}
	child, err = strconv.Atoi(chi.URLParam(r, "child"))
	if err != nil || child < 0 || child > maxChildID {
		return 0, 0, fmt.Errorf("invalid child")
	}
	return node, child, nil
}

// parseHistoryLimit parses ?limit=, defaulting when empty.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if limit > maxHistoryLimit {
		return 0, fmt.Errorf("limit exceeds maximum")
	}
	return limit, nil
}
