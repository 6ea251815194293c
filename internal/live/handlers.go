package live

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler serves the live sale stream over HTTP.
type Handler struct {
	Hub       *Hub
	Heartbeat time.Duration
}

func (h *Handler) heartbeat() time.Duration {
	if h.Heartbeat > 0 {
		return h.Heartbeat
	}
	return 25 * time.Second
}

// Snapshot returns the owner's current feed state: recent sales plus today's
// totals. Acquiring keeps the subscription warm for the duration of the call
// only; a dashboard that wants continuous updates uses Stream.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	feed, err := h.Hub.Acquire(r.Context(), ownerID)
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "FEED_UNAVAILABLE", "live feed unavailable", nil)
		return
	}
	defer h.Hub.Release(ownerID)
	common.JSON(w, http.StatusOK, map[string]any{"data": feed.Snapshot()})
}

// Stream pushes server-sent events: a full snapshot immediately, then a fresh
// snapshot whenever a sale lands, with periodic heartbeats in between.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "response writer cannot stream", nil)
		return
	}
	feed, err := h.Hub.Acquire(r.Context(), ownerID)
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "FEED_UNAVAILABLE", "live feed unavailable", nil)
		return
	}
	defer h.Hub.Release(ownerID)

	changes, cancel := feed.Watch()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSnapshot(w, feed.Snapshot())
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat())
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			writeSnapshot(w, feed.Snapshot())
			flusher.Flush()
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		}
	}
}

func writeSnapshot(w http.ResponseWriter, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: snapshot\ndata: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
}
