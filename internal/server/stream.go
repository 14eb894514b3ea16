package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spiffcs/repofinder/internal/assembler"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/server/respond"
)

// handleStream serves GET /search/stream as server-sent events. Parameter
// errors are reported with a 400 before the stream starts; afterwards all
// failures travel as error events.
func (h *searchHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(h.newRequest(), r.URL.Query())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.WriteInternalError(w, "streaming unsupported")
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	emit := func(e assembler.Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeEvent(w, e); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	logger := log.FromContext(ctx)
	if err := h.searcher.Stream(ctx, req, emit); err != nil {
		if ctx.Err() != nil {
			logger.Info("stream consumer disconnected")
			return
		}
		logger.Warn("stream ended with error", "error", err)
	}
}

// writeEvent writes one SSE frame: "event: <kind>\ndata: <json>\n\n".
func writeEvent(w http.ResponseWriter, e assembler.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Kind, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
	return err
}
