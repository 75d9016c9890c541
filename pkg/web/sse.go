package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/pubsub"
)

var topics = map[string]bool{
	pubsub.TopicCases:       true,
	pubsub.TopicEditor:      true,
	pubsub.TopicPersistence: true,
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if !topics[topic] {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown topic: " + topic})
		return
	}

	// Create subscription
	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	// Stream events
	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "sse client gone", "topic", topic, "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
