package pubsub

import (
	"context"
	"encoding/json"
	"time"
)

// Topics the UI can subscribe to
const (
	TopicCases       = "cases"       // case list or dashboard stats changed
	TopicEditor      = "editor"      // shell view or open graph changed
	TopicPersistence = "persistence" // a load or save failed
)

// Event is one message on a topic
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"` // e.g. "changed", "reloaded", "save_failed"
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // per-topic sequence number
}

// Subscription delivers the events of one topic to one client
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher fans events out to subscribers
type Publisher interface {
	// Subscribe creates a subscription that ends when ctx is cancelled
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish marshals data and sends it to every subscriber of topic
	Publish(topic string, eventType string, data interface{}) error

	Close() error
}

// CasesChanged is published on TopicCases
type CasesChanged struct {
	Count              int    `json:"count"`
	ActiveCaseID       string `json:"activeCaseId,omitempty"`
	TotalPeople        int    `json:"totalPeople"`
	TotalRelationships int    `json:"totalRelationships"`
}

// EditorChanged is published on TopicEditor
type EditorChanged struct {
	View          string `json:"view"` // "dashboard" or "graph-editor"
	CaseID        string `json:"caseId,omitempty"`
	Persons       int    `json:"persons"`
	Relationships int    `json:"relationships"`
	Theme         string `json:"theme"`
}

// PersistenceFailed is published on TopicPersistence
type PersistenceFailed struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ConfigureDefaults sets the buffering used by casegraph's topics: new
// subscribers get the latest state of cases and editor, and recent failures.
func ConfigureDefaults(p *SSEPublisher) {
	p.ConfigureTopic(TopicCases, TopicConfig{BufferSize: 1})
	p.ConfigureTopic(TopicEditor, TopicConfig{BufferSize: 1})
	p.ConfigureTopic(TopicPersistence, TopicConfig{BufferSize: 5, ReplayAll: true})
}
