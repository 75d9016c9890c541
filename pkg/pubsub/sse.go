package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/casegraph/pkg/logging"
)

// ErrClosed is returned after the publisher has been closed
var ErrClosed = errors.New("publisher is closed")

// subscriberBuffer is the per-subscription channel capacity; a slow client
// loses events rather than blocking publishers
const subscriberBuffer = 64

// TopicConfig configures replay for late subscribers
type TopicConfig struct {
	BufferSize int  // events kept per topic, 0 disables replay
	ReplayAll  bool // replay the whole buffer instead of only the last event
}

// SSEPublisher is an in-process Publisher whose events are streamed to
// browsers as server-sent events
type SSEPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*sseSubscription]struct{}
	version       map[string]int
	buffer        map[string][]Event
	config        map[string]TopicConfig
	closed        bool
}

// NewSSEPublisher creates a publisher with no topics configured
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		subscriptions: make(map[string]map[*sseSubscription]struct{}),
		version:       make(map[string]int),
		buffer:        make(map[string][]Event),
		config:        make(map[string]TopicConfig),
	}
}

// ConfigureTopic sets the replay behavior of a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config[topic] = config
}

// Subscribe registers a subscriber and replays buffered events to it
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	if p.subscriptions[topic] == nil {
		p.subscriptions[topic] = make(map[*sseSubscription]struct{})
	}
	p.subscriptions[topic][sub] = struct{}{}

	// replay under the lock so that no live event overtakes the backlog
	replay := p.buffer[topic]
	if !p.config[topic].ReplayAll && len(replay) > 1 {
		replay = replay[len(replay)-1:]
	}
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			logging.Warn("could not replay event to new subscriber", "topic", topic, "version", event.Version)
		}
	}
	if len(replay) > 0 {
		logging.Trace("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

// Publish sends an event to all current subscribers without blocking
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.version[topic]++
	event := Event{Topic: topic, Type: eventType, Data: payload, Version: p.version[topic]}

	if size := p.config[topic].BufferSize; size > 0 {
		buf := append(p.buffer[topic], event)
		if len(buf) > size {
			buf = buf[len(buf)-size:]
		}
		p.buffer[topic] = buf
	}

	for sub := range p.subscriptions[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscriber too slow, dropping event", "topic", topic, "version", event.Version)
		}
	}
	return nil
}

// Close ends every subscription; their event channels are closed
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	for _, subs := range p.subscriptions {
		for sub := range subs {
			close(sub.events)
		}
	}
	p.subscriptions = make(map[string]map[*sseSubscription]struct{})
	return nil
}

// Subscribers returns the number of live subscriptions on a topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions[topic])
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	subs := p.subscriptions[sub.topic]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(p.subscriptions, sub.topic)
	}
}

type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	once      sync.Once
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

func (s *sseSubscription) Close() error {
	s.once.Do(func() {
		s.publisher.unsubscribe(s)
	})
	return nil
}

// WriteSSE writes one event in server-sent event framing: "data: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
