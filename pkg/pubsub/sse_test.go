package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func assertQuiet(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case event := <-sub.Events():
		t.Errorf("unexpected event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReplayAllBuffered(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic("test", TopicConfig{BufferSize: 3, ReplayAll: true})

	for i := 1; i <= 5; i++ {
		require.NoError(t, pub.Publish("test", "event", map[string]int{"num": i}))
	}

	sub, err := pub.Subscribe(context.Background(), "test")
	require.NoError(t, err)
	defer sub.Close()

	// only the last three survive the buffer
	for want := 3; want <= 5; want++ {
		assert.Equal(t, want, receive(t, sub).Version)
	}
	assertQuiet(t, sub)
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic("test", TopicConfig{BufferSize: 5})

	for i := 1; i <= 3; i++ {
		require.NoError(t, pub.Publish("test", "event", map[string]int{"num": i}))
	}

	sub, err := pub.Subscribe(context.Background(), "test")
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, 3, receive(t, sub).Version)
	assertQuiet(t, sub)
}

func TestNoBufferDeliversOnlyLiveEvents(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	require.NoError(t, pub.Publish("test", "event", 1))

	sub, err := pub.Subscribe(context.Background(), "test")
	require.NoError(t, err)
	defer sub.Close()
	assertQuiet(t, sub)

	require.NoError(t, pub.Publish("test", "event", 2))
	event := receive(t, sub)
	assert.Equal(t, 2, event.Version)
	assert.JSONEq(t, "2", string(event.Data))
}

func TestContextCancelUnsubscribes(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := pub.Subscribe(ctx, TopicCases)
	require.NoError(t, err)
	assert.Equal(t, 1, pub.Subscribers(TopicCases))

	cancel()
	assert.Eventually(t, func() bool { return pub.Subscribers(TopicCases) == 0 }, time.Second, 5*time.Millisecond)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	pub := NewSSEPublisher()
	sub, err := pub.Subscribe(context.Background(), TopicEditor)
	require.NoError(t, err)

	require.NoError(t, pub.Close())
	_, open := <-sub.Events()
	assert.False(t, open)

	assert.ErrorIs(t, pub.Publish(TopicEditor, "changed", nil), ErrClosed)
	_, err = pub.Subscribe(context.Background(), TopicEditor)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, sub.Close())
}

func TestDefaultTopics(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	ConfigureDefaults(pub)

	require.NoError(t, pub.Publish(TopicPersistence, "save_failed", PersistenceFailed{Message: "a"}))
	require.NoError(t, pub.Publish(TopicPersistence, "save_failed", PersistenceFailed{Message: "b"}))
	require.NoError(t, pub.Publish(TopicEditor, "changed", EditorChanged{View: "dashboard"}))
	require.NoError(t, pub.Publish(TopicEditor, "changed", EditorChanged{View: "graph-editor", CaseID: "case-1"}))

	failures, err := pub.Subscribe(context.Background(), TopicPersistence)
	require.NoError(t, err)
	defer failures.Close()
	assert.Equal(t, 1, receive(t, failures).Version)
	assert.Equal(t, 2, receive(t, failures).Version)

	editor, err := pub.Subscribe(context.Background(), TopicEditor)
	require.NoError(t, err)
	defer editor.Close()

	var state EditorChanged
	require.NoError(t, json.Unmarshal(receive(t, editor).Data, &state))
	assert.Equal(t, "case-1", state.CaseID)
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicCases, Type: "changed", Data: json.RawMessage(`{"count":2}`), Version: 7}

	require.NoError(t, WriteSSE(&buf, event))
	assert.Equal(t, "data: {\"topic\":\"cases\",\"type\":\"changed\",\"data\":{\"count\":2},\"version\":7}\n\n", buf.String())
}
