package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"genai-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.chat.turn_recorded", Subject("chat.turn_recorded"))
}

// TestPublishSubscribe needs a JetStream enabled server; set NATS_URL to run it.
func TestPublishSubscribe(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping integration test: NATS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	pub, err := NewPublisher(ctx, url)
	require.NoError(t, err)
	defer pub.Close()

	received := make(chan events.Event, 1)
	err = sub.Subscribe(ctx, "test.ping", "", func(ctx context.Context, event events.Event) error {
		received <- event
		return nil
	})
	require.NoError(t, err)

	err = pub.Publish(ctx, events.BaseEvent{Type: "test.ping", Data: map[string]interface{}{"n": "1"}})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "test.ping", event.EventType())
		assert.Equal(t, "1", event.Payload()["n"])
	case <-ctx.Done():
		t.Fatal("event not received")
	}
}
