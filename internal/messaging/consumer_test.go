package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubscriber struct {
	msgs         chan *message.Message
	subscribeErr error
	closeErr     error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgs: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgs, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgs)
	}

	return m.closeErr
}

type consumeTestEvent struct {
	Code string `json:"code"`
}

func newTestMessage(t *testing.T, event any) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

func TestConsumer(t *testing.T) {
	t.Run("handles messages and acks them", func(t *testing.T) {
		sub := newMockSubscriber()

		var (
			mu       sync.Mutex
			received []string
		)

		handler := func(_ context.Context, event *consumeTestEvent) error {
			mu.Lock()
			defer mu.Unlock()

			received = append(received, event.Code)

			return nil
		}

		consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		msg := newTestMessage(t, &consumeTestEvent{Code: "Ab3dE9"})
		sub.msgs <- msg

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()

			return len(received) == 1 && received[0] == "Ab3dE9"
		}, time.Second, 10*time.Millisecond)

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("nacks messages with invalid payloads", func(t *testing.T) {
		sub := newMockSubscriber()

		handler := func(_ context.Context, _ *consumeTestEvent) error { return nil }

		consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte("not json"))
		sub.msgs <- msg

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("message was not nacked")
		}

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("nacks messages when the handler fails", func(t *testing.T) {
		sub := newMockSubscriber()

		handler := func(_ context.Context, _ *consumeTestEvent) error {
			return errors.New("handler error")
		}

		consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		msg := newTestMessage(t, &consumeTestEvent{Code: "Ab3dE9"})
		sub.msgs <- msg

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("message was not nacked")
		}

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := newMockSubscriber()
		sub.subscribeErr = errors.New("subscribe error")

		handler := func(_ context.Context, _ *consumeTestEvent) error { return nil }

		consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())

		assert.Error(t, consumer.Start(context.Background()))
	})

	t.Run("reports its topic", func(t *testing.T) {
		consumer := messaging.NewConsumer(newMockSubscriber(), "test.topic",
			func(_ context.Context, _ *consumeTestEvent) error { return nil }, zap.NewNop())

		assert.Equal(t, "test.topic", consumer.Topic())
	})
}
