package realtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/KaushikNagaraj77/oruma-go/internal/orumatest"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestChannel(t *testing.T, server *orumatest.Server, token string) *Channel {
	t.Helper()
	c := NewChannel(server.WSURL(), staticToken(token), testLogger())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestChannelConnect(t *testing.T) {
	server := orumatest.New()
	defer server.Close()

	t.Run("requires a session token", func(t *testing.T) {
		c := newTestChannel(t, server, "")
		err := c.Connect(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
		assert.False(t, c.Connected())
	})

	t.Run("connects and is idempotent", func(t *testing.T) {
		c := newTestChannel(t, server, "tok")
		require.NoError(t, c.Connect(context.Background()))
		assert.True(t, c.Connected())

		require.Eventually(t, func() bool { return server.ConnCount() == 1 },
			time.Second, 10*time.Millisecond)

		require.NoError(t, c.Connect(context.Background()), "expected second connect to be a no-op")
		assert.Equal(t, 1, server.ConnCount())
	})

	t.Run("refuses after close", func(t *testing.T) {
		c := newTestChannel(t, server, "tok")
		require.NoError(t, c.Close())
		assert.Error(t, c.Connect(context.Background()))
	})
}

func TestChannelDispatch(t *testing.T) {
	server := orumatest.New()
	defer server.Close()

	c := newTestChannel(t, server, "tok")
	require.NoError(t, c.Connect(context.Background()))

	var mu sync.Mutex
	var order []string
	record := func(tag string) Handler {
		return func(Event) {
			mu.Lock()
			order = append(order, tag)
			mu.Unlock()
		}
	}

	c.On(EventPostLiked, record("first"))
	second := c.On(EventPostLiked, record("second"))
	c.On(EventUserOnline, record("other-type"))

	require.NoError(t, server.Push("post_liked", map[string]any{
		"postId": "p1", "userId": "u1", "likesCount": 2,
	}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"first", "second"}, order, "expected handlers in registration order")
	order = nil
	mu.Unlock()

	// An unsubscribed handler no longer fires.
	c.Off(second)
	require.NoError(t, server.Push("post_liked", map[string]any{
		"postId": "p1", "userId": "u1", "likesCount": 3,
	}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"first"}, order)
	mu.Unlock()
}

func TestChannelEmitWhileDisconnected(t *testing.T) {
	server := orumatest.New()
	defer server.Close()

	c := newTestChannel(t, server, "tok")
	// No connection: Emit must be a silent no-op, nothing queued.
	c.Emit(Typing{ConversationID: "c1", UserID: "u1", Start: true})
	assert.False(t, c.Connected())
}

func TestChannelReconnect(t *testing.T) {
	server := orumatest.New()
	defer server.Close()

	c := newTestChannel(t, server, "tok")
	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool { return server.ConnCount() == 1 },
		time.Second, 10*time.Millisecond)

	var mu sync.Mutex
	var got []Event
	c.On(EventUserOnline, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	server.DropConnections()

	// The first backoff step is one second; allow a few.
	require.Eventually(t, func() bool { return server.ConnCount() == 1 && c.Connected() },
		5*time.Second, 50*time.Millisecond, "expected automatic reconnect")

	require.NoError(t, server.Push("user_online", map[string]any{"userId": "u9"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 10*time.Millisecond, "expected events to flow after reconnect")
}
