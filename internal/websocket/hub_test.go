package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archeohub-backend/internal/middleware"
	"archeohub-backend/internal/services"
)

type stubAuth struct {
	userID uuid.UUID
	err    error
}

func (a stubAuth) Authenticate(r *http.Request) (*middleware.SessionClaims, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &middleware.SessionClaims{UserID: a.userID, SessionID: "sid"}, nil
}

type chanSubscriber struct {
	mu       sync.Mutex
	channels map[string]chan string
	count    int
}

func (s *chanSubscriber) subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *chanSubscriber) Subscribe(ctx context.Context, channel string) <-chan string {
	out := make(chan string)
	in := make(chan string, 4)
	s.mu.Lock()
	s.channels[channel] = in
	s.count++
	s.mu.Unlock()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-in:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (s *chanSubscriber) publish(channel, payload string) bool {
	s.mu.Lock()
	ch, ok := s.channels[channel]
	s.mu.Unlock()
	if ok {
		ch <- payload
	}
	return ok
}

func TestHub_RejectsUnauthenticated(t *testing.T) {
	hub := NewHub(&chanSubscriber{channels: map[string]chan string{}}, stubAuth{err: errors.New("no token")}, "*")

	rr := httptest.NewRecorder()
	hub.HandleWebSocket(rr, httptest.NewRequest(http.MethodGet, "/api/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHub_RelaysEventsToUser(t *testing.T) {
	userID := uuid.New()
	sub := &chanSubscriber{channels: map[string]chan string{}}
	hub := NewHub(sub, stubAuth{userID: userID}, "*")
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	channel := services.ChatUpdatesChannel(userID)
	require.Eventually(t, func() bool {
		return sub.publish(channel, `{"type":"chat_completed"}`)
	}, time.Second, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat_completed"}`, string(data))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 0 }, time.Second, 10*time.Millisecond)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	return conn
}

func TestHub_ReconnectKeepsRelaying(t *testing.T) {
	userID := uuid.New()
	sub := &chanSubscriber{channels: map[string]chan string{}}
	hub := NewHub(sub, stubAuth{userID: userID}, "*")
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	first := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 1 }, time.Second, 5*time.Millisecond)
	first.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 0 }, time.Second, 5*time.Millisecond)

	second := dial(t, srv)
	defer second.Close()
	require.Eventually(t, func() bool { return sub.subscriptions() == 2 }, time.Second, 5*time.Millisecond)

	// A relay left over from the first socket may still be running next to
	// the new one; both feed the same queue.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				hub.broadcast(userID, []byte(`{"type":"chat_sources"}`))
			}
		}()
	}
	wg.Wait()

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 20; i++ {
		_, data, err := second.ReadMessage()
		require.NoError(t, err, "message %d", i)
		assert.JSONEq(t, `{"type":"chat_sources"}`, string(data))
	}

	require.True(t, sub.publish(services.ChatUpdatesChannel(userID), `{"type":"chat_completed"}`))
	_, data, err := second.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat_completed"}`, string(data))
}

func TestHub_ConcurrentBroadcastsToManySockets(t *testing.T) {
	userID := uuid.New()
	hub := NewHub(&chanSubscriber{channels: map[string]chan string{}}, stubAuth{userID: userID}, "*")
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	conns := []*websocket.Conn{dial(t, srv), dial(t, srv)}
	for _, c := range conns {
		defer c.Close()
	}
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 2 }, time.Second, 5*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				hub.broadcast(userID, []byte(`{"type":"chat_started"}`))
			}
		}()
	}
	wg.Wait()

	for _, c := range conns {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		for i := 0; i < 40; i++ {
			_, _, err := c.ReadMessage()
			require.NoError(t, err, "message %d", i)
		}
	}
}

func TestHub_CloseEndsSockets(t *testing.T) {
	userID := uuid.New()
	hub := NewHub(&chanSubscriber{channels: map[string]chan string{}}, stubAuth{userID: userID}, "*")

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.ConnectionCount(userID))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	req.Header.Set("Origin", "https://evil.example")

	assert.True(t, originChecker("*")(req))
	assert.False(t, originChecker("https://archeohub.example")(req))

	req.Header.Set("Origin", "https://archeohub.example")
	assert.True(t, originChecker("https://archeohub.example")(req))
}
