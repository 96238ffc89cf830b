package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/royen99/cryptobot-monitor/internal/domain"
	"github.com/royen99/cryptobot-monitor/internal/infrastructure/feed"
)

type wsServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu         sync.Mutex
	subscribes [][]string
	conns      []*websocket.Conn
}

func (s *wsServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	var msg struct {
		Subscribe []string `json:"subscribe"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return
	}

	s.mu.Lock()
	s.subscribes = append(s.subscribes, msg.Subscribe)
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	// Keep reading so later subscription re-sends are captured too.
	go func() {
		for {
			var again struct {
				Subscribe []string `json:"subscribe"`
			}
			if err := conn.ReadJSON(&again); err != nil {
				return
			}
			s.mu.Lock()
			s.subscribes = append(s.subscribes, again.Subscribe)
			s.mu.Unlock()
		}
	}()
}

func (s *wsServer) connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *wsServer) send(t *testing.T, idx int, payload string) {
	s.mu.Lock()
	conn := s.conns[idx]
	s.mu.Unlock()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func (s *wsServer) closeConn(idx int) {
	s.mu.Lock()
	conn := s.conns[idx]
	s.mu.Unlock()
	conn.Close()
}

func (s *wsServer) lastSubscribe() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subscribes) == 0 {
		return nil
	}
	return s.subscribes[len(s.subscribes)-1]
}

func startFeed(t *testing.T, symbol string) (*wsServer, *feed.Feed, chan domain.Tick, context.CancelFunc) {
	t.Helper()

	server := &wsServer{t: t}
	srv := httptest.NewServer(http.HandlerFunc(server.handle))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ticks := make(chan domain.Tick, 16)
	f := feed.New(wsURL, symbol, 50*time.Millisecond, func(tick domain.Tick) {
		ticks <- tick
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.Run(ctx)

	return server, f, ticks, cancel
}

func TestFeedSubscribesOnOpen(t *testing.T) {
	server, _, _, _ := startFeed(t, "BTC-EUR")

	require.Eventually(t, func() bool {
		return server.connections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"BTC-EUR"}, server.lastSubscribe())
}

func TestFeedDeliversTicksIgnoresUnknownTypes(t *testing.T) {
	server, _, ticks, _ := startFeed(t, "BTC-EUR")

	require.Eventually(t, func() bool {
		return server.connections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Unknown envelope types and garbage are skipped silently.
	server.send(t, 0, `{"type": "heartbeat"}`)
	server.send(t, 0, `not json at all`)
	server.send(t, 0, `{"type": "tick", "status": {"active": true, "last_trade": "Bought 0.5 ETH"}, "balances": [{"currency": "ETH", "available_balance": 2}]}`)

	select {
	case tick := <-ticks:
		require.NotNil(t, tick.Status)
		assert.Equal(t, domain.HeartbeatActive, tick.Status.Heartbeat())
		assert.Equal(t, "Bought 0.5 ETH", tick.Status.LastTrade)
		require.Len(t, tick.Balances, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("tick not delivered")
	}

	// The unknown-type messages never reached the handler.
	select {
	case tick := <-ticks:
		t.Fatalf("unexpected extra tick: %+v", tick)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeedReconnectsAndResubscribes(t *testing.T) {
	server, f, _, _ := startFeed(t, "BTC-EUR")

	require.Eventually(t, func() bool {
		return server.connections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Server-side close: the feed must come back after the fixed delay
	// and re-send the subscription for the current symbol.
	server.closeConn(0)

	require.Eventually(t, func() bool {
		return server.connections() == 2
	}, 2*time.Second, 10*time.Millisecond, "no reconnect after close")

	assert.Equal(t, []string{"BTC-EUR"}, server.lastSubscribe())
	assert.Equal(t, feed.StateOpen, f.State())
}

func TestFeedSymbolChangeResendsWithoutReconnect(t *testing.T) {
	server, f, _, _ := startFeed(t, "BTC-EUR")

	require.Eventually(t, func() bool {
		return server.connections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	f.Subscribe("ETH-EUR")

	require.Eventually(t, func() bool {
		last := server.lastSubscribe()
		return len(last) == 1 && last[0] == "ETH-EUR"
	}, 2*time.Second, 10*time.Millisecond, "resubscribe not received")

	// Still the same connection.
	assert.Equal(t, 1, server.connections())
}
