// Package feed maintains the single live-feed WebSocket connection and
// hands recognized tick payloads to the monitor.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/royen99/cryptobot-monitor/internal/domain"
)

// State is the connection lifecycle; it cycles forever, there is no
// terminal state.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "connecting"
	}
}

// DefaultReconnectDelay is the fixed (non-exponential) pause between
// reconnect attempts.
const DefaultReconnectDelay = 1500 * time.Millisecond

// Handler receives the payload of every recognized tick message.
type Handler func(domain.Tick)

// envelope is the wire shape of a server message. Unknown types are
// ignored for forward compatibility.
type envelope struct {
	Type     string                `json:"type"`
	Status   *domain.TickStatus    `json:"status"`
	Balances []domain.BalanceEntry `json:"balances"`
}

type subscribeMsg struct {
	Subscribe []string `json:"subscribe"`
}

// Feed owns one connection to ws(s)://<host>/ws/live, reconnecting with a
// fixed delay for the life of the session.
type Feed struct {
	url     string
	delay   time.Duration
	dialer  *websocket.Dialer
	handler Handler
	logger  *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	symbol string
	state  State
}

func New(url, symbol string, delay time.Duration, handler Handler, logger *zap.Logger) *Feed {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	return &Feed{
		url:     url,
		delay:   delay,
		dialer:  websocket.DefaultDialer,
		handler: handler,
		logger:  logger,
		symbol:  symbol,
		state:   StateClosed,
	}
}

// State reports the current connection state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe records the selected symbol and, when the connection is open,
// re-sends the subscription in place without reconnecting. Every new
// connection re-sends it on open.
func (f *Feed) Subscribe(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.symbol = symbol
	if f.state == StateOpen && f.conn != nil {
		if err := f.conn.WriteJSON(subscribeMsg{Subscribe: []string{symbol}}); err != nil {
			f.logger.Warn("resubscribe failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

// Run keeps the connection alive until ctx is cancelled. Each cycle:
// Connecting → Open (subscribe, read until failure) → Closed → fixed
// delay → Connecting. Reconnection is attempted indefinitely.
func (f *Feed) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		f.setState(StateConnecting)
		conn, resp, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}
			f.logger.Warn("live feed dial failed", zap.String("url", f.url), zap.Error(err))
			f.setState(StateClosed)
		} else {
			// Subscribe under the lock so a concurrent Subscribe call
			// cannot interleave writes on the fresh connection.
			f.mu.Lock()
			f.conn = conn
			f.state = StateOpen
			symbol := f.symbol
			subErr := conn.WriteJSON(subscribeMsg{Subscribe: []string{symbol}})
			f.mu.Unlock()

			f.logger.Info("live feed connected", zap.String("symbol", symbol))
			if subErr != nil {
				f.logger.Warn("subscribe failed", zap.Error(subErr))
			}

			f.readLoop(conn)

			f.mu.Lock()
			f.conn = nil
			f.state = StateClosed
			f.mu.Unlock()
			f.logger.Info("live feed closed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.delay):
		}
	}
}

// readLoop consumes messages until the transport fails. Secondary close
// errors are swallowed; any failure funnels into the Closed state.
func (f *Feed) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			f.logger.Debug("live feed read error", zap.Error(err))
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			f.logger.Debug("live feed bad payload", zap.Error(err))
			continue
		}
		if env.Type != "tick" {
			continue
		}

		f.handler(domain.Tick{Status: env.Status, Balances: env.Balances})
	}
}

func (f *Feed) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
