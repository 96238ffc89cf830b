package usecase

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Channel identifies one independently throttled refresh.
type Channel string

const (
	ChannelStatus  Channel = "status"
	ChannelTrades  Channel = "trades"
	ChannelBadges  Channel = "badges"
	ChannelSummary Channel = "summary"
)

// Action performs one refresh of a channel. A failed action still counts
// as an execution; the next trigger after the interval retries it.
type Action func(ctx context.Context) error

type throttle struct {
	minInterval time.Duration
	lastRun     time.Time
	action      Action
}

// Coordinator gates how often each refresh channel may execute. It is
// confined to the monitor's event loop goroutine, which serializes all
// triggers, so it carries no locking of its own.
type Coordinator struct {
	channels map[Channel]*throttle
}

func NewCoordinator() *Coordinator {
	return &Coordinator{channels: make(map[Channel]*throttle)}
}

func (c *Coordinator) Register(ch Channel, minInterval time.Duration, action Action) {
	c.channels[ch] = &throttle{minInterval: minInterval, action: action}
}

// MaybeRun executes the channel's action iff forced or the minimum
// interval has elapsed since its last execution. Forced runs record their
// timestamp exactly like scheduled ones, so a force never causes an
// immediate follow-up execution.
func (c *Coordinator) MaybeRun(ctx context.Context, ch Channel, now time.Time, force bool) (bool, error) {
	t, ok := c.channels[ch]
	if !ok {
		return false, errors.Errorf("unknown refresh channel %q", ch)
	}

	if !force && now.Sub(t.lastRun) < t.minInterval {
		return false, nil
	}

	t.lastRun = now
	return true, t.action(ctx)
}

// LastRun exposes a channel's execution timestamp, zero when it has never
// run.
func (c *Coordinator) LastRun(ch Channel) time.Time {
	if t, ok := c.channels[ch]; ok {
		return t.lastRun
	}
	return time.Time{}
}
