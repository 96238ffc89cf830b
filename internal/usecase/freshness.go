package usecase

import (
	"strings"
	"time"

	"github.com/royen99/cryptobot-monitor/internal/domain"
)

// DefaultGracePeriod keeps the monitor reporting "active" for this long
// after the last positive heartbeat, so transient negative polls do not
// flap the indicator.
const DefaultGracePeriod = 70 * time.Second

// noTradesPlaceholder is the backend's stand-in text when nothing has
// happened yet. It never replaces a real event description.
const noTradesPlaceholder = "no trades yet"

// Freshness turns intermittent heartbeat observations into a stable
// active/idle state with grace-period hysteresis, and keeps the last
// meaningful event description sticky.
type Freshness struct {
	grace        time.Duration
	lastActiveAt time.Time
	stickyText   string
}

func NewFreshness(grace time.Duration) *Freshness {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Freshness{grace: grace}
}

// Observe feeds one heartbeat plus an optional event description into the
// model. lastActiveAt only moves forward; sticky text only changes when
// the new text is non-empty after trimming and not the placeholder.
func (f *Freshness) Observe(now time.Time, hb domain.Heartbeat, eventText string) {
	if hb == domain.HeartbeatActive && now.After(f.lastActiveAt) {
		f.lastActiveAt = now
	}

	text := strings.TrimSpace(eventText)
	if text != "" && !strings.EqualFold(text, noTradesPlaceholder) {
		f.stickyText = text
	}
}

// Alive reports effective liveness: true within the grace window of the
// last positive heartbeat, regardless of negative or unknown polls since.
func (f *Freshness) Alive(now time.Time) bool {
	if f.lastActiveAt.IsZero() {
		return false
	}
	return now.Sub(f.lastActiveAt) < f.grace
}

// LastEventText returns the sticky event description, which may be empty
// before the first meaningful observation.
func (f *Freshness) LastEventText() string {
	return f.stickyText
}

// StatusLine renders the label shown next to the dashboard title.
func (f *Freshness) StatusLine(now time.Time) string {
	label := "Idle"
	if f.Alive(now) {
		label = "Active"
	}
	if f.stickyText == "" {
		return label
	}
	return label + " • " + f.stickyText
}
