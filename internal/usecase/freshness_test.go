package usecase_test

import (
	"testing"
	"time"

	"github.com/royen99/cryptobot-monitor/internal/domain"
	"github.com/royen99/cryptobot-monitor/internal/usecase"
)

func TestFreshnessGracePeriod(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := usecase.NewFreshness(70 * time.Second)

	if f.Alive(base) {
		t.Error("fresh model should start idle")
	}

	f.Observe(base, domain.HeartbeatActive, "")
	if !f.Alive(base) {
		t.Error("should be alive right after a positive heartbeat")
	}

	// Negative and unknown polls inside the grace window keep liveness.
	f.Observe(base.Add(10*time.Second), domain.HeartbeatInactive, "")
	if !f.Alive(base.Add(10 * time.Second)) {
		t.Error("negative poll within grace should keep liveness")
	}
	f.Observe(base.Add(60*time.Second), domain.HeartbeatUnknown, "")
	if !f.Alive(base.Add(69 * time.Second)) {
		t.Error("unknown poll within grace should keep liveness")
	}

	if f.Alive(base.Add(70 * time.Second)) {
		t.Error("liveness should lapse once the grace window elapses")
	}
}

func TestFreshnessLastActiveMonotonic(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := usecase.NewFreshness(70 * time.Second)

	f.Observe(base.Add(30*time.Second), domain.HeartbeatActive, "")
	// An out-of-order earlier heartbeat must not rewind the clock.
	f.Observe(base, domain.HeartbeatActive, "")

	if !f.Alive(base.Add(99 * time.Second)) {
		t.Error("lastActiveAt went backwards")
	}
}

func TestFreshnessStickyText(t *testing.T) {
	base := time.Now()
	f := usecase.NewFreshness(0)

	tests := []struct {
		name string
		feed string
		want string
	}{
		{"Empty at start", "", ""},
		{"Placeholder ignored at start", "No trades yet", ""},
		{"Real event sticks", "Bought 0.5 ETH", "Bought 0.5 ETH"},
		{"Empty does not erase", "", "Bought 0.5 ETH"},
		{"Whitespace does not erase", "   ", "Bought 0.5 ETH"},
		{"Placeholder does not erase", "no trades YET", "Bought 0.5 ETH"},
		{"New event replaces", "Sold 0.5 ETH", "Sold 0.5 ETH"},
		{"Trimmed before storing", "  Last update: 3 seconds ago  ", "Last update: 3 seconds ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.Observe(base, domain.HeartbeatActive, tt.feed)
			if got := f.LastEventText(); got != tt.want {
				t.Errorf("sticky text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFreshnessStatusLine(t *testing.T) {
	base := time.Now()
	f := usecase.NewFreshness(70 * time.Second)

	if got := f.StatusLine(base); got != "Idle" {
		t.Errorf("StatusLine() = %q, want Idle", got)
	}

	f.Observe(base, domain.HeartbeatActive, "Bought 0.5 ETH")
	if got := f.StatusLine(base); got != "Active • Bought 0.5 ETH" {
		t.Errorf("StatusLine() = %q", got)
	}

	// Sticky text survives into the idle label.
	later := base.Add(2 * time.Minute)
	if got := f.StatusLine(later); got != "Idle • Bought 0.5 ETH" {
		t.Errorf("StatusLine() = %q", got)
	}
}
