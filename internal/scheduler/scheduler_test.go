package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ynl8015/LinguaLetter-sub000/internal/config"
)

func TestNextOccurrence(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 3, 10, 5, 30, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		at   config.Clock
		want time.Time
	}{
		{
			name: "later today",
			now:  base,
			at:   config.Clock{Hour: 7, Minute: 0},
			want: time.Date(2026, 3, 10, 7, 0, 0, 0, loc),
		},
		{
			name: "already passed, tomorrow",
			now:  base,
			at:   config.Clock{Hour: 5, Minute: 0},
			want: time.Date(2026, 3, 11, 5, 0, 0, 0, loc),
		},
		{
			name: "exactly now fires tomorrow",
			now:  time.Date(2026, 3, 10, 6, 0, 0, 0, loc),
			at:   config.Clock{Hour: 6, Minute: 0},
			want: time.Date(2026, 3, 11, 6, 0, 0, 0, loc),
		},
		{
			name: "same hour later minute",
			now:  base,
			at:   config.Clock{Hour: 5, Minute: 45},
			want: time.Date(2026, 3, 10, 5, 45, 0, 0, loc),
		},
		{
			name: "month rollover",
			now:  time.Date(2026, 3, 31, 23, 50, 0, 0, loc),
			at:   config.Clock{Hour: 6, Minute: 0},
			want: time.Date(2026, 4, 1, 6, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextOccurrence(tt.now, tt.at))
		})
	}
}

func TestScheduler_FiresAndStops(t *testing.T) {
	var fired atomic.Int32

	// Pin "now" just before the trigger so the timer fires almost
	// immediately.
	start := time.Date(2026, 3, 10, 5, 59, 59, int(time.Second-50*time.Millisecond), time.UTC)
	realStart := time.Now()

	s := New(slog.New(slog.DiscardHandler), Job{
		Name: "test",
		At:   config.Clock{Hour: 6, Minute: 0},
		Run:  func(ctx context.Context) { fired.Add(1) },
	})
	s.WithClock(func() time.Time { return start.Add(time.Since(realStart)) })

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_StopBeforeFire(t *testing.T) {
	var fired atomic.Int32

	s := New(slog.New(slog.DiscardHandler), Job{
		Name: "never",
		At:   config.Clock{Hour: 6, Minute: 0},
		Run:  func(ctx context.Context) { fired.Add(1) },
	})
	// Pin "now" twelve hours from the trigger.
	s.WithClock(func() time.Time { return time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC) })
	s.Start(context.Background())
	s.Stop()
	assert.Zero(t, fired.Load())
}
