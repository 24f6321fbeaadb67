package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeUntilNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "before the daily slot",
			now:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			want: 15 * time.Minute,
		},
		{
			name: "exactly at the slot rolls to tomorrow",
			now:  time.Date(2026, 3, 10, 0, 15, 0, 0, time.UTC),
			want: 24 * time.Hour,
		},
		{
			name: "after the slot",
			now:  time.Date(2026, 3, 10, 18, 15, 0, 0, time.UTC),
			want: 6 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timeUntilNextRun(tt.now))
		})
	}
}
