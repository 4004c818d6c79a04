package fee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyQuote(t *testing.T) {
	entry := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		exit time.Time
		want int64
	}{
		{"zero elapsed time", entry, 0},
		{"exactly the grace period", entry.Add(15 * time.Minute), 0},
		{"one minute under the grace period", entry.Add(14 * time.Minute), 0},
		{"one full unit past grace", entry.Add(25 * time.Minute), 1500},
		{"partial second unit is not charged", entry.Add(34 * time.Minute), 1500},
		{"second unit boundary", entry.Add(35 * time.Minute), 3000},
		{"long stay", entry.Add(2*time.Hour + 15*time.Minute), 18000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DefaultPolicy.Quote(entry, tc.exit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("exit before entry fails", func(t *testing.T) {
		_, err := DefaultPolicy.Quote(entry, entry.Add(-time.Minute))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("sub-minute remainders are floored", func(t *testing.T) {
		got, err := DefaultPolicy.Quote(entry, entry.Add(24*time.Minute+59*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})

	t.Run("custom policy", func(t *testing.T) {
		p := Policy{GraceMinutes: 30, UnitMinutes: 60, UnitRate: 4000}
		got, err := p.Quote(entry, entry.Add(3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(8000), got)
	})
}
