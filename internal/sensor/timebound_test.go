package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeBound(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01T10:00:00Z", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2026-03-01T10:00:00.250Z", time.Date(2026, 3, 1, 10, 0, 0, 250_000_000, time.UTC)},
		{"2026-03-01T11:00:00+01:00", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2026-03-01T10:00:00", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2026-03-01 10:00:00", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2026-03-01 10:00:00.5", time.Date(2026, 3, 1, 10, 0, 0, 500_000_000, time.UTC)},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"  2026-03-01  ", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeBound(tt.in)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimeBound_Empty(t *testing.T) {
	got, err := ParseTimeBound("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseTimeBound_Invalid(t *testing.T) {
	for _, in := range []string{"yesterday", "1709287200", "2026-13-01", "01/03/2026", "2026-03-01T25:00:00Z"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTimeBound(in)
			assert.ErrorIs(t, err, ErrInvalidTimeBound)
		})
	}
}
