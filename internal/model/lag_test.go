package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Lag
		wantErr bool
	}{
		{in: "D-1", want: LagD1},
		{in: "d-3", want: "D-3"},
		{in: "IDA-1", want: LagIDA1},
		{in: "ida-1", want: LagIDA1},
		{in: "D-0", wantErr: true},
		{in: "D--2", wantErr: true},
		{in: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLag(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLagFromDates(t *testing.T) {
	t.Parallel()

	day := NewTradingDay(2025, time.January, 15)

	lag, err := LagFromDates(day, time.Date(2025, time.January, 14, 6, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, LagD1, lag)

	lag, err = LagFromDates(day, time.Date(2025, time.January, 12, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Lag("D-3"), lag)

	_, err = LagFromDates(day, time.Date(2025, time.January, 15, 6, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidLag)

	_, err = LagFromDates(day, time.Date(2025, time.January, 16, 6, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidLag)
}

func TestLagTableSuffix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_D_Minus_1", LagD1.TableSuffix())
	assert.Equal(t, "_D_Minus_X", Lag("D-2").TableSuffix())
	assert.Equal(t, "_D_Minus_X", LagIDA1.TableSuffix())
	assert.True(t, LagD1.IsDayAheadOne())
	assert.False(t, LagIDA1.IsDayAheadOne())
}
