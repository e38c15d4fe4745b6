package uptime

import (
	"testing"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(start string, pcts ...float64) []DayUptime {
	d := date(start)
	s := make([]DayUptime, len(pcts))
	for i, p := range pcts {
		s[i] = DayUptime{Day: d.AddDays(i), UptimePct: p}
	}
	return s
}

func TestPageDaySeries_TakesMinimumPerDay(t *testing.T) {
	api := seriesOf("2024-01-01", 100, 83.33, 100, 99.5)
	web := seriesOf("2024-01-01", 100, 100, 42.1, 100)
	db := seriesOf("2024-01-01", 97.2, 90, 100, 100)

	rollup, err := PageDaySeries([][]DayUptime{api, web, db})
	require.NoError(t, err)
	require.Len(t, rollup, 4)

	assert.Equal(t, []float64{97.2, 83.33, 42.1, 99.5}, pcts(rollup))
	for i, d := range rollup {
		assert.Equal(t, api[i].Day, d.Day)
	}
	assert.False(t, AllOperational(rollup))
}

func TestPageDaySeries_IsOrderIndependent(t *testing.T) {
	a := seriesOf("2024-01-01", 100, 50, 75)
	b := seriesOf("2024-01-01", 60, 100, 80)

	ab, err := PageDaySeries([][]DayUptime{a, b})
	require.NoError(t, err)
	ba, err := PageDaySeries([][]DayUptime{b, a})
	require.NoError(t, err)

	assert.Equal(t, pcts(ab), pcts(ba))
}

func TestPageDaySeries_DoesNotAliasInput(t *testing.T) {
	a := seriesOf("2024-01-01", 100, 100)
	b := seriesOf("2024-01-01", 10, 20)

	_, err := PageDaySeries([][]DayUptime{a, b})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 100}, pcts(a))
}

func TestPageDaySeries_NoComponents(t *testing.T) {
	rollup, err := PageDaySeries(nil)
	require.NoError(t, err)
	assert.Nil(t, rollup)
	assert.True(t, AllOperational(rollup))
}

func TestPageDaySeries_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		series [][]DayUptime
	}{
		{
			name:   "different length",
			series: [][]DayUptime{seriesOf("2024-01-01", 100, 100), seriesOf("2024-01-01", 100)},
		},
		{
			name:   "different days",
			series: [][]DayUptime{seriesOf("2024-01-01", 100, 100), seriesOf("2024-01-02", 100, 100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageDaySeries(tt.series)
			assert.ErrorIs(t, err, ErrSeriesMismatch)
		})
	}
}

func TestAllOperational(t *testing.T) {
	assert.True(t, AllOperational(seriesOf("2024-01-01", 100, 100, 100)))
	assert.False(t, AllOperational(seriesOf("2024-01-01", 100, 99.99, 100)))
}

func TestPageDaySeries_FromComponentHistory(t *testing.T) {
	now := ts("2024-01-03T00:00:00Z")
	up := Series(nil, 3, now, time.UTC)
	down := Series([]domain.StatusInterval{
		interval(domain.ComponentStatusMajorOutage, "2024-01-02T00:00:00Z", tsp("2024-01-02T12:00:00Z")),
	}, 3, now, time.UTC)

	rollup, err := PageDaySeries([][]DayUptime{up, down})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 50, 100}, pcts(rollup))
}

func pcts(series []DayUptime) []float64 {
	out := make([]float64, len(series))
	for i, d := range series {
		out[i] = d.UptimePct
	}
	return out
}
