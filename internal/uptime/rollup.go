package uptime

import "fmt"

// PageDaySeries rolls component series up into a page series: each day takes
// the lowest uptime reported by any component. All inputs must cover the
// same days. With no components the result is nil and the page is fully up.
func PageDaySeries(componentSeries [][]DayUptime) ([]DayUptime, error) {
	if len(componentSeries) == 0 {
		return nil, nil
	}

	first := componentSeries[0]
	rollup := make([]DayUptime, len(first))
	copy(rollup, first)

	for n, series := range componentSeries[1:] {
		if len(series) != len(first) {
			return nil, fmt.Errorf("%w: series %d has %d days, want %d",
				ErrSeriesMismatch, n+1, len(series), len(first))
		}
		for i, d := range series {
			if d.Day != rollup[i].Day {
				return nil, fmt.Errorf("%w: series %d day %d is %s, want %s",
					ErrSeriesMismatch, n+1, i, d.Day, rollup[i].Day)
			}
			if d.UptimePct < rollup[i].UptimePct {
				rollup[i] = d
			}
		}
	}
	return rollup, nil
}

// AllOperational reports whether every day of a rollup is fully up.
func AllOperational(rollup []DayUptime) bool {
	for _, d := range rollup {
		if d.UptimePct < 100 {
			return false
		}
	}
	return true
}
