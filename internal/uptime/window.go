package uptime

import (
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
)

// DayUptime is the uptime of one calendar day.
type DayUptime struct {
	Day             domain.Date `json:"day"`
	UptimePct       float64     `json:"uptime"`
	DowntimeSeconds float64     `json:"downtime_seconds"`
}

// Series returns one entry per day of the trailing window, oldest first;
// the last entry is today, clamped to now.
func Series(intervals []domain.StatusInterval, windowDays int, now time.Time, loc *time.Location) []DayUptime {
	days := domain.TrailingDays(windowDays, now, loc)
	if len(days) == 0 {
		return nil
	}

	down := mergeDown(intervals, now)
	series := make([]DayUptime, len(days))
	for i, d := range days {
		day := daySpan(d, now, loc)
		downtime := downtimeIn(down, day)
		series[i] = DayUptime{
			Day:             d,
			UptimePct:       DayUptimePct(downtime, day.length()),
			DowntimeSeconds: downtime.Seconds(),
		}
	}
	return series
}

// TotalUptime is the unweighted mean of the daily percentages, rounded to
// two decimals. Each day counts equally whatever its length. An empty
// series is fully up.
func TotalUptime(series []DayUptime) float64 {
	if len(series) == 0 {
		return 100
	}
	var sum float64
	for _, d := range series {
		sum += d.UptimePct
	}
	return round2(sum / float64(len(series)))
}

// Grade is the colour bucket of a daily uptime bar.
type Grade string

// Bar grades.
const (
	GradeGreen  Grade = "green"
	GradeYellow Grade = "yellow"
	GradeOrange Grade = "orange"
	GradeRed    Grade = "red"
)

// GradeOf buckets an uptime percentage.
func GradeOf(pct float64) Grade {
	switch {
	case pct >= 90:
		return GradeGreen
	case pct >= 75:
		return GradeYellow
	case pct >= 50:
		return GradeOrange
	default:
		return GradeRed
	}
}
