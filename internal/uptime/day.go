// Package uptime computes per-day and per-window uptime from component
// status intervals.
//
// All functions are pure: the current instant and the viewer's time zone
// are passed in, never read from the environment.
package uptime

import (
	"math"
	"sort"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
)

// span is a half-open time range [start, end).
type span struct {
	start time.Time
	end   time.Time
}

func (s span) length() time.Duration {
	if !s.end.After(s.start) {
		return 0
	}
	return s.end.Sub(s.start)
}

// overlap returns the length of the intersection of s and other.
func (s span) overlap(other span) time.Duration {
	start := s.start
	if other.start.After(start) {
		start = other.start
	}
	end := s.end
	if other.end.Before(end) {
		end = other.end
	}
	return span{start: start, end: end}.length()
}

// daySpan returns the part of date that counts towards uptime.
// Today ends at now; days after today are empty.
func daySpan(date domain.Date, now time.Time, loc *time.Location) span {
	start := date.Start(loc)
	end := date.AddDays(1).Start(loc)
	if end.After(now) {
		end = now
	}
	if end.Before(start) {
		end = start
	}
	return span{start: start, end: end}
}

// mergeDown returns the union of all down-classified intervals as a sorted
// list of disjoint spans. Open intervals end at now.
func mergeDown(intervals []domain.StatusInterval, now time.Time) []span {
	spans := make([]span, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Status.IsDown() {
			continue
		}
		s := span{start: iv.AssignedAt, end: iv.EndOr(now)}
		if s.length() == 0 {
			continue
		}
		spans = append(spans, s)
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start.Before(spans[j].start)
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start.After(last.end) {
			merged = append(merged, s)
			continue
		}
		if s.end.After(last.end) {
			last.end = s.end
		}
	}
	return merged
}

// downtimeIn sums the overlap of disjoint down spans with day, capped at the
// day's length.
func downtimeIn(down []span, day span) time.Duration {
	var total time.Duration
	for _, s := range down {
		if !s.start.Before(day.end) {
			break
		}
		total += s.overlap(day)
	}
	if l := day.length(); total > l {
		total = l
	}
	return total
}

// DayDowntime returns the downtime of one component on one calendar day in
// loc. Overlapping down intervals are merged first, so concurrent outages
// are counted once.
func DayDowntime(intervals []domain.StatusInterval, date domain.Date, now time.Time, loc *time.Location) time.Duration {
	return downtimeIn(mergeDown(intervals, now), daySpan(date, now, loc))
}

// DayUptimePct converts a day's downtime into a percentage rounded to two
// decimals. A zero-length day is fully up.
func DayUptimePct(downtime, dayLength time.Duration) float64 {
	if dayLength <= 0 {
		return 100
	}
	return round2((1 - downtime.Seconds()/dayLength.Seconds()) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
