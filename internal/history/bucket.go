package history

import (
	"sort"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
)

// DayBucket holds the incidents created on one calendar day.
type DayBucket struct {
	Day       domain.Date       `json:"day"`
	Incidents []domain.Incident `json:"incidents"`
}

// Buckets is a day-ordered list of buckets, oldest first.
type Buckets []DayBucket

// Map indexes the buckets by day. Every day of the window is present,
// empty days map to an empty slice.
func (b Buckets) Map() map[domain.Date][]domain.Incident {
	m := make(map[domain.Date][]domain.Incident, len(b))
	for _, bucket := range b {
		m[bucket.Day] = bucket.Incidents
	}
	return m
}

// Filter returns buckets for the same days holding only incidents for which
// keep returns true.
func (b Buckets) Filter(keep func(*domain.Incident) bool) Buckets {
	out := make(Buckets, len(b))
	for i, bucket := range b {
		kept := make([]domain.Incident, 0, len(bucket.Incidents))
		for j := range bucket.Incidents {
			if keep(&bucket.Incidents[j]) {
				kept = append(kept, bucket.Incidents[j])
			}
		}
		out[i] = DayBucket{Day: bucket.Day, Incidents: kept}
	}
	return out
}

// Count returns the number of incidents across all buckets.
func (b Buckets) Count() int {
	n := 0
	for _, bucket := range b {
		n += len(bucket.Incidents)
	}
	return n
}

// Dedupe drops repeated incidents, keeping the first occurrence of each ID.
// The same incident is reachable from every component it affects.
func Dedupe(incidents []domain.Incident) []domain.Incident {
	seen := make(map[int64]struct{}, len(incidents))
	out := make([]domain.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if _, ok := seen[inc.ID]; ok {
			continue
		}
		seen[inc.ID] = struct{}{}
		out = append(out, inc)
	}
	return out
}

// BucketByDay groups incidents by the calendar day of their creation in loc
// over the trailing window ending today. An incident appears only under the
// day it was created, however long it lasted. Incidents created outside the
// window are dropped. Within a day incidents are ordered newest first.
func BucketByDay(incidents []domain.Incident, windowDays int, now time.Time, loc *time.Location) Buckets {
	days := domain.TrailingDays(windowDays, now, loc)
	if len(days) == 0 {
		return Buckets{}
	}

	index := make(map[domain.Date]int, len(days))
	buckets := make(Buckets, len(days))
	for i, d := range days {
		index[d] = i
		buckets[i] = DayBucket{Day: d, Incidents: []domain.Incident{}}
	}

	for _, inc := range Dedupe(incidents) {
		i, ok := index[domain.DateOf(inc.CreatedAt, loc)]
		if !ok {
			continue
		}
		buckets[i].Incidents = append(buckets[i].Incidents, inc)
	}

	for _, bucket := range buckets {
		list := bucket.Incidents
		sort.SliceStable(list, func(a, b int) bool {
			if !list[a].CreatedAt.Equal(list[b].CreatedAt) {
				return list[a].CreatedAt.After(list[b].CreatedAt)
			}
			return list[a].ID > list[b].ID
		})
	}
	return buckets
}

// OnlyIncidents keeps regular incidents.
func OnlyIncidents(inc *domain.Incident) bool {
	return inc.Kind() == domain.KindIncident
}

// VisibleMaintenances keeps maintenances that have started; scheduled ones
// are not shown in history yet.
func VisibleMaintenances(inc *domain.Incident) bool {
	return inc.Kind() == domain.KindMaintenance && !IsUpcoming(inc)
}
