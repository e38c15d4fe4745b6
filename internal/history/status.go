// Package history derives incident and maintenance status from update logs
// and groups incidents into calendar-day buckets.
package history

import (
	"sort"

	"github.com/bissquit/uptime-garden/internal/domain"
)

// newer reports whether a should be ordered before b in a newest-first log.
// Updates sharing a timestamp are ordered by their append sequence.
func newer(a, b domain.StatusUpdate) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Seq > b.Seq
}

// Sorted returns a newest-first copy of the update log.
func Sorted(updates []domain.StatusUpdate) []domain.StatusUpdate {
	out := make([]domain.StatusUpdate, len(updates))
	copy(out, updates)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i], out[j])
	})
	return out
}

// LatestStatus returns the status of the newest update. ok is false for an
// empty log, which is a valid state for a record that was just created.
func LatestStatus(updates []domain.StatusUpdate) (status int, ok bool) {
	if len(updates) == 0 {
		return 0, false
	}
	latest := updates[0]
	for _, u := range updates[1:] {
		if newer(u, latest) {
			latest = u
		}
	}
	return latest.Status, true
}

// Label returns the display label of the incident's current status, or an
// empty string when it has no updates.
func Label(inc *domain.Incident) string {
	status, ok := LatestStatus(inc.History)
	if !ok {
		return ""
	}
	return domain.StatusLabel(inc.Kind(), status)
}

// IsOpen reports whether an incident or maintenance is still in progress.
// An incident closes when it is resolved or its latest update is Resolved.
// A maintenance closes when its latest update is Completed.
func IsOpen(inc *domain.Incident) bool {
	status, ok := LatestStatus(inc.History)
	terminal := ok && status == domain.TerminalStatus(inc.Kind())

	if inc.Kind() == domain.KindMaintenance {
		return !terminal
	}
	return inc.ResolvedAt == nil && !terminal
}

// IsUpcoming reports whether a maintenance has not started yet.
// Regular incidents are never upcoming.
func IsUpcoming(inc *domain.Incident) bool {
	if inc.Kind() != domain.KindMaintenance {
		return false
	}
	status, ok := LatestStatus(inc.History)
	return !ok || status == domain.MaintenanceStatusScheduled
}

// HasOpenIncidents reports whether any regular incident is still open.
// It drives the "all systems operational" banner. Maintenances do not count,
// so a page in a running maintenance window still reads as operational even
// though the maintenance has no resolved_at.
func HasOpenIncidents(incidents []domain.Incident) bool {
	for i := range incidents {
		if incidents[i].Kind() == domain.KindIncident && IsOpen(&incidents[i]) {
			return true
		}
	}
	return false
}
