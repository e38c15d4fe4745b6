package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes regular incidents from scheduled maintenances.
type Kind string

// Record kinds.
const (
	KindIncident    Kind = "incident"
	KindMaintenance Kind = "maintenance"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	return k == KindIncident || k == KindMaintenance
}

// Incident status codes.
const (
	IncidentStatusInvestigating = 0
	IncidentStatusIdentified    = 1
	IncidentStatusMonitoring    = 2
	IncidentStatusResolved      = 3
)

// Maintenance status codes.
const (
	MaintenanceStatusScheduled  = 0
	MaintenanceStatusInProgress = 1
	MaintenanceStatusVerifying  = 2
	MaintenanceStatusCompleted  = 3
)

var statusLabels = map[Kind]map[int]string{
	KindIncident: {
		IncidentStatusInvestigating: "Investigating",
		IncidentStatusIdentified:    "Identified",
		IncidentStatusMonitoring:    "Monitoring",
		IncidentStatusResolved:      "Resolved",
	},
	KindMaintenance: {
		MaintenanceStatusScheduled:  "Scheduled",
		MaintenanceStatusInProgress: "In progress",
		MaintenanceStatusVerifying:  "Verifying",
		MaintenanceStatusCompleted:  "Completed",
	},
}

// StatusLabel returns the label of an update status code for the given kind.
func StatusLabel(kind Kind, code int) string {
	if l, ok := statusLabels[kind][code]; ok {
		return l
	}
	return UnknownLabel
}

// TerminalStatus returns the code that closes a record of the given kind.
func TerminalStatus(kind Kind) int {
	if kind == KindMaintenance {
		return MaintenanceStatusCompleted
	}
	return IncidentStatusResolved
}

// Severity represents the severity level of an incident.
type Severity string

// Severity levels.
const (
	SeverityNone        Severity = "None"
	SeverityMinor       Severity = "Minor"
	SeverityMajor       Severity = "Major"
	SeverityCritical    Severity = "Critical"
	SeverityMaintenance Severity = "Maintenance"
)

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNone, SeverityMinor, SeverityMajor, SeverityCritical, SeverityMaintenance:
		return true
	}
	return false
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(cases.Title(language.English).String(strings.TrimSpace(s)))
	if !sev.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
	return sev, nil
}

// StatusUpdate is one append-only entry in an incident's log.
// Seq is assigned at append time and orders updates sharing a timestamp.
type StatusUpdate struct {
	ID         int64     `json:"id"`
	IncidentID int64     `json:"incident_id"`
	Seq        int64     `json:"seq"`
	Status     int       `json:"status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Incident represents an incident or, when ScheduledAt is set, a scheduled
// maintenance. CompleteAt, AutoStart and AutoEnd are kept for an external
// scheduler and have no effect here.
type Incident struct {
	ID           int64          `json:"id"`
	PageID       int64          `json:"page_id"`
	Name         string         `json:"name"`
	Severity     Severity       `json:"severity"`
	CreatedAt    time.Time      `json:"created_at"`
	ResolvedAt   *time.Time     `json:"resolved_at"`
	ScheduledAt  *time.Time     `json:"scheduled_at"`
	CompleteAt   *time.Time     `json:"complete_at"`
	AutoStart    bool           `json:"auto_start"`
	AutoEnd      bool           `json:"auto_end"`
	History      []StatusUpdate `json:"history"`
	ComponentIDs []int64        `json:"component_ids"`
}

// Kind returns KindMaintenance for scheduled records, KindIncident otherwise.
func (i *Incident) Kind() Kind {
	if i.ScheduledAt != nil {
		return KindMaintenance
	}
	return KindIncident
}

// IsResolved returns true if a resolution time has been recorded.
func (i *Incident) IsResolved() bool {
	return i.ResolvedAt != nil
}
