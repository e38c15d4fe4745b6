package domain

import "time"

// ComponentStatus represents the operational status of a component.
type ComponentStatus int

// Component statuses.
const (
	ComponentStatusOperational   ComponentStatus = 1
	ComponentStatusDegraded      ComponentStatus = 2
	ComponentStatusPartialOutage ComponentStatus = 3
	ComponentStatusMajorOutage   ComponentStatus = 4
)

var componentStatusLabels = map[ComponentStatus]string{
	ComponentStatusOperational:   "Operational",
	ComponentStatusDegraded:      "Degraded Performance",
	ComponentStatusPartialOutage: "Partial Outage",
	ComponentStatusMajorOutage:   "Major Outage",
}

// IsValid checks if the component status is a known code.
func (s ComponentStatus) IsValid() bool {
	_, ok := componentStatusLabels[s]
	return ok
}

// IsDown reports whether the status counts as downtime.
// Only partial and major outages are down; degraded performance and
// unknown codes count as up.
func (s ComponentStatus) IsDown() bool {
	return s == ComponentStatusPartialOutage || s == ComponentStatusMajorOutage
}

// Label returns the display label, or UnknownLabel for unknown codes.
func (s ComponentStatus) Label() string {
	if l, ok := componentStatusLabels[s]; ok {
		return l
	}
	return UnknownLabel
}

// Component represents a monitored component on a status page.
type Component struct {
	ID            int64            `json:"id"`
	PageID        int64            `json:"page_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Status        ComponentStatus  `json:"status"`
	DisplayUptime bool             `json:"display_uptime"`
	Order         int              `json:"order"`
	CreatedAt     time.Time        `json:"created_at"`
	StatusHistory []StatusInterval `json:"status_history,omitempty"`
}

// StatusInterval is a span during which a component held one status.
// RemovedAt is nil while the status is still in effect.
type StatusInterval struct {
	ID          int64           `json:"id"`
	ComponentID int64           `json:"component_id"`
	Status      ComponentStatus `json:"status"`
	AssignedAt  time.Time       `json:"assigned_at"`
	RemovedAt   *time.Time      `json:"removed_at"`
}

// NewStatusInterval builds a validated interval.
func NewStatusInterval(componentID int64, status ComponentStatus, assignedAt time.Time, removedAt *time.Time) (StatusInterval, error) {
	iv := StatusInterval{
		ComponentID: componentID,
		Status:      status,
		AssignedAt:  assignedAt,
		RemovedAt:   removedAt,
	}
	if err := iv.Validate(); err != nil {
		return StatusInterval{}, err
	}
	return iv, nil
}

// Validate checks that the interval does not end before it starts.
func (iv StatusInterval) Validate() error {
	if iv.RemovedAt != nil && iv.RemovedAt.Before(iv.AssignedAt) {
		return ErrInvalidInterval
	}
	return nil
}

// IsOpen returns true if the status is still in effect.
func (iv StatusInterval) IsOpen() bool {
	return iv.RemovedAt == nil
}

// EndOr returns RemovedAt, or now for an open interval.
func (iv StatusInterval) EndOr(now time.Time) time.Time {
	if iv.RemovedAt != nil {
		return *iv.RemovedAt
	}
	return now
}

// Page represents a public status page.
type Page struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CompanyWebsite *string   `json:"company_website"`
	SupportURL     *string   `json:"support_url"`
	CreatedAt      time.Time `json:"created_at"`
}
