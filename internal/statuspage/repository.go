package statuspage

import (
	"context"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
)

// Repository is the read-only data source reports are built from.
type Repository interface {
	GetPage(ctx context.Context, pageID int64) (*domain.Page, error)
	ListComponents(ctx context.Context, pageID int64) ([]domain.Component, error)

	// ListStatusIntervals returns the intervals of the given components that
	// were still in effect at or after since, keyed by component ID and
	// ordered by assigned_at.
	ListStatusIntervals(ctx context.Context, componentIDs []int64, since time.Time) (map[int64][]domain.StatusInterval, error)

	// ListIncidents returns the page's incidents and maintenances created at
	// or after since, plus every unresolved one, each with its full update log.
	ListIncidents(ctx context.Context, pageID int64, since time.Time) ([]domain.Incident, error)
}
