// Package postgres provides PostgreSQL implementation of the status page repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
	"github.com/bissquit/uptime-garden/internal/statuspage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is an interface for read operations that both *pgxpool.Pool and pgx.Tx implement.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements statuspage.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetPage retrieves a page by its ID.
func (r *Repository) GetPage(ctx context.Context, pageID int64) (*domain.Page, error) {
	query := `
		SELECT id, name, company_website, support_url, created_at
		FROM pages
		WHERE id = $1
	`
	var page domain.Page
	err := r.db.QueryRow(ctx, query, pageID).Scan(
		&page.ID,
		&page.Name,
		&page.CompanyWebsite,
		&page.SupportURL,
		&page.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, statuspage.ErrPageNotFound
		}
		return nil, fmt.Errorf("get page: %w", err)
	}
	return &page, nil
}

// ListComponents retrieves the components of a page in display order.
func (r *Repository) ListComponents(ctx context.Context, pageID int64) ([]domain.Component, error) {
	query := `
		SELECT id, page_id, name, description, status, display_uptime, "order", created_at
		FROM components
		WHERE page_id = $1
		ORDER BY "order", id
	`
	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	components := make([]domain.Component, 0)
	for rows.Next() {
		var c domain.Component
		if err := rows.Scan(
			&c.ID,
			&c.PageID,
			&c.Name,
			&c.Description,
			&c.Status,
			&c.DisplayUptime,
			&c.Order,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}
	return components, nil
}

// ListStatusIntervals retrieves the status intervals of the given components
// that ended at or after since or are still open.
func (r *Repository) ListStatusIntervals(ctx context.Context, componentIDs []int64, since time.Time) (map[int64][]domain.StatusInterval, error) {
	out := make(map[int64][]domain.StatusInterval, len(componentIDs))
	if len(componentIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT id, component_id, status, assigned_at, removed_at
		FROM component_statuses
		WHERE component_id = ANY($1)
		  AND (removed_at IS NULL OR removed_at >= $2)
		ORDER BY component_id, assigned_at, id
	`
	rows, err := r.db.Query(ctx, query, componentIDs, since)
	if err != nil {
		return nil, fmt.Errorf("list status intervals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var iv domain.StatusInterval
		if err := rows.Scan(
			&iv.ID,
			&iv.ComponentID,
			&iv.Status,
			&iv.AssignedAt,
			&iv.RemovedAt,
		); err != nil {
			return nil, fmt.Errorf("scan status interval: %w", err)
		}
		out[iv.ComponentID] = append(out[iv.ComponentID], iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status intervals: %w", err)
	}
	return out, nil
}

// ListIncidents retrieves the incidents of a page created at or after since,
// plus older regular incidents without resolved_at, with their updates and
// affected components. Older maintenances are never needed.
func (r *Repository) ListIncidents(ctx context.Context, pageID int64, since time.Time) ([]domain.Incident, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	incidents, err := listIncidents(ctx, tx, pageID, since)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		return incidents, nil
	}

	ids := make([]int64, len(incidents))
	index := make(map[int64]int, len(incidents))
	for i, inc := range incidents {
		ids[i] = inc.ID
		index[inc.ID] = i
	}

	if err := loadUpdates(ctx, tx, ids, incidents, index); err != nil {
		return nil, err
	}
	if err := loadComponentIDs(ctx, tx, ids, incidents, index); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return incidents, nil
}

func listIncidents(ctx context.Context, q querier, pageID int64, since time.Time) ([]domain.Incident, error) {
	query := `
		SELECT id, page_id, name, severity, created_at, resolved_at,
		       scheduled_at, complete_at, auto_start, auto_end
		FROM incidents
		WHERE page_id = $1
		  AND (created_at >= $2 OR (resolved_at IS NULL AND scheduled_at IS NULL))
		ORDER BY created_at DESC, id DESC
	`
	rows, err := q.Query(ctx, query, pageID, since)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var inc domain.Incident
		if err := rows.Scan(
			&inc.ID,
			&inc.PageID,
			&inc.Name,
			&inc.Severity,
			&inc.CreatedAt,
			&inc.ResolvedAt,
			&inc.ScheduledAt,
			&inc.CompleteAt,
			&inc.AutoStart,
			&inc.AutoEnd,
		); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		inc.History = make([]domain.StatusUpdate, 0)
		inc.ComponentIDs = make([]int64, 0)
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}

func loadUpdates(ctx context.Context, q querier, ids []int64, incidents []domain.Incident, index map[int64]int) error {
	query := `
		SELECT id, incident_id, seq, status, message, created_at
		FROM incident_statuses
		WHERE incident_id = ANY($1)
		ORDER BY incident_id, created_at, seq
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list incident updates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.StatusUpdate
		if err := rows.Scan(
			&u.ID,
			&u.IncidentID,
			&u.Seq,
			&u.Status,
			&u.Message,
			&u.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan incident update: %w", err)
		}
		i := index[u.IncidentID]
		incidents[i].History = append(incidents[i].History, u)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate incident updates: %w", err)
	}
	return nil
}

func loadComponentIDs(ctx context.Context, q querier, ids []int64, incidents []domain.Incident, index map[int64]int) error {
	query := `
		SELECT incident_id, component_id
		FROM incident_components
		WHERE incident_id = ANY($1)
		ORDER BY incident_id, component_id
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list incident components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var incidentID, componentID int64
		if err := rows.Scan(&incidentID, &componentID); err != nil {
			return fmt.Errorf("scan incident component: %w", err)
		}
		i := index[incidentID]
		incidents[i].ComponentIDs = append(incidents[i].ComponentIDs, componentID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate incident components: %w", err)
	}
	return nil
}
