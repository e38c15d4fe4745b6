//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
	"github.com/stretchr/testify/require"
)

// createTestPage inserts a page and removes it, with everything on it, when
// the test ends.
func createTestPage(t *testing.T, name string) int64 {
	t.Helper()

	var id int64
	err := testDB.QueryRow(context.Background(), `
		INSERT INTO pages (name, company_website) VALUES ($1, $2) RETURNING id
	`, name, "https://example.com").Scan(&id)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testDB.Exec(context.Background(), `DELETE FROM pages WHERE id = $1`, id)
	})
	return id
}

func createTestComponent(t *testing.T, pageID int64, name string, order int, displayUptime bool) int64 {
	t.Helper()

	var id int64
	err := testDB.QueryRow(context.Background(), `
		INSERT INTO components (page_id, name, status, display_uptime, "order")
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, pageID, name, domain.ComponentStatusOperational, displayUptime, order).Scan(&id)
	require.NoError(t, err)
	return id
}

// addStatusInterval records a status span. A nil removedAt leaves it open.
func addStatusInterval(t *testing.T, componentID int64, status domain.ComponentStatus, assignedAt time.Time, removedAt *time.Time) {
	t.Helper()

	_, err := testDB.Exec(context.Background(), `
		INSERT INTO component_statuses (component_id, status, assigned_at, removed_at)
		VALUES ($1, $2, $3, $4)
	`, componentID, status, assignedAt, removedAt)
	require.NoError(t, err)
}

type incidentFixture struct {
	name        string
	severity    domain.Severity
	createdAt   time.Time
	resolvedAt  *time.Time
	scheduledAt *time.Time
	components  []int64
	updates     []int // status codes, one minute apart from createdAt
}

func createTestIncident(t *testing.T, pageID int64, f incidentFixture) int64 {
	t.Helper()
	ctx := context.Background()

	severity := f.severity
	if severity == "" {
		severity = domain.SeverityNone
	}

	var id int64
	err := testDB.QueryRow(ctx, `
		INSERT INTO incidents (page_id, name, severity, created_at, resolved_at, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, pageID, f.name, severity, f.createdAt, f.resolvedAt, f.scheduledAt).Scan(&id)
	require.NoError(t, err)

	for _, componentID := range f.components {
		_, err := testDB.Exec(ctx, `
			INSERT INTO incident_components (incident_id, component_id) VALUES ($1, $2)
		`, id, componentID)
		require.NoError(t, err)
	}

	for i, status := range f.updates {
		_, err := testDB.Exec(ctx, `
			INSERT INTO incident_statuses (incident_id, seq, status, message, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, id, i+1, status, "update", f.createdAt.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
	return id
}

// today is the start of the current UTC day.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func ptr[T any](v T) *T {
	return &v
}
