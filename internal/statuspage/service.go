// Package statuspage builds public uptime and incident history reports for
// status pages.
package statuspage

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
	"github.com/bissquit/uptime-garden/internal/history"
	"github.com/bissquit/uptime-garden/internal/pkg/clock"
	"github.com/bissquit/uptime-garden/internal/pkg/ctxlog"
	"github.com/bissquit/uptime-garden/internal/pkg/metrics"
	"github.com/bissquit/uptime-garden/internal/uptime"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Config holds report settings.
type Config struct {
	Location       *time.Location
	AllowedWindows []int
	DefaultWindow  int
	HistoryWindow  int
	CacheTTL       time.Duration
}

// Service builds reports from repository snapshots.
type Service struct {
	repo   Repository
	clock  clock.Clock
	config Config
	cache  *cache.Cache
}

// defaultWindows is used when a Config lists no allowed windows.
var defaultWindows = []int{14, 30, 60, 90}

// NewService creates a new report service. A zero CacheTTL disables caching.
// Empty windows fall back to the largest allowed size for uptime and the
// smallest for history.
func NewService(repo Repository, clk clock.Clock, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.AllowedWindows) == 0 {
		cfg.AllowedWindows = slices.Clone(defaultWindows)
	}
	if cfg.DefaultWindow == 0 {
		cfg.DefaultWindow = slices.Max(cfg.AllowedWindows)
	}
	if cfg.HistoryWindow == 0 {
		cfg.HistoryWindow = slices.Min(cfg.AllowedWindows)
	}

	s := &Service{
		repo:   repo,
		clock:  clk,
		config: cfg,
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// ReportOptions selects the window and viewer zone of a report.
// Zero values fall back to the service defaults.
type ReportOptions struct {
	Days     int
	Location *time.Location
}

// HistoryOptions selects the incident history view.
type HistoryOptions struct {
	Days     int
	Location *time.Location
	// Kind limits the view to incidents or to started maintenances.
	// Empty means both, without maintenances that have not started.
	Kind domain.Kind
}

// DayBar is one day of an uptime bar chart.
type DayBar struct {
	uptime.DayUptime
	Grade uptime.Grade `json:"grade"`
}

// ComponentUptime is the uptime report of one component. Bars are computed for
// every component; DisplayUptime tells the page whether to show them.
type ComponentUptime struct {
	ComponentID   int64                  `json:"component_id"`
	Name          string                 `json:"name"`
	Status        domain.ComponentStatus `json:"status"`
	StatusLabel   string                 `json:"status_label"`
	Order         int                    `json:"order"`
	DisplayUptime bool                   `json:"display_uptime"`
	Days          []DayBar               `json:"days"`
	TotalUptime   float64                `json:"total_uptime"`
}

// PageReport is the uptime report of a page.
type PageReport struct {
	Page        domain.Page `json:"page"`
	Timezone    string      `json:"timezone"`
	WindowDays  int         `json:"window_days"`
	GeneratedAt time.Time   `json:"generated_at"`

	Components []ComponentUptime `json:"components"`

	// Days is the page rollup: each day shows the worst component.
	Days        []DayBar `json:"days"`
	TotalUptime float64  `json:"total_uptime"`

	// AllOperational is derived from the rollup, HasOpenIncidents from the
	// incident log. They can disagree.
	AllOperational   bool `json:"all_operational"`
	HasOpenIncidents bool `json:"has_open_incidents"`
}

// IncidentView is an incident with its derived status.
type IncidentView struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name"`
	Kind         domain.Kind           `json:"kind"`
	Severity     domain.Severity       `json:"severity"`
	Status       *int                  `json:"status"`
	StatusLabel  string                `json:"status_label"`
	Open         bool                  `json:"open"`
	CreatedAt    time.Time             `json:"created_at"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
	ScheduledAt  *time.Time            `json:"scheduled_at"`
	CompleteAt   *time.Time            `json:"complete_at"`
	ComponentIDs []int64               `json:"component_ids"`
	Updates      []domain.StatusUpdate `json:"updates"`
}

// HistoryDay is the list of incidents created on one day.
type HistoryDay struct {
	Day       domain.Date    `json:"day"`
	Incidents []IncidentView `json:"incidents"`
}

// HistoryReport is the incident history of a page, oldest day first.
type HistoryReport struct {
	PageID      int64        `json:"page_id"`
	Timezone    string       `json:"timezone"`
	WindowDays  int          `json:"window_days"`
	GeneratedAt time.Time    `json:"generated_at"`
	Days        []HistoryDay `json:"days"`
}

// snapshot is everything a page report is computed from.
type snapshot struct {
	page       *domain.Page
	components []domain.Component
	incidents  []domain.Incident
}

// PageUptime builds the uptime report of a page.
func (s *Service) PageUptime(ctx context.Context, pageID int64, opts ReportOptions) (*PageReport, error) {
	days, loc, err := s.resolve(opts.Days, opts.Location)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("page:%d:%d:%s", pageID, days, loc)
	if report, ok := s.cached(key, "page"); ok {
		return report.(*PageReport), nil
	}

	start := time.Now()
	now := s.clock.Now()

	snap, err := s.loadSnapshot(ctx, pageID, windowStart(days, now, loc))
	if err != nil {
		return nil, err
	}

	report := &PageReport{
		Page:             *snap.page,
		Timezone:         loc.String(),
		WindowDays:       days,
		GeneratedAt:      now,
		Components:       make([]ComponentUptime, 0, len(snap.components)),
		HasOpenIncidents: history.HasOpenIncidents(snap.incidents),
	}

	var displayed [][]uptime.DayUptime
	for i := range snap.components {
		c := &snap.components[i]
		series := uptime.Series(c.StatusHistory, days, now, loc)
		if c.DisplayUptime {
			displayed = append(displayed, series)
		}
		report.Components = append(report.Components, componentReport(c, series))
	}

	rollup, err := uptime.PageDaySeries(displayed)
	if err != nil {
		return nil, fmt.Errorf("roll up page %d: %w", pageID, err)
	}
	if rollup == nil {
		rollup = uptime.Series(nil, days, now, loc)
	}
	report.Days = bars(rollup)
	report.TotalUptime = uptime.TotalUptime(rollup)
	report.AllOperational = uptime.AllOperational(rollup)

	metrics.ReportBuildDuration.WithLabelValues("page").Observe(time.Since(start).Seconds())
	ctxlog.FromContext(ctx).Debug("page uptime report built",
		"page_id", pageID,
		"components", len(report.Components),
		"window_days", days,
		"timezone", loc.String(),
	)

	s.store(key, report)
	return report, nil
}

// ComponentUptime builds the uptime report of one component of a page.
func (s *Service) ComponentUptime(ctx context.Context, pageID, componentID int64, opts ReportOptions) (*ComponentUptime, error) {
	days, loc, err := s.resolve(opts.Days, opts.Location)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	now := s.clock.Now()

	if _, err := s.repo.GetPage(ctx, pageID); err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	components, err := s.repo.ListComponents(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	idx := slices.IndexFunc(components, func(c domain.Component) bool { return c.ID == componentID })
	if idx < 0 {
		return nil, ErrComponentNotFound
	}
	c := components[idx]

	intervals, err := s.repo.ListStatusIntervals(ctx, []int64{componentID}, windowStart(days, now, loc))
	if err != nil {
		return nil, fmt.Errorf("list status intervals: %w", err)
	}
	if err := validateIntervals(intervals[componentID]); err != nil {
		return nil, fmt.Errorf("component %d: %w", componentID, err)
	}
	c.StatusHistory = intervals[componentID]

	report := componentReport(&c, uptime.Series(c.StatusHistory, days, now, loc))
	metrics.ReportBuildDuration.WithLabelValues("component").Observe(time.Since(start).Seconds())
	return &report, nil
}

// History builds the incident history of a page.
func (s *Service) History(ctx context.Context, pageID int64, opts HistoryOptions) (*HistoryReport, error) {
	days := opts.Days
	if days == 0 {
		days = s.config.HistoryWindow
	}
	if days < 0 || days > slices.Max(s.config.AllowedWindows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, days)
	}
	loc := opts.Location
	if loc == nil {
		loc = s.config.Location
	}

	start := time.Now()
	now := s.clock.Now()

	if _, err := s.repo.GetPage(ctx, pageID); err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	incidents, err := s.repo.ListIncidents(ctx, pageID, windowStart(days, now, loc))
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	buckets := history.BucketByDay(incidents, days, now, loc)
	switch opts.Kind {
	case domain.KindIncident:
		buckets = buckets.Filter(history.OnlyIncidents)
	case domain.KindMaintenance:
		buckets = buckets.Filter(history.VisibleMaintenances)
	default:
		buckets = buckets.Filter(func(inc *domain.Incident) bool {
			return !history.IsUpcoming(inc)
		})
	}

	report := &HistoryReport{
		PageID:      pageID,
		Timezone:    loc.String(),
		WindowDays:  days,
		GeneratedAt: now,
		Days:        make([]HistoryDay, len(buckets)),
	}
	for i, b := range buckets {
		views := make([]IncidentView, len(b.Incidents))
		for j := range b.Incidents {
			views[j] = incidentView(&b.Incidents[j])
		}
		report.Days[i] = HistoryDay{Day: b.Day, Incidents: views}
	}

	metrics.ReportBuildDuration.WithLabelValues("history").Observe(time.Since(start).Seconds())
	return report, nil
}

// resolve applies defaults and checks the window against the allowed sizes.
func (s *Service) resolve(days int, loc *time.Location) (int, *time.Location, error) {
	if days == 0 {
		days = s.config.DefaultWindow
	}
	if !slices.Contains(s.config.AllowedWindows, days) {
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidWindow, days)
	}
	if loc == nil {
		loc = s.config.Location
	}
	return days, loc, nil
}

func (s *Service) loadSnapshot(ctx context.Context, pageID int64, since time.Time) (*snapshot, error) {
	page, err := s.repo.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	snap := &snapshot{page: page}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		components, err := s.repo.ListComponents(gctx, pageID)
		if err != nil {
			return fmt.Errorf("list components: %w", err)
		}

		ids := make([]int64, len(components))
		for i, c := range components {
			ids[i] = c.ID
		}
		intervals, err := s.repo.ListStatusIntervals(gctx, ids, since)
		if err != nil {
			return fmt.Errorf("list status intervals: %w", err)
		}

		for i := range components {
			list := intervals[components[i].ID]
			if err := validateIntervals(list); err != nil {
				return fmt.Errorf("component %d: %w", components[i].ID, err)
			}
			components[i].StatusHistory = list
		}
		snap.components = components
		return nil
	})

	g.Go(func() error {
		incidents, err := s.repo.ListIncidents(gctx, pageID, since)
		if err != nil {
			return fmt.Errorf("list incidents: %w", err)
		}
		snap.incidents = incidents
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) cached(key, report string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(key)
	if ok {
		metrics.ReportCacheRequests.WithLabelValues(report, "hit").Inc()
	} else {
		metrics.ReportCacheRequests.WithLabelValues(report, "miss").Inc()
	}
	return v, ok
}

func (s *Service) store(key string, v any) {
	if s.cache != nil {
		s.cache.Set(key, v, cache.DefaultExpiration)
	}
}

// validateIntervals rejects the whole component when any interval is malformed.
func validateIntervals(intervals []domain.StatusInterval) error {
	for _, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("interval %d: %w", iv.ID, err)
		}
	}
	return nil
}

// windowStart is the first instant of a trailing window.
func windowStart(days int, now time.Time, loc *time.Location) time.Time {
	return domain.DateOf(now, loc).AddDays(1 - days).Start(loc)
}

func componentReport(c *domain.Component, series []uptime.DayUptime) ComponentUptime {
	return ComponentUptime{
		ComponentID:   c.ID,
		Name:          c.Name,
		Status:        c.Status,
		StatusLabel:   c.Status.Label(),
		Order:         c.Order,
		DisplayUptime: c.DisplayUptime,
		Days:          bars(series),
		TotalUptime:   uptime.TotalUptime(series),
	}
}

func bars(series []uptime.DayUptime) []DayBar {
	out := make([]DayBar, len(series))
	for i, d := range series {
		out[i] = DayBar{DayUptime: d, Grade: uptime.GradeOf(d.UptimePct)}
	}
	return out
}

func incidentView(inc *domain.Incident) IncidentView {
	v := IncidentView{
		ID:           inc.ID,
		Name:         inc.Name,
		Kind:         inc.Kind(),
		Severity:     inc.Severity,
		StatusLabel:  history.Label(inc),
		Open:         history.IsOpen(inc),
		CreatedAt:    inc.CreatedAt,
		ResolvedAt:   inc.ResolvedAt,
		ScheduledAt:  inc.ScheduledAt,
		CompleteAt:   inc.CompleteAt,
		ComponentIDs: inc.ComponentIDs,
		Updates:      history.Sorted(inc.History),
	}
	if v.ComponentIDs == nil {
		v.ComponentIDs = []int64{}
	}
	if status, ok := history.LatestStatus(inc.History); ok {
		v.Status = &status
	}
	return v
}
