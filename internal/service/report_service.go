package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fleet-reporting-service/internal/aggregate"
	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/query"
)

// Report is the outcome of a report request. Insufficient marks a request
// that carried no usable criteria; storage was never queried and Data holds
// the empty value of T.
type Report[T any] struct {
	Data         T      `json:"data"`
	Insufficient bool   `json:"insufficient,omitempty"`
	Message      string `json:"message,omitempty"`
}

func insufficient[T any](empty T) Report[T] {
	return Report[T]{Data: empty, Insufficient: true, Message: query.InsufficientCriteriaMessage}
}

// ReportStore reads report records for a built filter. It is satisfied by
// *repository.ReportRepository.
type ReportStore interface {
	EngineUsage(ctx context.Context, f query.Filter) ([]model.TelemetryRecord, error)
	EngineUsagePage(ctx context.Context, f query.Filter, page model.PageRequest) (model.Page[model.TelemetryRecord], error)
	Exceptions(ctx context.Context, f query.Filter) ([]model.ExceptionRecord, error)
	ExceptionsPage(ctx context.Context, f query.Filter, page model.PageRequest) (model.Page[model.ExceptionRecord], error)
	TransitLegs(ctx context.Context, f query.Filter) ([]model.TransitLegRecord, error)
	TransitPage(ctx context.Context, f query.Filter, page model.PageRequest) (model.Page[model.TransitLegRecord], error)
	TransitBaseDurations(ctx context.Context, f query.Filter) ([]model.BaseDayTotal, error)
	TransitTourCounts(ctx context.Context, f query.Filter) ([]model.BaseDayTotal, error)
	TransitMaxDurations(ctx context.Context, f query.Filter) ([]model.BaseDayTotal, error)
}

// Catalog serves the vehicle and group listings.
type Catalog interface {
	Vehicles(ctx context.Context, groupID *int64, page model.PageRequest) (model.Page[model.Vehicle], error)
	ActiveGroups(ctx context.Context) ([]model.VehicleGroup, error)
	Ready(ctx context.Context) bool
}

type ReportService struct {
	reports      ReportStore
	catalog      Catalog
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

func NewReportService(reports ReportStore, catalog Catalog, defaultLimit, maxLimit int) *ReportService {
	return &ReportService{
		reports:      reports,
		catalog:      catalog,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
	}
}

// WithClock replaces the clock used to resolve the current week.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) filter(kind query.RecordKind, criteria model.FilterCriteria) (query.Filter, error) {
	return query.Build(kind, criteria, s.now())
}

// EngineDashboard buckets engine usage by groupBy, or by plain calendar day
// when groupBy is unset, and returns the series oldest first.
func (s *ReportService) EngineDashboard(ctx context.Context, criteria model.FilterCriteria, groupBy model.GroupBy) (Report[model.EngineDashboard], error) {
	if !groupBy.Valid() {
		return Report[model.EngineDashboard]{}, query.Invalid("groupBy must be one of day, week, month")
	}

	f, err := s.filter(query.EngineUsage, criteria)
	if err != nil {
		return Report[model.EngineDashboard]{}, err
	}
	if !f.Sufficient() {
		if groupBy == model.GroupByNone {
			return insufficient(aggregate.DailyEngineUsage(nil)), nil
		}
		return insufficient(aggregate.EngineUsage(nil, groupBy)), nil
	}

	rows, err := s.reports.EngineUsage(ctx, f)
	if err != nil {
		return Report[model.EngineDashboard]{}, fmt.Errorf("load engine usage: %w", err)
	}

	var dashboard model.EngineDashboard
	if groupBy == model.GroupByNone {
		dashboard = aggregate.DailyEngineUsage(rows)
	} else {
		dashboard = aggregate.EngineUsage(rows, groupBy)
	}
	return Report[model.EngineDashboard]{Data: aggregate.ReverseEngineSeries(dashboard)}, nil
}

func (s *ReportService) ExceptionDashboard(ctx context.Context, criteria model.FilterCriteria, groupBy model.GroupBy) (Report[model.ExceptionDashboard], error) {
	if !groupBy.Valid() {
		return Report[model.ExceptionDashboard]{}, query.Invalid("groupBy must be one of day, week, month")
	}

	f, err := s.filter(query.Exceptions, criteria)
	if err != nil {
		return Report[model.ExceptionDashboard]{}, err
	}
	if !f.Sufficient() {
		return insufficient(aggregate.Exceptions(nil, groupBy)), nil
	}

	rows, err := s.reports.Exceptions(ctx, f)
	if err != nil {
		return Report[model.ExceptionDashboard]{}, fmt.Errorf("load exceptions: %w", err)
	}
	return Report[model.ExceptionDashboard]{Data: aggregate.ReverseExceptionSeries(aggregate.Exceptions(rows, groupBy))}, nil
}

// TransitReport runs the four transit sub-reports concurrently. The first
// failure cancels the others and fails the whole report.
func (s *ReportService) TransitReport(ctx context.Context, criteria model.FilterCriteria) (Report[model.TransitReport], error) {
	f, err := s.filter(query.Transits, criteria)
	if err != nil {
		return Report[model.TransitReport]{}, err
	}
	if !f.Sufficient() {
		return insufficient(emptyTransitReport()), nil
	}

	var (
		durations, tours, longest []model.BaseDayTotal
		legs                      []model.TransitLegRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		durations, err = s.reports.TransitBaseDurations(gctx, f)
		return wrap("load base durations", err)
	})
	g.Go(func() error {
		var err error
		tours, err = s.reports.TransitTourCounts(gctx, f)
		return wrap("load tour counts", err)
	})
	g.Go(func() error {
		var err error
		legs, err = s.reports.TransitLegs(gctx, f)
		return wrap("load transit history", err)
	})
	g.Go(func() error {
		var err error
		longest, err = s.reports.TransitMaxDurations(gctx, f)
		return wrap("load max transit durations", err)
	})
	if err := g.Wait(); err != nil {
		return Report[model.TransitReport]{}, err
	}

	return Report[model.TransitReport]{Data: model.TransitReport{
		DurationPerBase:    aggregate.TransitDurations(durations),
		ToursPerBase:       aggregate.TransitTours(tours),
		TransitHistory:     aggregate.TransitHistory(legs),
		MaxTransitDuration: aggregate.TransitMaxDurations(longest),
	}}, nil
}

func emptyTransitReport() model.TransitReport {
	return model.TransitReport{
		DurationPerBase:    []model.TransitBasePoint{},
		ToursPerBase:       []model.TransitBasePoint{},
		TransitHistory:     []model.TransitHistoryPoint{},
		MaxTransitDuration: []model.TransitBasePoint{},
	}
}

// The paginated listings are bounded by the page size, so they run without
// the criteria requirement the dashboards enforce.

func (s *ReportService) EngineUsagePage(ctx context.Context, criteria model.FilterCriteria, page model.PageRequest) (model.Page[model.TelemetryRecord], error) {
	f, err := s.filter(query.EngineUsage, criteria)
	if err != nil {
		return model.Page[model.TelemetryRecord]{}, err
	}
	result, err := s.reports.EngineUsagePage(ctx, f, page.Clamp(s.defaultLimit, s.maxLimit))
	if err != nil {
		return model.Page[model.TelemetryRecord]{}, fmt.Errorf("list engine usage: %w", err)
	}
	return result, nil
}

func (s *ReportService) ExceptionsPage(ctx context.Context, criteria model.FilterCriteria, page model.PageRequest) (model.Page[model.ExceptionRecord], error) {
	f, err := s.filter(query.Exceptions, criteria)
	if err != nil {
		return model.Page[model.ExceptionRecord]{}, err
	}
	result, err := s.reports.ExceptionsPage(ctx, f, page.Clamp(s.defaultLimit, s.maxLimit))
	if err != nil {
		return model.Page[model.ExceptionRecord]{}, fmt.Errorf("list exceptions: %w", err)
	}
	return result, nil
}

func (s *ReportService) TransitPage(ctx context.Context, criteria model.FilterCriteria, page model.PageRequest) (model.Page[model.TransitLegRecord], error) {
	f, err := s.filter(query.Transits, criteria)
	if err != nil {
		return model.Page[model.TransitLegRecord]{}, err
	}
	result, err := s.reports.TransitPage(ctx, f, page.Clamp(s.defaultLimit, s.maxLimit))
	if err != nil {
		return model.Page[model.TransitLegRecord]{}, fmt.Errorf("list transits: %w", err)
	}
	return result, nil
}

func (s *ReportService) Vehicles(ctx context.Context, groupID *int64, page model.PageRequest) (model.Page[model.Vehicle], error) {
	result, err := s.catalog.Vehicles(ctx, groupID, page.Clamp(s.defaultLimit, s.maxLimit))
	if err != nil {
		return model.Page[model.Vehicle]{}, fmt.Errorf("list vehicles: %w", err)
	}
	return result, nil
}

func (s *ReportService) Groups(ctx context.Context) ([]model.VehicleGroup, error) {
	groups, err := s.catalog.ActiveGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if groups == nil {
		groups = []model.VehicleGroup{}
	}
	return groups, nil
}

func (s *ReportService) Ready(ctx context.Context) bool {
	return s.catalog.Ready(ctx)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
