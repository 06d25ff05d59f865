package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/query"
)

var july9 = time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu      sync.Mutex
	calls   []string
	filters []query.Filter

	usage      []model.TelemetryRecord
	exceptions []model.ExceptionRecord
	legs       []model.TransitLegRecord
	totals     []model.BaseDayTotal
	pages      []model.PageRequest
	err        error
	failOn     string
}

func (f *fakeStore) record(name string, filter query.Filter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.filters = append(f.filters, filter)
	if f.failOn == "" || f.failOn == name {
		return f.err
	}
	return nil
}

func (f *fakeStore) EngineUsage(_ context.Context, filter query.Filter) ([]model.TelemetryRecord, error) {
	return f.usage, f.record("EngineUsage", filter)
}

func (f *fakeStore) EngineUsagePage(_ context.Context, filter query.Filter, page model.PageRequest) (model.Page[model.TelemetryRecord], error) {
	f.pages = append(f.pages, page)
	return model.Page[model.TelemetryRecord]{Data: f.usage, Pagination: model.NewPagination(page, int64(len(f.usage)))}, f.record("EngineUsagePage", filter)
}

func (f *fakeStore) Exceptions(_ context.Context, filter query.Filter) ([]model.ExceptionRecord, error) {
	return f.exceptions, f.record("Exceptions", filter)
}

func (f *fakeStore) ExceptionsPage(_ context.Context, filter query.Filter, page model.PageRequest) (model.Page[model.ExceptionRecord], error) {
	f.pages = append(f.pages, page)
	return model.Page[model.ExceptionRecord]{Data: f.exceptions}, f.record("ExceptionsPage", filter)
}

func (f *fakeStore) TransitLegs(_ context.Context, filter query.Filter) ([]model.TransitLegRecord, error) {
	return f.legs, f.record("TransitLegs", filter)
}

func (f *fakeStore) TransitPage(_ context.Context, filter query.Filter, page model.PageRequest) (model.Page[model.TransitLegRecord], error) {
	f.pages = append(f.pages, page)
	return model.Page[model.TransitLegRecord]{Data: f.legs}, f.record("TransitPage", filter)
}

func (f *fakeStore) TransitBaseDurations(_ context.Context, filter query.Filter) ([]model.BaseDayTotal, error) {
	return f.totals, f.record("TransitBaseDurations", filter)
}

func (f *fakeStore) TransitTourCounts(_ context.Context, filter query.Filter) ([]model.BaseDayTotal, error) {
	return f.totals, f.record("TransitTourCounts", filter)
}

func (f *fakeStore) TransitMaxDurations(_ context.Context, filter query.Filter) ([]model.BaseDayTotal, error) {
	return f.totals, f.record("TransitMaxDurations", filter)
}

type fakeCatalog struct {
	groups []model.VehicleGroup
	page   model.PageRequest
	ready  bool
}

func (c *fakeCatalog) Vehicles(_ context.Context, _ *int64, page model.PageRequest) (model.Page[model.Vehicle], error) {
	c.page = page
	return model.Page[model.Vehicle]{Data: []model.Vehicle{}, Pagination: model.NewPagination(page, 0)}, nil
}

func (c *fakeCatalog) ActiveGroups(context.Context) ([]model.VehicleGroup, error) {
	return c.groups, nil
}

func (c *fakeCatalog) Ready(context.Context) bool { return c.ready }

func newService(store *fakeStore) *ReportService {
	return NewReportService(store, &fakeCatalog{ready: true}, 20, 100).WithClock(func() time.Time { return july9 })
}

func julyFor(vehicle int64) model.FilterCriteria {
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	return model.FilterCriteria{DateFrom: &from, DateTo: &to, Vehicle: model.SingleVehicle(vehicle)}
}

func TestInsufficientCriteriaNeverQueriesStorage(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)
	ctx := context.Background()
	vehicleOnly := model.FilterCriteria{Vehicle: model.SingleVehicle(68)}

	engine, err := svc.EngineDashboard(ctx, vehicleOnly, model.GroupByWeek)
	require.NoError(t, err)
	assert.True(t, engine.Insufficient)
	assert.Equal(t, query.InsufficientCriteriaMessage, engine.Message)
	assert.NotNil(t, engine.Data.Durations)
	assert.Empty(t, engine.Data.Durations)
	assert.Equal(t, model.GroupByWeek, engine.Data.GroupBy)

	daily, err := svc.EngineDashboard(ctx, vehicleOnly, model.GroupByNone)
	require.NoError(t, err)
	assert.True(t, daily.Insufficient)
	assert.Equal(t, model.GroupByNone, daily.Data.GroupBy)

	exceptions, err := svc.ExceptionDashboard(ctx, model.FilterCriteria{}, model.GroupByNone)
	require.NoError(t, err)
	assert.True(t, exceptions.Insufficient)

	transits, err := svc.TransitReport(ctx, model.FilterCriteria{})
	require.NoError(t, err)
	assert.True(t, transits.Insufficient)
	assert.NotNil(t, transits.Data.TransitHistory)

	assert.Empty(t, store.calls)
}

func TestValidationErrorNeverQueriesStorage(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	criteria := julyFor(68)
	criteria.Vehicle = model.VehicleList()
	_, err := svc.EngineDashboard(context.Background(), criteria, model.GroupByDay)
	require.Error(t, err)
	assert.True(t, query.IsValidation(err))

	_, err = svc.ExceptionDashboard(context.Background(), julyFor(68), model.GroupBy("year"))
	assert.True(t, query.IsValidation(err))

	assert.Empty(t, store.calls)
}

// julyUsage returns one row per day of July 2025 for the vehicle, newest
// first, with one hour moving and half an hour idle each day.
func julyUsage(vehicle int64) []model.TelemetryRecord {
	var rows []model.TelemetryRecord
	for d := 31; d >= 1; d-- {
		rows = append(rows, model.TelemetryRecord{
			Date:                   time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC),
			VehicleID:              vehicle,
			VehicleName:            "Camion 68",
			MovingSeconds:          3600,
			IdleSeconds:            1800,
			DistanceKm:             10,
			TotalConsumptionLiters: 2,
			MaxSpeedKmh:            70,
		})
	}
	return rows
}

func TestEngineDashboardWeeklyIsChronological(t *testing.T) {
	store := &fakeStore{usage: julyUsage(68)}
	svc := newService(store)

	report, err := svc.EngineDashboard(context.Background(), julyFor(68), model.GroupByWeek)
	require.NoError(t, err)
	require.False(t, report.Insufficient)

	d := report.Data
	assert.Equal(t, model.GroupByWeek, d.GroupBy)
	require.Len(t, d.Durations, 5)

	periods := make([]string, 0, len(d.Durations))
	for _, p := range d.Durations {
		periods = append(periods, p.Period)
	}
	assert.Equal(t, []string{"2025-W27", "2025-W28", "2025-W29", "2025-W30", "2025-W31"}, periods)

	// W27 holds Jul 1..6, W31 holds Jul 28..31.
	assert.Equal(t, int64(6*3600), d.Durations[0].MovingSeconds)
	assert.Equal(t, "Semaine 27", d.Durations[0].Name)
	assert.Equal(t, int64(4*3600), d.Durations[4].MovingSeconds)
	assert.Equal(t, int64(7*3600), d.Durations[1].MovingSeconds)
	assert.Equal(t, "07:00:00", d.Durations[1].MovingDuration)
	for _, p := range d.UsagePercentages {
		assert.Equal(t, 67, p.UsagePercentage)
		assert.Equal(t, 33, p.IdlePercentage)
	}
	assert.Equal(t, 60.0, d.DistanceConsumption[0].TotalDistance)
	assert.Equal(t, 20.0, d.ConsumptionPer100Km[0].Value)
	assert.Equal(t, 2.0, d.ConsumptionPerHour[0].Value)

	require.Len(t, store.filters, 1)
	assert.Equal(t, []any{"2025-07-01", "2025-07-31", int64(68)}, store.filters[0].Args())
}

func TestEngineDashboardWithoutGroupByIsDaily(t *testing.T) {
	store := &fakeStore{usage: julyUsage(68)[:3]}
	report, err := newService(store).EngineDashboard(context.Background(), julyFor(68), model.GroupByNone)
	require.NoError(t, err)

	d := report.Data
	assert.Equal(t, model.GroupByNone, d.GroupBy)
	require.Len(t, d.Speeding, 3)
	assert.Equal(t, "2025-07-29", d.Speeding[0].Period)
	require.NotNil(t, d.Speeding[0].IsSpeeding)
	assert.False(t, *d.Speeding[0].IsSpeeding)
}

func TestWeekDaysWithoutRangeUseInjectedClock(t *testing.T) {
	store := &fakeStore{}
	_, err := newService(store).ExceptionDashboard(context.Background(), model.FilterCriteria{WeekDays: []int{1}}, model.GroupByDay)
	require.NoError(t, err)

	require.Len(t, store.filters, 1)
	assert.Equal(t, []any{1, "2025-07-07", "2025-07-13"}, store.filters[0].Args())
}

func TestStorageErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	store := &fakeStore{err: boom}

	_, err := newService(store).EngineDashboard(context.Background(), julyFor(68), model.GroupByDay)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, query.IsValidation(err))
}

func TestTransitReportRunsFourSubReports(t *testing.T) {
	arrival := "Paris"
	store := &fakeStore{
		totals: []model.BaseDayTotal{{Date: time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC), VehicleID: 68, VehicleName: "Camion 68", BaseName: "Lyon", Seconds: 600, Count: 2}},
		legs:   []model.TransitLegRecord{{Date: time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC), VehicleID: 68, VehicleName: "Camion 68", DepartureBaseName: "Lyon", ArrivalBaseName: &arrival}},
	}

	report, err := newService(store).TransitReport(context.Background(), julyFor(68))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"TransitBaseDurations", "TransitTourCounts", "TransitLegs", "TransitMaxDurations"}, store.calls)
	require.Len(t, report.Data.DurationPerBase, 1)
	assert.Equal(t, "00:10:00", report.Data.DurationPerBase[0].Duration)
	assert.Equal(t, int64(2), report.Data.ToursPerBase[0].TourCount)
	assert.Equal(t, "Dimanche - Camion 68 - Lyon → Paris", report.Data.TransitHistory[0].Name)
	assert.Len(t, report.Data.MaxTransitDuration, 1)
}

func TestTransitReportFailsWhenAnySubReportFails(t *testing.T) {
	boom := errors.New("timeout")
	store := &fakeStore{err: boom, failOn: "TransitTourCounts"}

	_, err := newService(store).TransitReport(context.Background(), julyFor(68))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load tour counts")
}

func TestPagesAreClampedAndNeedNoCriteria(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.EngineUsagePage(ctx, model.FilterCriteria{}, model.PageRequest{Page: 0, Limit: 1000})
	require.NoError(t, err)
	_, err = svc.ExceptionsPage(ctx, model.FilterCriteria{}, model.PageRequest{Page: 2})
	require.NoError(t, err)
	_, err = svc.TransitPage(ctx, model.FilterCriteria{}, model.PageRequest{Page: 1, Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, []model.PageRequest{
		{Page: 1, Limit: 100},
		{Page: 2, Limit: 20},
		{Page: 1, Limit: 5},
	}, store.pages)
	assert.Empty(t, store.filters[0].Where())
}

func TestCatalogPassThrough(t *testing.T) {
	catalog := &fakeCatalog{ready: true}
	svc := NewReportService(&fakeStore{}, catalog, 20, 100)
	ctx := context.Background()

	_, err := svc.Vehicles(ctx, nil, model.PageRequest{Page: 1, Limit: 250})
	require.NoError(t, err)
	assert.Equal(t, 100, catalog.page.Limit)

	groups, err := svc.Groups(ctx)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.True(t, svc.Ready(ctx))
}
