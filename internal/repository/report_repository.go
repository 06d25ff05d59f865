package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/query"
	"fleet-reporting-service/internal/timeutil"
)

const (
	engineUsageFrom = `FROM engine_usage eu
		LEFT JOIN vehicles v ON v.id = eu.vehicle_id
		LEFT JOIN vehicle_groups g ON g.id = eu.group_id`

	exceptionsFrom = `FROM vehicle_exceptions ve
		LEFT JOIN vehicles v ON v.id = ve.vehicle_id
		LEFT JOIN vehicle_groups g ON g.id = v.group_id`

	transitsFrom = `FROM base_transits bt
		LEFT JOIN vehicles v ON v.id = bt.vehicle_id
		LEFT JOIN bases dep ON dep.id = bt.departure_base_id
		LEFT JOIN bases arr ON arr.id = bt.arrival_base_id`

	intervalSeconds = "EXTRACT(EPOCH FROM CAST(NULLIF(%s, '') AS INTERVAL))"
)

type ReportRepository struct {
	exec Executor
}

func NewReportRepository(exec Executor) *ReportRepository {
	return &ReportRepository{exec: exec}
}

type engineUsageRow struct {
	Date                   time.Time `gorm:"column:date"`
	VehicleID              int64     `gorm:"column:vehicle_id"`
	VehicleName            string    `gorm:"column:vehicle_name"`
	GroupID                *int64    `gorm:"column:group_id"`
	GroupName              *string   `gorm:"column:group_name"`
	TotalDuration          *string   `gorm:"column:total_duration"`
	MovingDuration         *string   `gorm:"column:moving_duration"`
	EngineIdleDuration     *string   `gorm:"column:engine_idle_duration"`
	DistanceKm             float64   `gorm:"column:distance_km"`
	MaxSpeedKmh            float64   `gorm:"column:max_speed_kmh"`
	UsagePercent           float64   `gorm:"column:usage_percent"`
	TotalConsumptionLiters float64   `gorm:"column:total_consumption_liters"`
	ConsumptionPer100Km    float64   `gorm:"column:consumption_per_100km"`
	ConsumptionPerHour     float64   `gorm:"column:consumption_per_hour"`
}

const engineUsageSelect = `SELECT eu.usage_date AS date,
		eu.vehicle_id,
		COALESCE(v.name, '') AS vehicle_name,
		eu.group_id,
		g.name AS group_name,
		eu.total_duration,
		eu.moving_duration,
		eu.engine_idle_duration,
		COALESCE(eu.distance_km, 0) AS distance_km,
		COALESCE(eu.max_speed_kmh, 0) AS max_speed_kmh,
		COALESCE(eu.usage_percent, 0) AS usage_percent,
		COALESCE(eu.total_consumption_liters, 0) AS total_consumption_liters,
		COALESCE(eu.consumption_per_100km, 0) AS consumption_per_100km,
		COALESCE(eu.consumption_per_hour, 0) AS consumption_per_hour`

// EngineUsage returns every engine-usage row matching f, newest first.
func (r *ReportRepository) EngineUsage(ctx context.Context, f query.Filter) ([]model.TelemetryRecord, error) {
	var rows []engineUsageRow
	sql := fmt.Sprintf("%s %s %s ORDER BY eu.usage_date DESC, eu.vehicle_id", engineUsageSelect, engineUsageFrom, f.Where())
	if err := r.exec.Select(ctx, &rows, sql, f.Args()...); err != nil {
		return nil, err
	}
	return convertEngineUsage(rows)
}

func (r *ReportRepository) EngineUsagePage(ctx context.Context, f query.Filter, page model.PageRequest) (model.Page[model.TelemetryRecord], error) {
	var rows []engineUsageRow
	sql := fmt.Sprintf("%s %s %s ORDER BY eu.usage_date DESC, eu.vehicle_id LIMIT ? OFFSET ?", engineUsageSelect, engineUsageFrom, f.Where())

	total, err := r.paged(ctx, f, engineUsageFrom, page, func(ctx context.Context) error {
		return r.exec.Select(ctx, &rows, sql, append(f.Args(), page.Limit, page.Offset())...)
	})
	if err != nil {
		return model.Page[model.TelemetryRecord]{}, err
	}

	records, err := convertEngineUsage(rows)
	if err != nil {
		return model.Page[model.TelemetryRecord]{}, err
	}
	return model.Page[model.TelemetryRecord]{Data: records, Pagination: model.NewPagination(page, total)}, nil
}

type exceptionRow struct {
	Date                   time.Time `gorm:"column:date"`
	VehicleID              int64     `gorm:"column:vehicle_id"`
	VehicleName            string    `gorm:"column:vehicle_name"`
	GroupID                *int64    `gorm:"column:group_id"`
	GroupName              *string   `gorm:"column:group_name"`
	SpeedingCount          int64     `gorm:"column:speeding_count"`
	HarshBrakingCount      int64     `gorm:"column:harsh_braking_count"`
	HarshAccelerationCount int64     `gorm:"column:harsh_acceleration_count"`
}

const exceptionsSelect = `SELECT ve.exception_date AS date,
		ve.vehicle_id,
		COALESCE(v.name, '') AS vehicle_name,
		v.group_id,
		g.name AS group_name,
		COALESCE(ve.speeding_count, 0) AS speeding_count,
		COALESCE(ve.harsh_braking_count, 0) AS harsh_braking_count,
		COALESCE(ve.harsh_acceleration_count, 0) AS harsh_acceleration_count`

func (r *ReportRepository) Exceptions(ctx context.Context, f query.Filter) ([]model.ExceptionRecord, error) {
	var rows []exceptionRow
	sql := fmt.Sprintf("%s %s %s ORDER BY ve.exception_date DESC, ve.vehicle_id", exceptionsSelect, exceptionsFrom, f.Where())
	if err := r.exec.Select(ctx, &rows, sql, f.Args()...); err != nil {
		return nil, err
	}
	return convertExceptions(rows), nil
}

func (r *ReportRepository) ExceptionsPage(ctx context.Context, f query.Filter, page model.PageRequest) (model.Page[model.ExceptionRecord], error) {
	var rows []exceptionRow
	sql := fmt.Sprintf("%s %s %s ORDER BY ve.exception_date DESC, ve.vehicle_id LIMIT ? OFFSET ?", exceptionsSelect, exceptionsFrom, f.Where())

	total, err := r.paged(ctx, f, exceptionsFrom, page, func(ctx context.Context) error {
		return r.exec.Select(ctx, &rows, sql, append(f.Args(), page.Limit, page.Offset())...)
	})
	if err != nil {
		return model.Page[model.ExceptionRecord]{}, err
	}
	return model.Page[model.ExceptionRecord]{Data: convertExceptions(rows), Pagination: model.NewPagination(page, total)}, nil
}

type transitLegRow struct {
	ID                int64      `gorm:"column:id"`
	Date              time.Time  `gorm:"column:date"`
	VehicleID         int64      `gorm:"column:vehicle_id"`
	VehicleName       string     `gorm:"column:vehicle_name"`
	DepartureBaseID   int64      `gorm:"column:departure_base_id"`
	DepartureBaseName string     `gorm:"column:departure_base_name"`
	ArrivalBaseID     *int64     `gorm:"column:arrival_base_id"`
	ArrivalBaseName   *string    `gorm:"column:arrival_base_name"`
	DepartureAt       *time.Time `gorm:"column:departure_at"`
	ArrivalAt         *time.Time `gorm:"column:arrival_at"`
	BaseDuration      *string    `gorm:"column:base_duration"`
	TransitDuration   *string    `gorm:"column:transit_duration"`
}

const transitsSelect = `SELECT bt.id,
		bt.transit_date AS date,
		bt.vehicle_id,
		COALESCE(v.name, '') AS vehicle_name,
		bt.departure_base_id,
		COALESCE(dep.name, '') AS departure_base_name,
		bt.arrival_base_id,
		arr.name AS arrival_base_name,
		bt.departure_at,
		bt.arrival_at,
		bt.base_duration,
		bt.transit_duration`

// TransitLegs returns individual legs, most recent departure first.
func (r *ReportRepository) TransitLegs(ctx context.Context, f query.Filter) ([]model.TransitLegRecord, error) {
	var rows []transitLegRow
	sql := fmt.Sprintf("%s %s %s ORDER BY bt.transit_date DESC, bt.departure_at DESC NULLS LAST, bt.id DESC", transitsSelect, transitsFrom, f.Where())
	if err := r.exec.Select(ctx, &rows, sql, f.Args()...); err != nil {
		return nil, err
	}
	return convertTransitLegs(rows)
}

func (r *ReportRepository) TransitPage(ctx context.Context, f query.Filter, page model.PageRequest) (model.Page[model.TransitLegRecord], error) {
	var rows []transitLegRow
	sql := fmt.Sprintf("%s %s %s ORDER BY bt.transit_date DESC, bt.departure_at DESC NULLS LAST, bt.id DESC LIMIT ? OFFSET ?", transitsSelect, transitsFrom, f.Where())

	total, err := r.paged(ctx, f, transitsFrom, page, func(ctx context.Context) error {
		return r.exec.Select(ctx, &rows, sql, append(f.Args(), page.Limit, page.Offset())...)
	})
	if err != nil {
		return model.Page[model.TransitLegRecord]{}, err
	}

	legs, err := convertTransitLegs(rows)
	if err != nil {
		return model.Page[model.TransitLegRecord]{}, err
	}
	return model.Page[model.TransitLegRecord]{Data: legs, Pagination: model.NewPagination(page, total)}, nil
}

type baseTotalRow struct {
	Date        time.Time `gorm:"column:date"`
	VehicleID   int64     `gorm:"column:vehicle_id"`
	VehicleName string    `gorm:"column:vehicle_name"`
	BaseID      int64     `gorm:"column:base_id"`
	BaseName    string    `gorm:"column:base_name"`
	Seconds     int64     `gorm:"column:seconds"`
	Count       int64     `gorm:"column:count"`
}

// TransitBaseDurations sums the time spent at the departure base per day,
// vehicle and base.
func (r *ReportRepository) TransitBaseDurations(ctx context.Context, f query.Filter) ([]model.BaseDayTotal, error) {
	return r.baseTotals(ctx, f, fmt.Sprintf("COALESCE(SUM(%s), 0)", fmt.Sprintf(intervalSeconds, "bt.base_duration")))
}

// TransitTourCounts counts legs leaving each base per day and vehicle.
func (r *ReportRepository) TransitTourCounts(ctx context.Context, f query.Filter) ([]model.BaseDayTotal, error) {
	return r.baseTotals(ctx, f, "0")
}

// TransitMaxDurations keeps the longest transit per day, vehicle and base.
func (r *ReportRepository) TransitMaxDurations(ctx context.Context, f query.Filter) ([]model.BaseDayTotal, error) {
	return r.baseTotals(ctx, f, fmt.Sprintf("COALESCE(MAX(%s), 0)", fmt.Sprintf(intervalSeconds, "bt.transit_duration")))
}

func (r *ReportRepository) baseTotals(ctx context.Context, f query.Filter, secondsExpr string) ([]model.BaseDayTotal, error) {
	var rows []baseTotalRow
	sql := fmt.Sprintf(`SELECT bt.transit_date AS date,
			bt.vehicle_id,
			COALESCE(v.name, '') AS vehicle_name,
			bt.departure_base_id AS base_id,
			COALESCE(dep.name, '') AS base_name,
			CAST(%s AS BIGINT) AS seconds,
			COUNT(*) AS count
		%s %s
		GROUP BY bt.transit_date, bt.vehicle_id, v.name, bt.departure_base_id, dep.name
		ORDER BY bt.transit_date DESC, dep.name, v.name`, secondsExpr, transitsFrom, f.Where())
	if err := r.exec.Select(ctx, &rows, sql, f.Args()...); err != nil {
		return nil, err
	}

	result := make([]model.BaseDayTotal, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.BaseDayTotal{
			Date:        row.Date,
			VehicleID:   row.VehicleID,
			VehicleName: row.VehicleName,
			BaseID:      row.BaseID,
			BaseName:    row.BaseName,
			Seconds:     row.Seconds,
			Count:       row.Count,
		})
	}
	return result, nil
}

// paged runs the data query and a COUNT over the same WHERE clause together.
func (r *ReportRepository) paged(ctx context.Context, f query.Filter, from string, page model.PageRequest, data func(context.Context) error) (int64, error) {
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return data(gctx)
	})
	g.Go(func() error {
		return r.exec.Select(gctx, &total, fmt.Sprintf("SELECT COUNT(*) AS total %s %s", from, f.Where()), f.Args()...)
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

func convertEngineUsage(rows []engineUsageRow) ([]model.TelemetryRecord, error) {
	result := make([]model.TelemetryRecord, 0, len(rows))
	for _, row := range rows {
		total, err := durationColumn(row.TotalDuration)
		if err != nil {
			return nil, fmt.Errorf("engine usage %s vehicle %d total duration: %w", timeutil.DayKey(row.Date), row.VehicleID, err)
		}
		moving, err := durationColumn(row.MovingDuration)
		if err != nil {
			return nil, fmt.Errorf("engine usage %s vehicle %d moving duration: %w", timeutil.DayKey(row.Date), row.VehicleID, err)
		}
		idle, err := durationColumn(row.EngineIdleDuration)
		if err != nil {
			return nil, fmt.Errorf("engine usage %s vehicle %d idle duration: %w", timeutil.DayKey(row.Date), row.VehicleID, err)
		}
		result = append(result, model.TelemetryRecord{
			Date:                   row.Date,
			VehicleID:              row.VehicleID,
			VehicleName:            row.VehicleName,
			GroupID:                row.GroupID,
			GroupName:              row.GroupName,
			TotalSeconds:           total,
			MovingSeconds:          moving,
			IdleSeconds:            idle,
			DistanceKm:             clamp(row.DistanceKm),
			MaxSpeedKmh:            clamp(row.MaxSpeedKmh),
			UsagePercent:           clamp(row.UsagePercent),
			TotalConsumptionLiters: clamp(row.TotalConsumptionLiters),
			ConsumptionPer100Km:    clamp(row.ConsumptionPer100Km),
			ConsumptionPerHour:     clamp(row.ConsumptionPerHour),
		})
	}
	return result, nil
}

func convertExceptions(rows []exceptionRow) []model.ExceptionRecord {
	result := make([]model.ExceptionRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ExceptionRecord{
			Date:                   row.Date,
			VehicleID:              row.VehicleID,
			VehicleName:            row.VehicleName,
			GroupID:                row.GroupID,
			GroupName:              row.GroupName,
			SpeedingCount:          row.SpeedingCount,
			HarshBrakingCount:      row.HarshBrakingCount,
			HarshAccelerationCount: row.HarshAccelerationCount,
		})
	}
	return result
}

func convertTransitLegs(rows []transitLegRow) ([]model.TransitLegRecord, error) {
	result := make([]model.TransitLegRecord, 0, len(rows))
	for _, row := range rows {
		base, err := durationColumn(row.BaseDuration)
		if err != nil {
			return nil, fmt.Errorf("transit %d base duration: %w", row.ID, err)
		}
		transit, err := durationColumn(row.TransitDuration)
		if err != nil {
			return nil, fmt.Errorf("transit %d transit duration: %w", row.ID, err)
		}
		result = append(result, model.TransitLegRecord{
			ID:                row.ID,
			Date:              row.Date,
			VehicleID:         row.VehicleID,
			VehicleName:       row.VehicleName,
			DepartureBaseID:   row.DepartureBaseID,
			DepartureBaseName: row.DepartureBaseName,
			ArrivalBaseID:     row.ArrivalBaseID,
			ArrivalBaseName:   row.ArrivalBaseName,
			DepartureAt:       row.DepartureAt,
			ArrivalAt:         row.ArrivalAt,
			BaseSeconds:       base,
			TransitSeconds:    transit,
		})
	}
	return result, nil
}

func durationColumn(value *string) (int64, error) {
	if value == nil {
		return 0, nil
	}
	return timeutil.ParseDurationOrZero(*value)
}

// clamp zeroes the NaN and infinite ratios a division by zero can produce.
func clamp(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
