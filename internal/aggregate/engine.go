package aggregate

import (
	"math"
	"time"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/timeutil"
)

// SpeedingThresholdKmh flags a day whose max speed is strictly above it.
const SpeedingThresholdKmh = 80

type bucketKey struct {
	period    string
	vehicleID int64
}

type engineBucket struct {
	period       string
	first        time.Time
	vehicleID    *int64
	vehicleName  string
	rows         int
	moving       int64
	idle         int64
	distance     float64
	consumption  float64
	maxSpeed     float64
	speedingDays int
}

func (b *engineBucket) add(r model.TelemetryRecord) {
	b.rows++
	b.moving += r.MovingSeconds
	b.idle += r.IdleSeconds
	b.distance += r.DistanceKm
	b.consumption += r.TotalConsumptionLiters
	if r.MaxSpeedKmh > b.maxSpeed {
		b.maxSpeed = r.MaxSpeedKmh
	}
	if r.MaxSpeedKmh > SpeedingThresholdKmh {
		b.speedingDays++
	}
}

type derived struct {
	usage   int
	idle    int
	per100  float64
	perHour float64
}

func (b *engineBucket) derive() derived {
	var d derived
	if total := b.moving + b.idle; total > 0 {
		d.usage = int(math.Round(float64(b.moving) / float64(total) * 100))
		d.idle = 100 - d.usage
	}
	if b.distance > 0 {
		d.per100 = round2(b.consumption / b.distance * 100)
	}
	if b.moving > 0 {
		d.perHour = round2(b.consumption / (float64(b.moving) / 3600))
	}
	return d
}

// EngineUsage groups rows by period and vehicle. Buckets keep the order in
// which they were first seen, so date-descending input gives newest-first
// series.
func EngineUsage(rows []model.TelemetryRecord, groupBy model.GroupBy) model.EngineDashboard {
	groupBy = groupBy.Bucket()

	index := make(map[bucketKey]*engineBucket)
	var order []*engineBucket
	for _, r := range rows {
		key := bucketKey{period: periodKey(r.Date, groupBy), vehicleID: r.VehicleID}
		b, ok := index[key]
		if !ok {
			id := r.VehicleID
			b = &engineBucket{period: key.period, first: r.Date, vehicleID: &id, vehicleName: r.VehicleName}
			index[key] = b
			order = append(order, b)
		}
		b.add(r)
	}

	return buildEngineDashboard(order, groupBy, false)
}

// DailyEngineUsage buckets strictly by calendar day across all vehicles and
// reports a speeding flag per day instead of a count.
func DailyEngineUsage(rows []model.TelemetryRecord) model.EngineDashboard {
	index := make(map[string]*engineBucket)
	var order []*engineBucket
	for _, r := range rows {
		key := timeutil.DayKey(r.Date)
		b, ok := index[key]
		if !ok {
			b = &engineBucket{period: key, first: r.Date}
			index[key] = b
			order = append(order, b)
		}
		b.add(r)
	}

	dashboard := buildEngineDashboard(order, model.GroupByDay, true)
	dashboard.GroupBy = model.GroupByNone
	return dashboard
}

func buildEngineDashboard(buckets []*engineBucket, groupBy model.GroupBy, dailyFlag bool) model.EngineDashboard {
	d := model.EngineDashboard{
		GroupBy:             groupBy,
		Durations:           make([]model.DurationPoint, 0, len(buckets)),
		UsagePercentages:    make([]model.UsagePercentagePoint, 0, len(buckets)),
		Consumption:         make([]model.ConsumptionPoint, 0, len(buckets)),
		DurationDistance:    make([]model.DurationDistancePoint, 0, len(buckets)),
		DistanceConsumption: make([]model.DistanceConsumptionPoint, 0, len(buckets)),
		ConsumptionPer100Km: make([]model.RatioPoint, 0, len(buckets)),
		ConsumptionPerHour:  make([]model.RatioPoint, 0, len(buckets)),
		Speeding:            make([]model.SpeedingPoint, 0, len(buckets)),
	}

	for _, b := range buckets {
		if b.rows == 0 {
			continue
		}
		name := displayName(b.period, b.first, groupBy)
		m := b.derive()
		moving := timeutil.SecondsToDuration(b.moving)
		distance := round2(b.distance)
		consumption := round2(b.consumption)

		d.Durations = append(d.Durations, model.DurationPoint{
			Name:           name,
			Period:         b.period,
			MovingDuration: moving,
			IdleDuration:   timeutil.SecondsToDuration(b.idle),
			MovingSeconds:  b.moving,
			IdleSeconds:    b.idle,
			VehicleID:      b.vehicleID,
			VehicleName:    b.vehicleName,
		})
		d.UsagePercentages = append(d.UsagePercentages, model.UsagePercentagePoint{
			Name:            name,
			Period:          b.period,
			UsagePercentage: m.usage,
			IdlePercentage:  m.idle,
			VehicleID:       b.vehicleID,
			VehicleName:     b.vehicleName,
		})
		d.Consumption = append(d.Consumption, model.ConsumptionPoint{
			Name:             name,
			Period:           b.period,
			TotalConsumption: consumption,
			VehicleID:        b.vehicleID,
			VehicleName:      b.vehicleName,
		})
		d.DurationDistance = append(d.DurationDistance, model.DurationDistancePoint{
			Name:           name,
			Period:         b.period,
			MovingDuration: moving,
			MovingHours:    round2(float64(b.moving) / 3600),
			TotalDistance:  distance,
			VehicleID:      b.vehicleID,
			VehicleName:    b.vehicleName,
		})
		d.DistanceConsumption = append(d.DistanceConsumption, model.DistanceConsumptionPoint{
			Name:             name,
			Period:           b.period,
			TotalDistance:    distance,
			TotalConsumption: consumption,
			VehicleID:        b.vehicleID,
			VehicleName:      b.vehicleName,
		})
		d.ConsumptionPer100Km = append(d.ConsumptionPer100Km, model.RatioPoint{
			Name:        name,
			Period:      b.period,
			Value:       m.per100,
			VehicleID:   b.vehicleID,
			VehicleName: b.vehicleName,
		})
		d.ConsumptionPerHour = append(d.ConsumptionPerHour, model.RatioPoint{
			Name:        name,
			Period:      b.period,
			Value:       m.perHour,
			VehicleID:   b.vehicleID,
			VehicleName: b.vehicleName,
		})

		speeding := model.SpeedingPoint{
			Name:        name,
			Period:      b.period,
			MaxSpeed:    round2(b.maxSpeed),
			VehicleID:   b.vehicleID,
			VehicleName: b.vehicleName,
		}
		if dailyFlag {
			flag := b.maxSpeed > SpeedingThresholdKmh
			speeding.IsSpeeding = &flag
		} else {
			days := b.speedingDays
			speeding.SpeedingDays = &days
		}
		d.Speeding = append(d.Speeding, speeding)
	}

	return d
}
