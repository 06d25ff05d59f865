package aggregate

import (
	"time"

	"fleet-reporting-service/internal/model"
)

type exceptionBucket struct {
	period       string
	first        time.Time
	vehicleID    int64
	vehicleName  string
	rows         int
	speeding     int64
	braking      int64
	acceleration int64
}

func Exceptions(rows []model.ExceptionRecord, groupBy model.GroupBy) model.ExceptionDashboard {
	groupBy = groupBy.Bucket()

	index := make(map[bucketKey]*exceptionBucket)
	var order []*exceptionBucket
	for _, r := range rows {
		key := bucketKey{period: periodKey(r.Date, groupBy), vehicleID: r.VehicleID}
		b, ok := index[key]
		if !ok {
			b = &exceptionBucket{period: key.period, first: r.Date, vehicleID: r.VehicleID, vehicleName: r.VehicleName}
			index[key] = b
			order = append(order, b)
		}
		b.rows++
		b.speeding += r.SpeedingCount
		b.braking += r.HarshBrakingCount
		b.acceleration += r.HarshAccelerationCount
	}

	d := model.ExceptionDashboard{
		GroupBy:     groupBy,
		Speeding:    make([]model.SpeedingTotalPoint, 0, len(order)),
		HarshEvents: make([]model.HarshEventPoint, 0, len(order)),
	}
	for _, b := range order {
		if b.rows == 0 {
			continue
		}
		name := displayName(b.period, b.first, groupBy)
		id := b.vehicleID
		d.Speeding = append(d.Speeding, model.SpeedingTotalPoint{
			Name:          name,
			Period:        b.period,
			SpeedingCount: b.speeding,
			VehicleID:     &id,
			VehicleName:   b.vehicleName,
		})
		d.HarshEvents = append(d.HarshEvents, model.HarshEventPoint{
			Name:                   name,
			Period:                 b.period,
			HarshBrakingCount:      b.braking,
			HarshAccelerationCount: b.acceleration,
			VehicleID:              &id,
			VehicleName:            b.vehicleName,
		})
	}
	return d
}
