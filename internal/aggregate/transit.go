package aggregate

import (
	"fmt"
	"time"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/timeutil"
)

const arrow = "→"

func TransitDurations(rows []model.BaseDayTotal) []model.TransitBasePoint {
	out := make([]model.TransitBasePoint, 0, len(rows))
	for _, r := range rows {
		p := basePoint(r)
		p.Seconds = r.Seconds
		p.Duration = timeutil.SecondsToDuration(r.Seconds)
		out = append(out, p)
	}
	return out
}

func TransitTours(rows []model.BaseDayTotal) []model.TransitBasePoint {
	out := make([]model.TransitBasePoint, 0, len(rows))
	for _, r := range rows {
		p := basePoint(r)
		p.TourCount = r.Count
		out = append(out, p)
	}
	return out
}

func TransitMaxDurations(rows []model.BaseDayTotal) []model.TransitBasePoint {
	return TransitDurations(rows)
}

func TransitHistory(legs []model.TransitLegRecord) []model.TransitHistoryPoint {
	out := make([]model.TransitHistoryPoint, 0, len(legs))
	for _, l := range legs {
		day := DayLabel(l.Date)
		arrival := ""
		if l.ArrivalBaseName != nil {
			arrival = *l.ArrivalBaseName
		}
		route := fmt.Sprintf("%s %s %s", l.DepartureBaseName, arrow, arrival)
		out = append(out, model.TransitHistoryPoint{
			Name:              fmt.Sprintf("%s - %s - %s", day, l.VehicleName, route),
			Day:               day,
			Date:              timeutil.DayKey(l.Date),
			GroupKey:          route + "|" + l.VehicleName,
			VehicleID:         l.VehicleID,
			VehicleName:       l.VehicleName,
			DepartureBaseName: l.DepartureBaseName,
			ArrivalBaseName:   arrival,
			DepartureAt:       formatTimestamp(l.DepartureAt),
			ArrivalAt:         formatTimestamp(l.ArrivalAt),
			BaseDuration:      timeutil.SecondsToDuration(l.BaseSeconds),
			TransitDuration:   timeutil.SecondsToDuration(l.TransitSeconds),
			TransitSeconds:    l.TransitSeconds,
		})
	}
	return out
}

func basePoint(r model.BaseDayTotal) model.TransitBasePoint {
	day := DayLabel(r.Date)
	return model.TransitBasePoint{
		Name:        fmt.Sprintf("%s - %s - %s", day, r.VehicleName, r.BaseName),
		Day:         day,
		Date:        timeutil.DayKey(r.Date),
		GroupKey:    r.BaseName + "|" + r.VehicleName,
		VehicleID:   r.VehicleID,
		VehicleName: r.VehicleName,
		BaseID:      r.BaseID,
		BaseName:    r.BaseName,
	}
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
