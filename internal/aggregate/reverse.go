package aggregate

import "fleet-reporting-service/internal/model"

// Reverse returns a reversed copy of s.
func Reverse[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// ReverseEngineSeries flips every series of d into chronological order.
// Scalar fields pass through unchanged.
func ReverseEngineSeries(d model.EngineDashboard) model.EngineDashboard {
	return model.EngineDashboard{
		GroupBy:             d.GroupBy,
		Durations:           Reverse(d.Durations),
		UsagePercentages:    Reverse(d.UsagePercentages),
		Consumption:         Reverse(d.Consumption),
		DurationDistance:    Reverse(d.DurationDistance),
		DistanceConsumption: Reverse(d.DistanceConsumption),
		ConsumptionPer100Km: Reverse(d.ConsumptionPer100Km),
		ConsumptionPerHour:  Reverse(d.ConsumptionPerHour),
		Speeding:            Reverse(d.Speeding),
	}
}

func ReverseExceptionSeries(d model.ExceptionDashboard) model.ExceptionDashboard {
	return model.ExceptionDashboard{
		GroupBy:     d.GroupBy,
		Speeding:    Reverse(d.Speeding),
		HarshEvents: Reverse(d.HarshEvents),
	}
}
