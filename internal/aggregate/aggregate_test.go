package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-reporting-service/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func usageRow(d time.Time, vehicle int64, moving, idle int64, distance, consumption float64) model.TelemetryRecord {
	return model.TelemetryRecord{
		Date:                   d,
		VehicleID:              vehicle,
		VehicleName:            "V" + string(rune('0'+vehicle%10)),
		MovingSeconds:          moving,
		IdleSeconds:            idle,
		DistanceKm:             distance,
		TotalConsumptionLiters: consumption,
	}
}

// Rows arrive date-descending, as the repository orders them.
func twoDays() []model.TelemetryRecord {
	return []model.TelemetryRecord{
		usageRow(date(2025, 7, 2), 7, 7200, 0, 20, 3),
		usageRow(date(2025, 7, 1), 7, 3600, 1800, 10, 2),
	}
}

func TestEngineUsageByDay(t *testing.T) {
	d := EngineUsage(twoDays(), model.GroupByDay)

	require.Len(t, d.Durations, 2)
	assert.Equal(t, model.GroupByDay, d.GroupBy)
	assert.Equal(t, "2025-07-02", d.Durations[0].Period)
	assert.Equal(t, "mer. 2", d.Durations[0].Name)
	assert.Equal(t, "mar. 1", d.Durations[1].Name)
	assert.Equal(t, "01:00:00", d.Durations[1].MovingDuration)
	assert.Equal(t, "00:30:00", d.Durations[1].IdleDuration)
	assert.Equal(t, 67, d.UsagePercentages[1].UsagePercentage)
	assert.Equal(t, 33, d.UsagePercentages[1].IdlePercentage)
	require.NotNil(t, d.Durations[0].VehicleID)
	assert.Equal(t, int64(7), *d.Durations[0].VehicleID)
}

func TestEngineUsageByWeekMergesSameVehicle(t *testing.T) {
	d := EngineUsage(twoDays(), model.GroupByWeek)

	require.Len(t, d.Durations, 1)
	assert.Equal(t, "2025-W27", d.Durations[0].Period)
	assert.Equal(t, "Semaine 27", d.Durations[0].Name)
	assert.Equal(t, int64(10800), d.Durations[0].MovingSeconds)
	assert.Equal(t, "03:00:00", d.Durations[0].MovingDuration)
	assert.Equal(t, 86, d.UsagePercentages[0].UsagePercentage)
	assert.Equal(t, 30.0, d.DistanceConsumption[0].TotalDistance)
	assert.Equal(t, 5.0, d.Consumption[0].TotalConsumption)
	assert.Equal(t, 16.67, d.ConsumptionPer100Km[0].Value)
	assert.Equal(t, 1.67, d.ConsumptionPerHour[0].Value)
	assert.Equal(t, 3.0, d.DurationDistance[0].MovingHours)
}

func TestEngineUsageNeverMergesVehicles(t *testing.T) {
	rows := []model.TelemetryRecord{
		usageRow(date(2025, 7, 2), 7, 3600, 0, 10, 1),
		usageRow(date(2025, 7, 2), 8, 3600, 0, 10, 1),
		usageRow(date(2025, 7, 1), 7, 3600, 0, 10, 1),
	}
	d := EngineUsage(rows, model.GroupByMonth)

	require.Len(t, d.Durations, 2)
	assert.Equal(t, "juillet 2025", d.Durations[0].Name)
	assert.Equal(t, "2025-07", d.Durations[0].Period)
	assert.Equal(t, int64(7), *d.Durations[0].VehicleID)
	assert.Equal(t, int64(7200), d.Durations[0].MovingSeconds)
	assert.Equal(t, int64(8), *d.Durations[1].VehicleID)
}

func TestEngineUsageZeroDenominators(t *testing.T) {
	d := EngineUsage([]model.TelemetryRecord{usageRow(date(2025, 7, 1), 1, 0, 0, 0, 4)}, model.GroupByDay)

	assert.Zero(t, d.UsagePercentages[0].UsagePercentage)
	assert.Zero(t, d.UsagePercentages[0].IdlePercentage)
	assert.Zero(t, d.ConsumptionPer100Km[0].Value)
	assert.Zero(t, d.ConsumptionPerHour[0].Value)
}

func TestEngineUsageUnknownGroupByFallsBackToDay(t *testing.T) {
	d := EngineUsage(twoDays(), model.GroupBy("year"))
	assert.Equal(t, model.GroupByDay, d.GroupBy)
	assert.Len(t, d.Durations, 2)
}

func TestEngineUsageEmpty(t *testing.T) {
	d := EngineUsage(nil, model.GroupByWeek)
	assert.NotNil(t, d.Durations)
	assert.Empty(t, d.Durations)
}

func TestSpeedingCountVersusDailyFlag(t *testing.T) {
	rows := []model.TelemetryRecord{
		{Date: date(2025, 7, 2), VehicleID: 1, MaxSpeedKmh: 95},
		{Date: date(2025, 7, 2), VehicleID: 2, MaxSpeedKmh: 60},
		{Date: date(2025, 7, 1), VehicleID: 1, MaxSpeedKmh: 80},
	}

	weekly := EngineUsage(rows, model.GroupByWeek)
	require.Len(t, weekly.Speeding, 2)
	require.NotNil(t, weekly.Speeding[0].SpeedingDays)
	assert.Equal(t, 1, *weekly.Speeding[0].SpeedingDays)
	assert.Equal(t, 95.0, weekly.Speeding[0].MaxSpeed)
	assert.Nil(t, weekly.Speeding[0].IsSpeeding)

	daily := DailyEngineUsage(rows)
	assert.Equal(t, model.GroupByNone, daily.GroupBy)
	require.Len(t, daily.Speeding, 2)
	require.NotNil(t, daily.Speeding[0].IsSpeeding)
	assert.True(t, *daily.Speeding[0].IsSpeeding)
	assert.False(t, *daily.Speeding[1].IsSpeeding, "80 km/h is not above the threshold")
	assert.Nil(t, daily.Speeding[0].VehicleID)
	assert.Nil(t, daily.Speeding[0].SpeedingDays)
}

func TestDailyEngineUsageSumsAcrossVehicles(t *testing.T) {
	rows := []model.TelemetryRecord{
		usageRow(date(2025, 7, 2), 7, 3600, 0, 10, 1),
		usageRow(date(2025, 7, 2), 8, 1800, 1800, 5, 1),
	}
	d := DailyEngineUsage(rows)

	require.Len(t, d.Durations, 1)
	assert.Equal(t, int64(5400), d.Durations[0].MovingSeconds)
	assert.Equal(t, "mer. 2", d.Durations[0].Name)
	assert.Equal(t, 75, d.UsagePercentages[0].UsagePercentage)
	assert.Equal(t, 13.33, d.ConsumptionPer100Km[0].Value)
}

func TestExceptionsByWeek(t *testing.T) {
	rows := []model.ExceptionRecord{
		{Date: date(2025, 7, 8), VehicleID: 3, VehicleName: "C3", SpeedingCount: 1, HarshBrakingCount: 2},
		{Date: date(2025, 7, 2), VehicleID: 3, VehicleName: "C3", SpeedingCount: 4, HarshAccelerationCount: 1},
		{Date: date(2025, 7, 1), VehicleID: 3, VehicleName: "C3", SpeedingCount: 2, HarshBrakingCount: 1},
	}
	d := Exceptions(rows, model.GroupByWeek)

	require.Len(t, d.Speeding, 2)
	assert.Equal(t, "Semaine 28", d.Speeding[0].Name)
	assert.Equal(t, int64(1), d.Speeding[0].SpeedingCount)
	assert.Equal(t, "Semaine 27", d.Speeding[1].Name)
	assert.Equal(t, int64(6), d.Speeding[1].SpeedingCount)
	assert.Equal(t, int64(1), d.HarshEvents[1].HarshBrakingCount)
	assert.Equal(t, int64(1), d.HarshEvents[1].HarshAccelerationCount)
	assert.Equal(t, "C3", d.HarshEvents[1].VehicleName)
}

func TestReverseSeriesIsInvolution(t *testing.T) {
	d := EngineUsage(twoDays(), model.GroupByDay)
	r := ReverseEngineSeries(d)

	assert.Equal(t, model.GroupByDay, r.GroupBy)
	assert.Equal(t, "2025-07-01", r.Durations[0].Period)
	assert.Equal(t, "2025-07-01", r.Speeding[0].Period)
	assert.Equal(t, d, ReverseEngineSeries(r))

	e := Exceptions([]model.ExceptionRecord{
		{Date: date(2025, 7, 2), VehicleID: 1},
		{Date: date(2025, 7, 1), VehicleID: 1},
	}, model.GroupByDay)
	assert.Equal(t, e, ReverseExceptionSeries(ReverseExceptionSeries(e)))
	assert.Equal(t, "2025-07-01", ReverseExceptionSeries(e).HarshEvents[0].Period)
}

func TestReverse(t *testing.T) {
	in := []int{1, 2, 3}
	assert.Equal(t, []int{3, 2, 1}, Reverse(in))
	assert.Equal(t, []int{1, 2, 3}, in, "input must not be modified")
	assert.Nil(t, Reverse[int](nil))
}

func TestTransitReshaping(t *testing.T) {
	totals := []model.BaseDayTotal{{
		Date:        date(2025, 7, 6), // Sunday
		VehicleID:   68,
		VehicleName: "Camion 68",
		BaseID:      2,
		BaseName:    "Lyon",
		Seconds:     5400,
		Count:       3,
	}}

	durations := TransitDurations(totals)
	require.Len(t, durations, 1)
	assert.Equal(t, "Dimanche - Camion 68 - Lyon", durations[0].Name)
	assert.Equal(t, "Dimanche", durations[0].Day)
	assert.Equal(t, "Lyon|Camion 68", durations[0].GroupKey)
	assert.Equal(t, "01:30:00", durations[0].Duration)

	tours := TransitTours(totals)
	assert.Equal(t, int64(3), tours[0].TourCount)
	assert.Empty(t, tours[0].Duration)

	arrival := "Paris"
	departed := time.Date(2025, 7, 7, 8, 0, 0, 0, time.UTC)
	history := TransitHistory([]model.TransitLegRecord{{
		Date:              date(2025, 7, 7),
		VehicleID:         68,
		VehicleName:       "Camion 68",
		DepartureBaseName: "Lyon",
		ArrivalBaseName:   &arrival,
		DepartureAt:       &departed,
		BaseSeconds:       600,
		TransitSeconds:    16200,
	}})
	require.Len(t, history, 1)
	assert.Equal(t, "Lundi - Camion 68 - Lyon → Paris", history[0].Name)
	assert.Equal(t, "Lyon → Paris|Camion 68", history[0].GroupKey)
	assert.Equal(t, "04:30:00", history[0].TransitDuration)
	assert.Equal(t, "00:10:00", history[0].BaseDuration)
	require.NotNil(t, history[0].DepartureAt)
	assert.Equal(t, "2025-07-07T08:00:00Z", *history[0].DepartureAt)
	assert.Nil(t, history[0].ArrivalAt)
}

func TestZeroLengthTransitKeepsSeconds(t *testing.T) {
	longest := TransitMaxDurations([]model.BaseDayTotal{
		{Date: date(2025, 7, 1), VehicleID: 68, BaseID: 1, Seconds: 5400},
		{Date: date(2025, 7, 2), VehicleID: 68, BaseID: 1},
	})
	require.Len(t, longest, 2)

	for _, p := range longest {
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.Contains(t, fields, "seconds")
		assert.Contains(t, fields, "duration")
	}
	assert.Equal(t, "00:00:00", longest[1].Duration)
}

func TestDayLabelIsSundayIndexed(t *testing.T) {
	assert.Equal(t, "Dimanche", DayLabel(date(2025, 7, 6)))
	assert.Equal(t, "Samedi", DayLabel(date(2025, 7, 5)))
}
