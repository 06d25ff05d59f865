package model

// Every dashboard point carries the display name, the period key it was
// bucketed on and, for vehicle-keyed buckets, the vehicle it belongs to.

type DurationPoint struct {
	Name           string `json:"name"`
	Period         string `json:"period"`
	MovingDuration string `json:"moving_duration"`
	IdleDuration   string `json:"idle_duration"`
	MovingSeconds  int64  `json:"moving_seconds"`
	IdleSeconds    int64  `json:"idle_seconds"`
	VehicleID      *int64 `json:"vehicle_id,omitempty"`
	VehicleName    string `json:"vehicle_name,omitempty"`
}

type UsagePercentagePoint struct {
	Name            string `json:"name"`
	Period          string `json:"period"`
	UsagePercentage int    `json:"usage_percentage"`
	IdlePercentage  int    `json:"idle_percentage"`
	VehicleID       *int64 `json:"vehicle_id,omitempty"`
	VehicleName     string `json:"vehicle_name,omitempty"`
}

type ConsumptionPoint struct {
	Name             string  `json:"name"`
	Period           string  `json:"period"`
	TotalConsumption float64 `json:"total_consumption"`
	VehicleID        *int64  `json:"vehicle_id,omitempty"`
	VehicleName      string  `json:"vehicle_name,omitempty"`
}

type DurationDistancePoint struct {
	Name           string  `json:"name"`
	Period         string  `json:"period"`
	MovingDuration string  `json:"moving_duration"`
	MovingHours    float64 `json:"moving_hours"`
	TotalDistance  float64 `json:"total_distance"`
	VehicleID      *int64  `json:"vehicle_id,omitempty"`
	VehicleName    string  `json:"vehicle_name,omitempty"`
}

type DistanceConsumptionPoint struct {
	Name             string  `json:"name"`
	Period           string  `json:"period"`
	TotalDistance    float64 `json:"total_distance"`
	TotalConsumption float64 `json:"total_consumption"`
	VehicleID        *int64  `json:"vehicle_id,omitempty"`
	VehicleName      string  `json:"vehicle_name,omitempty"`
}

type RatioPoint struct {
	Name        string  `json:"name"`
	Period      string  `json:"period"`
	Value       float64 `json:"value"`
	VehicleID   *int64  `json:"vehicle_id,omitempty"`
	VehicleName string  `json:"vehicle_name,omitempty"`
}

// SpeedingPoint carries a count of days over the threshold for periodized
// buckets, and a flag for the plain daily series.
type SpeedingPoint struct {
	Name         string  `json:"name"`
	Period       string  `json:"period"`
	MaxSpeed     float64 `json:"max_speed"`
	SpeedingDays *int    `json:"speeding_days,omitempty"`
	IsSpeeding   *bool   `json:"is_speeding,omitempty"`
	VehicleID    *int64  `json:"vehicle_id,omitempty"`
	VehicleName  string  `json:"vehicle_name,omitempty"`
}

type EngineDashboard struct {
	GroupBy             GroupBy                    `json:"group_by"`
	Durations           []DurationPoint            `json:"durations"`
	UsagePercentages    []UsagePercentagePoint     `json:"usage_percentages"`
	Consumption         []ConsumptionPoint         `json:"consumption"`
	DurationDistance    []DurationDistancePoint    `json:"duration_distance"`
	DistanceConsumption []DistanceConsumptionPoint `json:"distance_consumption"`
	ConsumptionPer100Km []RatioPoint               `json:"consumption_per_100km"`
	ConsumptionPerHour  []RatioPoint               `json:"consumption_per_hour"`
	Speeding            []SpeedingPoint            `json:"speeding"`
}

type SpeedingTotalPoint struct {
	Name          string `json:"name"`
	Period        string `json:"period"`
	SpeedingCount int64  `json:"speeding_count"`
	VehicleID     *int64 `json:"vehicle_id,omitempty"`
	VehicleName   string `json:"vehicle_name,omitempty"`
}

type HarshEventPoint struct {
	Name                   string `json:"name"`
	Period                 string `json:"period"`
	HarshBrakingCount      int64  `json:"harsh_braking_count"`
	HarshAccelerationCount int64  `json:"harsh_acceleration_count"`
	VehicleID              *int64 `json:"vehicle_id,omitempty"`
	VehicleName            string `json:"vehicle_name,omitempty"`
}

type ExceptionDashboard struct {
	GroupBy     GroupBy              `json:"group_by"`
	Speeding    []SpeedingTotalPoint `json:"speeding"`
	HarshEvents []HarshEventPoint    `json:"harsh_events"`
}

type TransitBasePoint struct {
	Name        string `json:"name"`
	Day         string `json:"day"`
	Date        string `json:"date"`
	GroupKey    string `json:"group_key"`
	VehicleID   int64  `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`
	BaseID      int64  `json:"base_id"`
	BaseName    string `json:"base_name"`
	Duration    string `json:"duration,omitempty"`
	Seconds     int64  `json:"seconds"`
	TourCount   int64  `json:"tour_count,omitempty"`
}

type TransitHistoryPoint struct {
	Name              string  `json:"name"`
	Day               string  `json:"day"`
	Date              string  `json:"date"`
	GroupKey          string  `json:"group_key"`
	VehicleID         int64   `json:"vehicle_id"`
	VehicleName       string  `json:"vehicle_name"`
	DepartureBaseName string  `json:"departure_base_name"`
	ArrivalBaseName   string  `json:"arrival_base_name"`
	DepartureAt       *string `json:"departure_at,omitempty"`
	ArrivalAt         *string `json:"arrival_at,omitempty"`
	BaseDuration      string  `json:"base_duration"`
	TransitDuration   string  `json:"transit_duration"`
	TransitSeconds    int64   `json:"transit_seconds"`
}

type TransitReport struct {
	DurationPerBase    []TransitBasePoint    `json:"duration_per_base"`
	ToursPerBase       []TransitBasePoint    `json:"tours_per_base"`
	TransitHistory     []TransitHistoryPoint `json:"transit_history"`
	MaxTransitDuration []TransitBasePoint    `json:"max_transit_duration"`
}
