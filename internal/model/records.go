package model

import "time"

// TelemetryRecord is one engine-usage row per vehicle per day. Durations are
// held in seconds; storage keeps them as HH:MM:SS text.
type TelemetryRecord struct {
	Date                   time.Time `json:"date"`
	VehicleID              int64     `json:"vehicle_id"`
	VehicleName            string    `json:"vehicle_name"`
	GroupID                *int64    `json:"group_id,omitempty"`
	GroupName              *string   `json:"group_name,omitempty"`
	TotalSeconds           int64     `json:"total_seconds"`
	MovingSeconds          int64     `json:"moving_seconds"`
	IdleSeconds            int64     `json:"idle_seconds"`
	DistanceKm             float64   `json:"distance_km"`
	MaxSpeedKmh            float64   `json:"max_speed_kmh"`
	UsagePercent           float64   `json:"usage_percent"`
	TotalConsumptionLiters float64   `json:"total_consumption_liters"`
	ConsumptionPer100Km    float64   `json:"consumption_per_100km"`
	ConsumptionPerHour     float64   `json:"consumption_per_hour"`
}

type ExceptionRecord struct {
	Date                   time.Time `json:"date"`
	VehicleID              int64     `json:"vehicle_id"`
	VehicleName            string    `json:"vehicle_name"`
	GroupID                *int64    `json:"group_id,omitempty"`
	GroupName              *string   `json:"group_name,omitempty"`
	SpeedingCount          int64     `json:"speeding_count"`
	HarshBrakingCount      int64     `json:"harsh_braking_count"`
	HarshAccelerationCount int64     `json:"harsh_acceleration_count"`
}

type TransitLegRecord struct {
	ID                int64      `json:"id"`
	Date              time.Time  `json:"date"`
	VehicleID         int64      `json:"vehicle_id"`
	VehicleName       string     `json:"vehicle_name"`
	DepartureBaseID   int64      `json:"departure_base_id"`
	DepartureBaseName string     `json:"departure_base_name"`
	ArrivalBaseID     *int64     `json:"arrival_base_id,omitempty"`
	ArrivalBaseName   *string    `json:"arrival_base_name,omitempty"`
	DepartureAt       *time.Time `json:"departure_at,omitempty"`
	ArrivalAt         *time.Time `json:"arrival_at,omitempty"`
	BaseSeconds       int64      `json:"base_seconds"`
	TransitSeconds    int64      `json:"transit_seconds"`
}

type Vehicle struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	GroupID   *int64  `json:"group_id,omitempty"`
	GroupName *string `json:"group_name,omitempty"`
}

type VehicleGroup struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// BaseDayTotal is one (day, vehicle, departure base) aggregate used by the
// transit sub-reports.
type BaseDayTotal struct {
	Date        time.Time
	VehicleID   int64
	VehicleName string
	BaseID      int64
	BaseName    string
	Seconds     int64
	Count       int64
}
