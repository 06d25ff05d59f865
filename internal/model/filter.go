package model

import "time"

type GroupBy string

const (
	GroupByNone  GroupBy = ""
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

func (g GroupBy) Valid() bool {
	switch g {
	case GroupByNone, GroupByDay, GroupByWeek, GroupByMonth:
		return true
	default:
		return false
	}
}

// Bucket falls back to day bucketing for an unset or unknown value.
func (g GroupBy) Bucket() GroupBy {
	switch g {
	case GroupByWeek, GroupByMonth:
		return g
	default:
		return GroupByDay
	}
}

// VehicleFilter selects either a single vehicle or an explicit list. An
// explicit list must not be empty.
type VehicleFilter struct {
	IDs  []int64
	List bool
}

func SingleVehicle(id int64) *VehicleFilter {
	return &VehicleFilter{IDs: []int64{id}}
}

func VehicleList(ids ...int64) *VehicleFilter {
	return &VehicleFilter{IDs: ids, List: true}
}

// FilterCriteria is built per request and never persisted. DateFrom and
// DateTo are inclusive calendar days and only apply together.
type FilterCriteria struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Vehicle  *VehicleFilter
	GroupID  *int64
	WeekDays []int
}

func (c FilterCriteria) HasDateRange() bool {
	return c.DateFrom != nil && c.DateTo != nil
}

type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Clamp keeps page at or above 1 and limit within [1, maxLimit].
func (p PageRequest) Clamp(defaultLimit, maxLimit int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

func NewPagination(req PageRequest, total int64) Pagination {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return Pagination{
		CurrentPage:  req.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: req.Limit,
		HasNext:      req.Page < totalPages,
		HasPrev:      req.Page > 1,
	}
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
