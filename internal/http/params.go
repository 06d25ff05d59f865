package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/query"
	"fleet-reporting-service/internal/timeutil"
)

// reportQuery holds the raw query-string parameters shared by the report
// routes. vehicleId and weekDaysThisWeek are read by hand since both accept
// repeated keys and comma-separated values.
type reportQuery struct {
	DateFrom string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	GroupID  *int64 `form:"groupId" binding:"omitempty,min=1"`
	GroupBy  string `form:"groupBy" binding:"omitempty,oneof=day week month"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func bindReportQuery(c *gin.Context) (reportQuery, error) {
	var params reportQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		return reportQuery{}, bindingError(err)
	}
	return params, nil
}

func (q reportQuery) page() model.PageRequest {
	return model.PageRequest{Page: q.Page, Limit: q.Limit}
}

func (q reportQuery) criteria(c *gin.Context) (model.FilterCriteria, error) {
	var criteria model.FilterCriteria

	if q.DateFrom != "" {
		from, err := timeutil.ParseDay(q.DateFrom)
		if err != nil {
			return criteria, query.Invalid("dateFrom must be a YYYY-MM-DD date")
		}
		criteria.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := timeutil.ParseDay(q.DateTo)
		if err != nil {
			return criteria, query.Invalid("dateTo must be a YYYY-MM-DD date")
		}
		criteria.DateTo = &to
	}

	vehicle, err := vehicleSelector(c)
	if err != nil {
		return criteria, err
	}
	criteria.Vehicle = vehicle

	criteria.GroupID = q.GroupID

	if raw, ok := c.GetQueryArray("weekDaysThisWeek"); ok {
		days, err := splitInts(raw)
		if err != nil {
			return criteria, query.Invalid("weekDaysThisWeek must be a comma-separated list of integers")
		}
		criteria.WeekDays = days
	}

	return criteria, nil
}

// vehicleSelector reads vehicleId, or its alias vehicleIds. A single plain
// value selects one vehicle; a repeated key or a comma-separated value selects
// a list.
func vehicleSelector(c *gin.Context) (*model.VehicleFilter, error) {
	name := "vehicleId"
	raw, ok := c.GetQueryArray(name)
	if alias, aliased := c.GetQueryArray("vehicleIds"); aliased {
		if ok {
			return nil, query.Invalid("use either vehicleId or vehicleIds")
		}
		name, raw, ok = "vehicleIds", alias, true
	}
	if !ok {
		return nil, nil
	}

	ids, err := splitInts(raw)
	if err != nil {
		return nil, query.Invalid("%s must be a comma-separated list of integers", name)
	}
	ids64 := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id < 1 {
			return nil, query.Invalid("%s must be at least 1", name)
		}
		ids64 = append(ids64, int64(id))
	}

	if name == "vehicleId" && len(raw) == 1 && len(ids64) == 1 && !strings.Contains(raw[0], ",") {
		return model.SingleVehicle(ids64[0]), nil
	}
	return model.VehicleList(ids64...), nil
}

// splitInts accepts repeated keys as well as comma-separated values and
// ignores blank entries.
func splitInts(values []string) ([]int, error) {
	var out []int
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return query.Invalid("invalid number %q", numErr.Num)
		}
		return query.Invalid("invalid query parameters")
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, formatFieldError(fe))
	}
	return query.Invalid("%s", strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	name := paramName(fe.Field())
	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

var paramNames = map[string]string{
	"DateFrom": "dateFrom",
	"DateTo":   "dateTo",
	"GroupID":  "groupId",
	"GroupBy":  "groupBy",
}

func paramName(field string) string {
	if name, ok := paramNames[field]; ok {
		return name
	}
	return field
}
