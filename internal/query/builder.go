package query

import (
	"fmt"
	"strings"
	"time"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/timeutil"
)

type RecordKind int

const (
	EngineUsage RecordKind = iota
	Exceptions
	Transits
)

func (k RecordKind) String() string {
	switch k {
	case EngineUsage:
		return "engine_usage"
	case Exceptions:
		return "exceptions"
	case Transits:
		return "transits"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const InsufficientCriteriaMessage = "a full date range, a group or week days of interest are required"

type weekdayMapping int

const (
	// sundayZero targets EXTRACT(DOW ...): Sunday=0, Monday..Saturday unchanged.
	sundayZero weekdayMapping = iota
	// isoDays targets EXTRACT(ISODOW ...): Monday=1..Sunday=7, no remapping.
	isoDays
)

type columns struct {
	date      string
	vehicle   string
	group     string
	dayOfWeek string
	mapping   weekdayMapping
}

var kindColumns = map[RecordKind]columns{
	EngineUsage: {
		date:      "eu.usage_date",
		vehicle:   "eu.vehicle_id",
		group:     "eu.group_id",
		dayOfWeek: "EXTRACT(DOW FROM eu.usage_date)",
		mapping:   sundayZero,
	},
	Exceptions: {
		date:      "ve.exception_date",
		vehicle:   "ve.vehicle_id",
		group:     "v.group_id",
		dayOfWeek: "EXTRACT(ISODOW FROM ve.exception_date)",
		mapping:   isoDays,
	},
	Transits: {
		date:      "bt.transit_date",
		vehicle:   "bt.vehicle_id",
		group:     "v.group_id",
		dayOfWeek: "EXTRACT(DOW FROM bt.transit_date)",
		mapping:   sundayZero,
	},
}

type Condition struct {
	SQL  string
	Args []any
}

// Filter is the ANDed condition list for one record kind. The zero value has
// no conditions and is not sufficient to run a report.
type Filter struct {
	kind       RecordKind
	conditions []Condition
	sufficient bool
}

func (f Filter) Kind() RecordKind { return f.kind }

func (f Filter) Sufficient() bool { return f.sufficient }

func (f Filter) Conditions() []string {
	out := make([]string, 0, len(f.conditions))
	for _, c := range f.conditions {
		out = append(out, c.SQL)
	}
	return out
}

func (f Filter) Args() []any {
	var out []any
	for _, c := range f.conditions {
		out = append(out, c.Args...)
	}
	return out
}

// Where renders the conditions as a WHERE clause, or "" when there are none.
func (f Filter) Where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.Conditions(), " AND ")
}

// Build turns request criteria into parameterized conditions for kind. now is
// used to scope a weekday filter to the current week when no date bound was
// supplied at all.
func Build(kind RecordKind, c model.FilterCriteria, now time.Time) (Filter, error) {
	cols, ok := kindColumns[kind]
	if !ok {
		return Filter{}, fmt.Errorf("unknown record kind %s", kind)
	}

	f := Filter{kind: kind}

	// A lone bound is dropped on purpose: ranges are both-or-neither.
	if c.HasDateRange() {
		f.add(cols.date+" BETWEEN ? AND ?", timeutil.DayKey(*c.DateFrom), timeutil.DayKey(*c.DateTo))
	}

	if c.Vehicle != nil {
		if c.Vehicle.List {
			if len(c.Vehicle.IDs) == 0 {
				return Filter{}, Invalid("vehicle ID array must not be empty")
			}
			args := make([]any, 0, len(c.Vehicle.IDs))
			for _, id := range c.Vehicle.IDs {
				args = append(args, id)
			}
			f.add(fmt.Sprintf("%s IN (%s)", cols.vehicle, placeholderList(len(args))), args...)
		} else if len(c.Vehicle.IDs) > 0 {
			f.add(cols.vehicle+" = ?", c.Vehicle.IDs[0])
		}
	}

	if c.GroupID != nil {
		f.add(cols.group+" = ?", *c.GroupID)
	}

	days, err := normalizeWeekDays(c.WeekDays)
	if err != nil {
		return Filter{}, err
	}
	if len(days) > 0 {
		parts := make([]string, 0, len(days))
		args := make([]any, 0, len(days))
		for _, day := range days {
			parts = append(parts, cols.dayOfWeek+" = ?")
			args = append(args, nativeWeekday(day, cols.mapping))
		}
		f.add("("+strings.Join(parts, " OR ")+")", args...)

		if c.DateFrom == nil && c.DateTo == nil {
			monday, sunday := timeutil.CurrentWeekBounds(now)
			f.add(cols.date+" BETWEEN ? AND ?", timeutil.DayKey(monday), timeutil.DayKey(sunday))
		}
	}

	f.sufficient = c.HasDateRange() || c.GroupID != nil || len(days) > 0
	return f, nil
}

func (f *Filter) add(sql string, args ...any) {
	f.conditions = append(f.conditions, Condition{SQL: sql, Args: args})
}

func normalizeWeekDays(days []int) ([]int, error) {
	if len(days) == 0 {
		return nil, nil
	}
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, day := range days {
		if day < 1 || day > 7 {
			return nil, Invalid("days must be between 1 and 7")
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, day)
	}
	return out, nil
}

func nativeWeekday(day int, mapping weekdayMapping) int {
	if mapping == sundayZero && day == 7 {
		return 0
	}
	return day
}

func placeholderList(n int) string {
	builder := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
	}
	return builder.String()
}
