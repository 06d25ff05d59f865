package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/timeutil"
)

// Indexed by time.Weekday, Sunday first.
var (
	frenchDays      = [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}
	frenchShortDays = [...]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}
	frenchMonths    = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

func DayLabel(t time.Time) string {
	return frenchDays[t.Weekday()]
}

func periodKey(t time.Time, groupBy model.GroupBy) string {
	switch groupBy {
	case model.GroupByWeek:
		return timeutil.ISOWeekKey(t)
	case model.GroupByMonth:
		return timeutil.MonthKey(t)
	default:
		return timeutil.DayKey(t)
	}
}

// displayName renders the chart label of a bucket. first is the date of the
// first row that opened the bucket.
func displayName(key string, first time.Time, groupBy model.GroupBy) string {
	switch groupBy {
	case model.GroupByWeek:
		if idx := strings.LastIndex(key, "-W"); idx >= 0 {
			if week, err := strconv.Atoi(key[idx+2:]); err == nil {
				return fmt.Sprintf("Semaine %d", week)
			}
		}
		return key
	case model.GroupByMonth:
		return fmt.Sprintf("%s %d", frenchMonths[first.Month()-1], first.Year())
	default:
		return fmt.Sprintf("%s %d", frenchShortDays[first.Weekday()], first.Day())
	}
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
