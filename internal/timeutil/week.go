package timeutil

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ISOWeekKey formats the ISO-8601 week of t as "<year>-W<ww>". The date is
// shifted to the Thursday of its week and that Thursday decides the year.
func ISOWeekKey(t time.Time) string {
	year, week := isoWeek(t)
	return fmt.Sprintf("%d-W%02d", year, week)
}

func isoWeek(t time.Time) (int, int) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	anchor := day.AddDate(0, 0, 4-ISOWeekday(day))
	yearStart := time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	dayOfYear := int(anchor.Sub(yearStart).Hours()/24) + 1
	return anchor.Year(), (dayOfYear + 6) / 7
}

func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseDay parses a YYYY-MM-DD calendar day in UTC.
func ParseDay(text string) (time.Time, error) {
	return time.Parse(dayLayout, text)
}

// CurrentWeekBounds returns Monday 00:00:00 and Sunday 23:59:59 of the week
// containing now, in now's location.
func CurrentWeekBounds(now time.Time) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monday := midnight.AddDate(0, 0, 1-ISOWeekday(midnight))
	sunday := time.Date(monday.Year(), monday.Month(), monday.Day()+6, 23, 59, 59, 0, now.Location())
	return monday, sunday
}
