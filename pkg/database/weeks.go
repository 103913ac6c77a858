package database

import (
	"fmt"
	"time"
)

// WeekStart renvoie le début (00:00 UTC) de la période hebdomadaire qui se termine
// le jour weekEnd et contient t. Avec weekEnd = lundi, les semaines vont du mardi au lundi.
func WeekStart(t time.Time, weekEnd time.Weekday) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := (weekEnd + 1) % 7
	back := (int(day.Weekday()) - int(start) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// FormatWeek rend une semaine au format "YYYY-MM-DD".
func FormatWeek(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}
