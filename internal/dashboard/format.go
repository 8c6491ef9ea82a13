// ABOUTME: French display helpers shared by the dashboards
// ABOUTME: Relative times through go-humanize with French magnitudes

package dashboard

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

var frenchMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "à l'instant", DivBy: time.Second},
	{D: 2 * time.Second, Format: "%s 1 seconde", DivBy: 1},
	{D: time.Minute, Format: "%s %d secondes", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "%s 1 minute", DivBy: 1},
	{D: time.Hour, Format: "%s %d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s 1 heure", DivBy: 1},
	{D: humanize.Day, Format: "%s %d heures", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s 1 jour", DivBy: 1},
	{D: humanize.Week, Format: "%s %d jours", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s 1 semaine", DivBy: 1},
	{D: humanize.Month, Format: "%s %d semaines", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s 1 mois", DivBy: 1},
	{D: humanize.Year, Format: "%s %d mois", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "%s 1 an", DivBy: 1},
	{D: humanize.LongTime, Format: "%s %d ans", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "%s longtemps", DivBy: 1},
}

// RelTime renders t relative to now in French, e.g. "il y a 3 jours"
func RelTime(t, now time.Time) string {
	return humanize.CustomRelTime(t, now, "il y a", "dans", frenchMagnitudes)
}

// Since renders a backend timestamp relative to now, or the raw value when
// it cannot be parsed
func Since(raw string, now time.Time) string {
	t, ok := model.ParseTime(raw)
	if !ok {
		return raw
	}
	return RelTime(t, now)
}

// Grade formats an average out of 20 with a French decimal comma
func Grade(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1) + "/20"
}

// YesNo is "Oui" or "Non"
func YesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}
