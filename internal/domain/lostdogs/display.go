package lostdogs

import (
	"fmt"
	"time"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// FormatAge: "2 años y 3 meses", "1 año", "5 meses".
func FormatAge(years, months int) string {
	switch {
	case years > 0 && months > 0:
		return plural(years, "año", "años") + " y " + plural(months, "mes", "meses")
	case years > 0:
		return plural(years, "año", "años")
	default:
		return plural(months, "mes", "meses")
	}
}

// TimeSince agrupa el tiempo transcurrido: minutos u horas el mismo día,
// días (<30), meses de 30 días (<365), y años más meses después.
func TimeSince(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))

	switch {
	case days == 0:
		hours := int(d / time.Hour)
		if hours == 0 {
			return plural(int(d/time.Minute), "minuto", "minutos")
		}
		return plural(hours, "hora", "horas")
	case days < 30:
		return plural(days, "día", "días")
	case days < 365:
		return plural(days/30, "mes", "meses")
	default:
		years := days / 365
		months := (days % 365) / 30
		if months == 0 {
			return plural(years, "año", "años")
		}
		return plural(years, "año", "años") + " y " + plural(months, "mes", "meses")
	}
}
