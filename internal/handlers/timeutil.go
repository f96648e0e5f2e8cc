package handlers

import "time"

// America/Caracas for all display formatting
var tzCaracas *time.Location

func init() {
	loc, err := time.LoadLocation("America/Caracas")
	if err != nil {
		tzCaracas = time.FixedZone("VET", -4*3600)
		return
	}
	tzCaracas = loc
}

var weekdayLabels = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func weekdayLabel(d int) string {
	if d < 0 || d > 6 {
		return ""
	}
	return weekdayLabels[d]
}

// Date-only friendly string, e.g. "Mon, 02 Jan 2006"
func fmtDate(d time.Time) string {
	return d.In(tzCaracas).Format("Mon, 02 Jan 2006")
}

func fmtDateTime(d time.Time) string {
	return d.In(tzCaracas).Format("Mon, 02 Jan 2006 15:04")
}
