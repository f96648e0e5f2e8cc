package handlers

import (
	"html/template"
	"net/http"
	"time"

	"github.com/ironclub/gym/internal/db"
	svc "github.com/ironclub/gym/internal/services"
)

type myBookingRow struct {
	ClassID   uint
	ClassName string
	Day       string
	StartTime string
	Code      string
	CheckedIn bool
}

type myRegRow struct {
	CompName string
	DateStr  string
	TeamName string
	Status   string
	Leader   bool
	RegID    string
}

// GET /my
func MyPage(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login?next=/my", http.StatusSeeOther)
			return
		}

		type bookingJoin struct {
			ClassID   uint
			Name      string
			Weekday   int
			StartTime string
			Code      string
			CheckInAt *time.Time
		}
		var joins []bookingJoin
		db.Conn().Table("attendees").
			Select(`attendees.class_id, attendees.code, attendees.check_in_at,
			        class_occurrences.name, class_occurrences.weekday, class_occurrences.start_time`).
			Joins("JOIN class_occurrences ON class_occurrences.id = attendees.class_id").
			Where("attendees.user_id = ?", user.ID).
			Order("class_occurrences.weekday asc, class_occurrences.start_time asc").
			Scan(&joins)

		bookings := make([]myBookingRow, 0, len(joins))
		for _, j := range joins {
			bookings = append(bookings, myBookingRow{
				ClassID:   j.ClassID,
				ClassName: j.Name,
				Day:       weekdayLabel(j.Weekday),
				StartTime: j.StartTime,
				Code:      j.Code,
				CheckedIn: j.CheckInAt != nil,
			})
		}

		regs, err := svc.UserRegistrations(db.Conn(), user.ID, user.NationalID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		regRows := make([]myRegRow, 0, len(regs))
		for _, reg := range regs {
			row := myRegRow{
				TeamName: reg.TeamName,
				Status:   reg.Status,
				Leader:   reg.UserID == user.ID,
				RegID:    reg.ID,
			}
			var comp struct {
				Name string
				Date time.Time
			}
			if err := db.Conn().Table("competitions").
				Select("name, date").
				Where("id = ?", reg.CompetitionID).
				Scan(&comp).Error; err == nil {
				row.CompName = comp.Name
				row.DateStr = fmtDate(comp.Date)
			}
			regRows = append(regRows, row)
		}

		membershipExpiry := ""
		if user.MembershipExpiresAt != nil {
			membershipExpiry = fmtDate(*user.MembershipExpiresAt)
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/my.tmpl")
		_ = view.ExecuteTemplate(w, "my.tmpl", map[string]any{
			"Title":            "My IronClub",
			"User":             user,
			"Bookings":         bookings,
			"Registrations":    regRows,
			"MembershipExpiry": membershipExpiry,
			"Flash":            MakeFlash(r, "", ""),
		})
	}
}
