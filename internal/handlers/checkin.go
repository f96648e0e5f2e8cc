package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

type checkinRow struct {
	Code       string
	MemberName string
	ClassName  string
	Day        string
	StartTime  string
	CheckInAt  *time.Time
	CheckInStr string
}

type checkinVM struct {
	Title string
	User  *models.User
	Code  string
	Att   *checkinRow
	Flash *Flash
}

// GET /checkin
func CheckinForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))

		var row *checkinRow
		errMsg := ""

		if code != "" {
			type join struct {
				Code      string
				Name      string
				ClassName string
				Weekday   int
				StartTime string
				CheckInAt *time.Time
			}
			var j join
			if err := db.Conn().Table("attendees a").
				Select(`a.code, a.name, a.check_in_at,
						class_occurrences.name as class_name,
						class_occurrences.weekday,
						class_occurrences.start_time`).
				Joins("JOIN class_occurrences ON class_occurrences.id = a.class_id").
				Where("a.code = ?", code).
				Scan(&j).Error; err == nil && j.Code != "" {
				row = &checkinRow{
					Code:       j.Code,
					MemberName: j.Name,
					ClassName:  j.ClassName,
					Day:        weekdayLabel(j.Weekday),
					StartTime:  j.StartTime,
					CheckInAt:  j.CheckInAt,
				}
				if j.CheckInAt != nil {
					row.CheckInStr = fmtDateTime(*j.CheckInAt)
				}
			}
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/checkin.tmpl")
		_ = view.ExecuteTemplate(w, "admin/checkin.tmpl", checkinVM{
			Title: "Admin • Check-in",
			User:  currentUser(r),
			Code:  code,
			Att:   row,
			Flash: MakeFlash(r, errMsg, ""),
		})
	}
}

// POST /checkin
func CheckinConfirm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		code := strings.TrimSpace(r.FormValue("code"))
		if code == "" {
			http.Redirect(w, r, "/checkin?error=invalid_code", http.StatusSeeOther)
			return
		}

		var att models.Attendee
		if err := db.Conn().Where("code = ?", code).First(&att).Error; err != nil || att.ID == 0 {
			http.Redirect(w, r, "/checkin?error=code_not_found", http.StatusSeeOther)
			return
		}
		if att.CheckInAt != nil {
			http.Redirect(w, r, "/checkin?error=already_checkedin&code="+code, http.StatusSeeOther)
			return
		}

		now := time.Now()
		att.CheckInAt = &now
		if err := db.Conn().Save(&att).Error; err != nil {
			http.Redirect(w, r, "/checkin?error=invalid_code&code="+code, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/checkin?ok=checked_in&code="+code, http.StatusSeeOther)
	}
}
