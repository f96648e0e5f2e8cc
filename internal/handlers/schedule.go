package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/metrics"
	"github.com/ironclub/gym/internal/models"
	"github.com/ironclub/gym/internal/notify"
	svc "github.com/ironclub/gym/internal/services"
)

type scheduleSlot struct {
	ID             uint
	Name           string
	StartTime      string
	InstructorName string
	Capacity       int
	BookedCount    int
	Unlimited      bool
	Left           int
	IsFull         bool
	Special        bool
	SpecialDateStr string
	Mine           bool
}

type scheduleDay struct {
	Label string
	Slots []scheduleSlot
}

// GET /schedule
func Schedule(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		var classes []models.ClassOccurrence
		if err := db.Conn().Order("weekday asc, start_time asc").Find(&classes).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		mine := map[uint]bool{}
		if user != nil {
			var classIDs []uint
			_ = db.Conn().Model(&models.Attendee{}).
				Where("user_id = ?", user.ID).
				Pluck("class_id", &classIDs).Error
			for _, id := range classIDs {
				mine[id] = true
			}
		}

		days := make([]scheduleDay, 0, 7)
		byDay := map[int][]scheduleSlot{}
		for _, c := range classes {
			left := c.Capacity - c.BookedCount
			if left < 0 {
				left = 0
			}
			slot := scheduleSlot{
				ID:             c.ID,
				Name:           c.Name,
				StartTime:      c.StartTime,
				InstructorName: c.InstructorName,
				Capacity:       c.Capacity,
				BookedCount:    c.BookedCount,
				Unlimited:      c.Unlimited,
				Left:           left,
				IsFull:         !c.Unlimited && left == 0,
				Special:        c.Special,
				Mine:           mine[c.ID],
			}
			if c.SpecialDate != nil {
				slot.SpecialDateStr = fmtDate(*c.SpecialDate)
			}
			byDay[c.Weekday] = append(byDay[c.Weekday], slot)
		}
		// Monday-first display order
		for i := 1; i <= 7; i++ {
			d := i % 7
			if slots, ok := byDay[d]; ok {
				days = append(days, scheduleDay{Label: weekdayLabel(d), Slots: slots})
			}
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/schedule.tmpl")
		_ = view.ExecuteTemplate(w, "schedule.tmpl", map[string]any{
			"Title": "Class Schedule",
			"Days":  days,
			"User":  user,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /schedule/book
func BookSubmit(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		user := currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login?next=/schedule", http.StatusSeeOther)
			return
		}
		classID, _ := strconv.Atoi(r.FormValue("class_id"))
		if classID <= 0 {
			http.Redirect(w, r, "/schedule?error=class_not_found", http.StatusSeeOther)
			return
		}

		att, err := svc.BookClass(uint(classID), *user)
		if err != nil {
			switch {
			case errors.Is(err, svc.ErrClassNotFound):
				metrics.BookingRejections.WithLabelValues("not_found").Inc()
				http.Redirect(w, r, "/schedule?error=class_not_found", http.StatusSeeOther)
			case errors.Is(err, svc.ErrAlreadyBooked):
				metrics.BookingRejections.WithLabelValues("already_booked").Inc()
				http.Redirect(w, r, "/schedule?error=already_booked", http.StatusSeeOther)
			case errors.Is(err, svc.ErrClassFull):
				metrics.BookingRejections.WithLabelValues("full").Inc()
				http.Redirect(w, r, "/schedule?error=class_full", http.StatusSeeOther)
			default:
				http.Error(w, "booking failed", http.StatusInternalServerError)
			}
			return
		}
		metrics.Bookings.Inc()

		var class models.ClassOccurrence
		_ = db.Conn().First(&class, classID).Error
		notify.BookingConfirmed(user.TelegramChatID, class.Name, att.Code)

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/booking_done.tmpl")
		_ = view.ExecuteTemplate(w, "booking_done.tmpl", map[string]any{
			"Title":     "Booking Confirmed",
			"User":      user,
			"ClassName": class.Name,
			"Day":       weekdayLabel(class.Weekday),
			"StartTime": class.StartTime,
			"Code":      att.Code,
			"QRURL":     "/qr/" + att.Code + ".png",
		})
	}
}

// POST /schedule/cancel
func CancelSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	classID, _ := strconv.Atoi(r.FormValue("class_id"))
	if classID <= 0 {
		http.Redirect(w, r, "/my?error=class_not_found", http.StatusSeeOther)
		return
	}

	if err := svc.CancelBooking(uint(classID), user.ID); err != nil {
		http.Error(w, "unable to cancel: "+err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.Cancellations.Inc()

	var class models.ClassOccurrence
	if err := db.Conn().First(&class, classID).Error; err == nil {
		notify.BookingCanceled(user.TelegramChatID, class.Name)
	}
	http.Redirect(w, r, "/my?ok=canceled", http.StatusSeeOther)
}
