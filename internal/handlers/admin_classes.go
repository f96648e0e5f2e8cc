package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

type adminClassRow struct {
	models.ClassOccurrence
	Day string
}

// GET /admin/classes
func AdminClasses(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var classes []models.ClassOccurrence
		if err := db.Conn().Order("weekday asc, start_time asc").Find(&classes).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}
		rows := make([]adminClassRow, 0, len(classes))
		for _, c := range classes {
			rows = append(rows, adminClassRow{ClassOccurrence: c, Day: weekdayLabel(c.Weekday)})
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles("templates/pages/admin/classes.tmpl"); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = view.ExecuteTemplate(w, "admin/classes.tmpl", map[string]any{
			"Title":   "Admin • Classes",
			"Classes": rows,
			"Flash":   MakeFlash(r, "", ""),
		})
	}
}

// GET /admin/classes/new
func AdminNewClass(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/class_form.tmpl")
		_ = view.ExecuteTemplate(w, "admin/class_form.tmpl", map[string]any{
			"Title": "Admin • New Class",
			"Class": models.ClassOccurrence{Capacity: 20},
			"IsNew": true,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

func parseClassForm(r *http.Request) (models.ClassOccurrence, string) {
	var c models.ClassOccurrence

	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.InstructorName = strings.TrimSpace(r.FormValue("instructor"))
	c.StartTime = strings.TrimSpace(r.FormValue("start_time"))
	if c.Name == "" || c.StartTime == "" {
		return c, "missing"
	}
	if _, err := time.Parse("15:04", c.StartTime); err != nil {
		return c, "missing"
	}

	weekday, err := strconv.Atoi(r.FormValue("weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		return c, "missing"
	}
	c.Weekday = weekday

	capacity, err := strconv.Atoi(r.FormValue("capacity"))
	if err != nil || capacity < 0 {
		return c, "missing"
	}
	c.Capacity = capacity
	c.Unlimited = r.FormValue("unlimited") == "on"
	c.Special = r.FormValue("special") == "on"

	if ds := strings.TrimSpace(r.FormValue("special_date")); ds != "" {
		d, err := time.ParseInLocation("2006-01-02", ds, tzCaracas)
		if err != nil {
			return c, "missing"
		}
		c.SpecialDate = &d
	}
	return c, ""
}

// POST /admin/classes
func AdminCreateClass(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, errKey := parseClassForm(r)
	if errKey != "" {
		http.Redirect(w, r, "/admin/classes/new?error="+errKey, http.StatusSeeOther)
		return
	}
	if err := db.Conn().Create(&c).Error; err != nil {
		http.Error(w, "save class failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/classes?ok=class_created", http.StatusSeeOther)
}

// GET /admin/classes/{id}/edit
func AdminEditClassForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		var c models.ClassOccurrence
		if err := db.Conn().First(&c, id).Error; err != nil {
			http.Redirect(w, r, "/admin/classes?error=class_not_found", http.StatusSeeOther)
			return
		}
		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/class_form.tmpl")
		_ = view.ExecuteTemplate(w, "admin/class_form.tmpl", map[string]any{
			"Title": "Admin • Edit Class",
			"Class": c,
			"IsNew": false,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/classes/{id}
func AdminUpdateClass(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var c models.ClassOccurrence
	if err := db.Conn().First(&c, id).Error; err != nil {
		http.Redirect(w, r, "/admin/classes?error=class_not_found", http.StatusSeeOther)
		return
	}

	upd, errKey := parseClassForm(r)
	if errKey != "" {
		http.Redirect(w, r, "/admin/classes/"+strconv.Itoa(id)+"/edit?error="+errKey, http.StatusSeeOther)
		return
	}

	// BookedCount is owned by the booking transactions; never touched here.
	c.Name = upd.Name
	c.InstructorName = upd.InstructorName
	c.StartTime = upd.StartTime
	c.Weekday = upd.Weekday
	c.Capacity = upd.Capacity
	c.Unlimited = upd.Unlimited
	c.Special = upd.Special
	c.SpecialDate = upd.SpecialDate
	if err := db.Conn().Save(&c).Error; err != nil {
		http.Error(w, "save class failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/classes?ok=saved", http.StatusSeeOther)
}

// POST /admin/classes/{id}/delete
func AdminDeleteClass(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var attendees int64
	_ = db.Conn().Model(&models.Attendee{}).Where("class_id = ?", id).Count(&attendees).Error
	if attendees > 0 {
		http.Redirect(w, r, "/admin/classes?error=has_attendees", http.StatusSeeOther)
		return
	}
	if err := db.Conn().Delete(&models.ClassOccurrence{}, id).Error; err != nil {
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/classes?ok=class_deleted", http.StatusSeeOther)
}
