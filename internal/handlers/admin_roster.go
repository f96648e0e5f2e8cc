package handlers

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

type rosterRow struct {
	Code       string
	MemberName string
	Email      string
	JoinedStr  string
	CheckInStr string
}

type rosterJoin struct {
	Code      string
	Name      string
	Email     string
	CreatedAt time.Time
	CheckInAt *time.Time
}

// ---------- Admin Roster (HTML) ----------

// GET /admin/roster?class_id=...
func AdminRoster(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var classes []models.ClassOccurrence
		_ = db.Conn().Order("weekday asc, start_time asc").Find(&classes).Error
		classRows := make([]adminClassRow, 0, len(classes))
		for _, c := range classes {
			classRows = append(classRows, adminClassRow{ClassOccurrence: c, Day: weekdayLabel(c.Weekday)})
		}

		classIDStr := r.URL.Query().Get("class_id")
		var rows []rosterRow
		var selected *adminClassRow
		if classID, err := strconv.Atoi(classIDStr); err == nil && classID > 0 {
			for i := range classRows {
				if classRows[i].ID == uint(classID) {
					selected = &classRows[i]
					break
				}
			}
			rows = rosterForClass(uint(classID))
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/roster.tmpl")
		_ = view.ExecuteTemplate(w, "admin/roster.tmpl", map[string]any{
			"Title":    "Admin • Roster",
			"Classes":  classRows,
			"Selected": selected,
			"Rows":     rows,
			"ClassID":  classIDStr,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

func rosterForClass(classID uint) []rosterRow {
	var joins []rosterJoin
	db.Conn().Table("attendees").
		Select("attendees.code, attendees.name, attendees.email, attendees.created_at, attendees.check_in_at").
		Where("attendees.class_id = ?", classID).
		Order("attendees.created_at asc").
		Scan(&joins)

	rows := make([]rosterRow, 0, len(joins))
	for _, j := range joins {
		row := rosterRow{
			Code:       j.Code,
			MemberName: j.Name,
			Email:      j.Email,
			JoinedStr:  fmtDateTime(j.CreatedAt),
		}
		if j.CheckInAt != nil {
			row.CheckInStr = fmtDateTime(*j.CheckInAt)
		}
		rows = append(rows, row)
	}
	return rows
}

// GET /admin/roster.csv?class_id=...
func AdminRosterCSV(w http.ResponseWriter, r *http.Request) {
	classID, err := strconv.Atoi(r.URL.Query().Get("class_id"))
	if err != nil || classID <= 0 {
		http.Error(w, "missing class_id", http.StatusBadRequest)
		return
	}
	var class models.ClassOccurrence
	if err := db.Conn().First(&class, classID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="roster-%d.csv"`, class.ID))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"code", "name", "email", "joined_at", "checked_in_at"})
	for _, row := range rosterForClass(class.ID) {
		_ = cw.Write([]string{row.Code, row.MemberName, row.Email, row.JoinedStr, row.CheckInStr})
	}
	cw.Flush()
}

// ---------- Admin Occupancy ----------

type occupancyRow struct {
	ClassID     uint
	ClassName   string
	Day         string
	StartTime   string
	Capacity    int
	Unlimited   bool
	BookedCount int
	Attendees   int64
	CheckedIn   int64
	FillPercent int
	Drift       bool // counter out of sync with attendee rows
}

// GET /admin/occupancy
//
// One GROUP BY round-trip per page load instead of a COUNT query per class.
// The Drift column flags any class whose counter diverged from its rows.
func AdminOccupancy(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var classes []models.ClassOccurrence
		if err := db.Conn().Order("weekday asc, start_time asc").Find(&classes).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}

		aggs, err := occupancyAggregation(db.Conn())
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}

		rows := make([]occupancyRow, 0, len(classes))
		for _, c := range classes {
			a := aggs[c.ID]
			row := occupancyRow{
				ClassID:     c.ID,
				ClassName:   c.Name,
				Day:         weekdayLabel(c.Weekday),
				StartTime:   c.StartTime,
				Capacity:    c.Capacity,
				Unlimited:   c.Unlimited,
				BookedCount: c.BookedCount,
				Attendees:   a.Attendees,
				CheckedIn:   a.CheckedIn,
				Drift:       int64(c.BookedCount) != a.Attendees,
			}
			if !c.Unlimited && c.Capacity > 0 {
				row.FillPercent = int(a.Attendees * 100 / int64(c.Capacity))
			}
			rows = append(rows, row)
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/occupancy.tmpl")
		_ = view.ExecuteTemplate(w, "admin/occupancy.tmpl", map[string]any{
			"Title": "Admin • Occupancy",
			"Rows":  rows,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}
