package handlers

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

// GET /admin/competitions
func AdminCompetitions(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var comps []models.Competition
		if err := db.Conn().Order("date desc").Find(&comps).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}
		rows := make([]compRow, 0, len(comps))
		for _, c := range comps {
			rows = append(rows, toCompRow(c))
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/competitions.tmpl")
		_ = view.ExecuteTemplate(w, "admin/competitions.tmpl", map[string]any{
			"Title":        "Admin • Competitions",
			"Competitions": rows,
			"Flash":        MakeFlash(r, "", ""),
		})
	}
}

// GET /admin/competitions/new
func AdminNewCompetition(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/competition_form.tmpl")
		_ = view.ExecuteTemplate(w, "admin/competition_form.tmpl", map[string]any{
			"Title": "Admin • New Competition",
			"Comp":  models.Competition{Capacity: 50, Currency: "USD"},
			"IsNew": true,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

func parseCompetitionForm(r *http.Request) (models.Competition, string) {
	var c models.Competition

	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.Description = strings.TrimSpace(r.FormValue("description"))
	if c.Name == "" {
		return c, "missing"
	}

	d, err := time.ParseInLocation("2006-01-02", r.FormValue("date"), tzCaracas)
	if err != nil {
		return c, "missing"
	}
	c.Date = d

	c.Type = r.FormValue("type")
	if c.Type != "individual" && c.Type != "team" {
		return c, "missing"
	}
	if c.Type == "team" {
		size, err := strconv.Atoi(r.FormValue("team_size"))
		if err != nil || size < 2 {
			return c, "missing"
		}
		c.TeamSize = size
	}

	c.Category = r.FormValue("category")
	switch c.Category {
	case "male", "female", "mixed":
	default:
		return c, "missing"
	}

	capacity, err := strconv.Atoi(r.FormValue("capacity"))
	if err != nil || capacity < 0 {
		return c, "missing"
	}
	c.Capacity = capacity
	c.Unlimited = r.FormValue("unlimited") == "on"

	c.Paid = r.FormValue("paid") == "on"
	if c.Paid {
		price, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil || price <= 0 {
			return c, "missing"
		}
		c.Price = price
		c.Currency = strings.ToUpper(strings.TrimSpace(r.FormValue("currency")))
		if c.Currency == "" {
			return c, "missing"
		}
	}
	return c, ""
}

// POST /admin/competitions
func AdminCreateCompetition(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, errKey := parseCompetitionForm(r)
	if errKey != "" {
		http.Redirect(w, r, "/admin/competitions/new?error="+errKey, http.StatusSeeOther)
		return
	}
	if err := db.Conn().Create(&c).Error; err != nil {
		http.Error(w, "save competition failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/competitions?ok=comp_created", http.StatusSeeOther)
}

// GET /admin/competitions/{id}/edit
func AdminEditCompetitionForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		var c models.Competition
		if err := db.Conn().First(&c, id).Error; err != nil {
			http.Redirect(w, r, "/admin/competitions?error=comp_not_found", http.StatusSeeOther)
			return
		}
		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/competition_form.tmpl")
		_ = view.ExecuteTemplate(w, "admin/competition_form.tmpl", map[string]any{
			"Title": "Admin • Edit Competition",
			"Comp":  c,
			"IsNew": false,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/competitions/{id}
func AdminUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var c models.Competition
	if err := db.Conn().First(&c, id).Error; err != nil {
		http.Redirect(w, r, "/admin/competitions?error=comp_not_found", http.StatusSeeOther)
		return
	}

	upd, errKey := parseCompetitionForm(r)
	if errKey != "" {
		http.Redirect(w, r, "/admin/competitions/"+strconv.Itoa(id)+"/edit?error="+errKey, http.StatusSeeOther)
		return
	}

	// RegisteredCount is owned by the registration transaction.
	c.Name = upd.Name
	c.Description = upd.Description
	c.Date = upd.Date
	c.Type = upd.Type
	c.TeamSize = upd.TeamSize
	c.Category = upd.Category
	c.Capacity = upd.Capacity
	c.Unlimited = upd.Unlimited
	c.Paid = upd.Paid
	c.Price = upd.Price
	c.Currency = upd.Currency
	if err := db.Conn().Save(&c).Error; err != nil {
		http.Error(w, "save competition failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/competitions?ok=saved", http.StatusSeeOther)
}

type adminRegRow struct {
	ID         string
	CreatedStr string
	LeaderName string
	LeaderNat  string
	Phone      string
	TeamName   string
	Status     string
	Members    []models.TeamMember
}

// GET /admin/competitions/{id}/registrations
func AdminCompetitionRegistrations(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		var comp models.Competition
		if err := db.Conn().First(&comp, id).Error; err != nil {
			http.Redirect(w, r, "/admin/competitions?error=comp_not_found", http.StatusSeeOther)
			return
		}

		var regs []models.CompetitionRegistration
		if err := db.Conn().Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
			Where("competition_id = ?", comp.ID).
			Order("created_at asc").
			Find(&regs).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}

		rows := make([]adminRegRow, 0, len(regs))
		for _, reg := range regs {
			rows = append(rows, adminRegRow{
				ID:         reg.ID,
				CreatedStr: fmtDateTime(reg.CreatedAt),
				LeaderName: reg.LeaderName,
				LeaderNat:  reg.LeaderNationalID,
				Phone:      reg.LeaderPhone,
				TeamName:   reg.TeamName,
				Status:     reg.Status,
				Members:    reg.Members,
			})
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/registrations.tmpl")
		_ = view.ExecuteTemplate(w, "admin/registrations.tmpl", map[string]any{
			"Title":         "Admin • Registrations",
			"Comp":          toCompRow(comp),
			"Registrations": rows,
			"Flash":         MakeFlash(r, "", ""),
		})
	}
}

// GET /admin/competitions/{id}/registrations.csv
func AdminCompetitionRegistrationsCSV(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var comp models.Competition
	if err := db.Conn().First(&comp, id).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	var regs []models.CompetitionRegistration
	if err := db.Conn().Preload("Members").
		Where("competition_id = ?", comp.ID).
		Order("created_at asc").
		Find(&regs).Error; err != nil {
		http.Error(w, "db error", 500)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="registrations-%d.csv"`, comp.ID))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"registered_at", "team", "role", "name", "national_id", "phone", "status"})
	for _, reg := range regs {
		created := reg.CreatedAt.In(tzCaracas).Format("2006-01-02 15:04")
		_ = cw.Write([]string{created, reg.TeamName, "leader", reg.LeaderName, reg.LeaderNationalID, reg.LeaderPhone, reg.Status})
		for _, m := range reg.Members {
			_ = cw.Write([]string{created, reg.TeamName, "member", m.Name, m.NationalID, "", reg.Status})
		}
	}
	cw.Flush()
}
