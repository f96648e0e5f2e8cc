package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/metrics"
	"github.com/ironclub/gym/internal/models"
	"github.com/ironclub/gym/internal/notify"
	svc "github.com/ironclub/gym/internal/services"
)

type compRow struct {
	ID        uint
	Name      string
	DateStr   string
	Type      string
	TeamSize  int
	Category  string
	Capacity  int
	Count     int
	Left      int
	Unlimited bool
	IsFull    bool
	Paid      bool
	Price     float64
	Currency  string
}

func toCompRow(c models.Competition) compRow {
	left := c.Capacity - c.RegisteredCount
	if left < 0 {
		left = 0
	}
	return compRow{
		ID:        c.ID,
		Name:      c.Name,
		DateStr:   fmtDate(c.Date),
		Type:      c.Type,
		TeamSize:  c.TeamSize,
		Category:  c.Category,
		Capacity:  c.Capacity,
		Count:     c.RegisteredCount,
		Left:      left,
		Unlimited: c.Unlimited,
		IsFull:    !c.Unlimited && left == 0,
		Paid:      c.Paid,
		Price:     c.Price,
		Currency:  c.Currency,
	}
}

// GET /competitions
func Competitions(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var comps []models.Competition
		if err := db.Conn().Order("date asc").Find(&comps).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		rows := make([]compRow, 0, len(comps))
		for _, c := range comps {
			rows = append(rows, toCompRow(c))
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/competitions.tmpl")
		_ = view.ExecuteTemplate(w, "competitions.tmpl", map[string]any{
			"Title":        "Competitions",
			"User":         currentUser(r),
			"Competitions": rows,
			"Flash":        MakeFlash(r, "", ""),
		})
	}
}

// GET /competitions/{id}/register
func CompetitionRegisterForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		comp, ok := loadCompetition(w, r)
		if !ok {
			return
		}
		renderCompetitionForm(w, r, t, comp, user, "")
	}
}

// POST /competitions/{id}/register
func CompetitionRegisterSubmit(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		user := currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		comp, ok := loadCompetition(w, r)
		if !ok {
			return
		}

		in := svc.RegistrationInput{
			CompetitionID: comp.ID,
			User:          *user,
			Phone:         r.FormValue("phone"),
			TeamName:      r.FormValue("team_name"),
		}
		names := r.Form["member_name"]
		natIDs := r.Form["member_national_id"]
		for i := range names {
			name := strings.TrimSpace(names[i])
			nat := ""
			if i < len(natIDs) {
				nat = strings.TrimSpace(natIDs[i])
			}
			if name == "" && nat == "" {
				continue
			}
			in.Members = append(in.Members, svc.MemberInput{Name: name, NationalID: nat})
		}

		reg, err := svc.RegisterForCompetition(in)
		if err != nil {
			var tsErr *svc.TeamSizeError
			var conflict *svc.IdentityConflictError
			switch {
			case errors.As(err, &tsErr):
				metrics.RegistrationRejections.WithLabelValues("team_size").Inc()
				renderCompetitionForm(w, r, t, comp, user, tsErr.Error())
			case errors.As(err, &conflict):
				metrics.RegistrationRejections.WithLabelValues("identity").Inc()
				renderCompetitionForm(w, r, t, comp, user, conflict.Error())
			case errors.Is(err, svc.ErrInvalidNationalID):
				metrics.RegistrationRejections.WithLabelValues("validation").Inc()
				renderCompetitionForm(w, r, t, comp, user, "every participant needs a valid national id")
			case errors.Is(err, svc.ErrCompetitionFull):
				metrics.RegistrationRejections.WithLabelValues("full").Inc()
				http.Redirect(w, r, "/competitions?error=comp_full", http.StatusSeeOther)
			case errors.Is(err, svc.ErrCompetitionNotFound):
				http.Redirect(w, r, "/competitions?error=comp_not_found", http.StatusSeeOther)
			default:
				http.Error(w, "registration failed", http.StatusInternalServerError)
			}
			return
		}
		metrics.Registrations.Inc()
		notify.RegistrationReceived(user.TelegramChatID, comp.Name, reg.Status)

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/registration_done.tmpl")
		_ = view.ExecuteTemplate(w, "registration_done.tmpl", map[string]any{
			"Title":          "Registration Result",
			"User":           user,
			"CompName":       comp.Name,
			"DateStr":        fmtDate(comp.Date),
			"Status":         reg.Status,
			"PendingPayment": reg.Status == "pending_payment",
			"Price":          comp.Price,
			"Currency":       comp.Currency,
			"PayURL":         "/payments/report?purpose=competition&registration_id=" + reg.ID,
		})
	}
}

func loadCompetition(w http.ResponseWriter, r *http.Request) (models.Competition, bool) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var comp models.Competition
	if id <= 0 {
		http.Redirect(w, r, "/competitions?error=comp_not_found", http.StatusSeeOther)
		return comp, false
	}
	if err := db.Conn().First(&comp, id).Error; err != nil {
		http.Redirect(w, r, "/competitions?error=comp_not_found", http.StatusSeeOther)
		return comp, false
	}
	return comp, true
}

func renderCompetitionForm(w http.ResponseWriter, r *http.Request, t *template.Template, comp models.Competition, user *models.User, errStr string) {
	memberSlots := 0
	if comp.Type == "team" && comp.TeamSize > 1 {
		memberSlots = comp.TeamSize - 1
	}
	slots := make([]int, memberSlots)
	for i := range slots {
		slots[i] = i + 1
	}

	view, _ := t.Clone()
	_, _ = view.ParseFiles("templates/pages/competition_register.tmpl")
	_ = view.ExecuteTemplate(w, "competition_register.tmpl", map[string]any{
		"Title":       fmt.Sprintf("Register • %s", comp.Name),
		"User":        user,
		"Comp":        toCompRow(comp),
		"MemberSlots": slots,
		"Flash":       MakeFlash(r, errStr, ""),
	})
}
