package handlers

import (
	"html/template"
	"net/http"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

type memberRow struct {
	ID         uint
	Name       string
	Email      string
	NationalID string
	Phone      string
	Status     string
	ExpiresStr string
	JoinedStr  string
}

// GET /admin/members
func AdminMembers(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")

		q := db.Conn().Where("role = ?", "member").Order("name asc")
		if status == "active" || status == "inactive" || status == "pending_payment" {
			q = q.Where("membership_status = ?", status)
		}
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}

		rows := make([]memberRow, 0, len(users))
		for _, u := range users {
			row := memberRow{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				NationalID: u.NationalID,
				Phone:      u.Phone,
				Status:     u.MembershipStatus,
				JoinedStr:  fmtDate(u.CreatedAt),
			}
			if u.MembershipExpiresAt != nil {
				row.ExpiresStr = fmtDate(*u.MembershipExpiresAt)
			}
			rows = append(rows, row)
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/admin/members.tmpl")
		_ = view.ExecuteTemplate(w, "admin/members.tmpl", map[string]any{
			"Title":  "Admin • Members",
			"Rows":   rows,
			"Status": status,
			"Flash":  MakeFlash(r, "", ""),
		})
	}
}
