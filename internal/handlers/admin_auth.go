package handlers

import (
	"html/template"
	"net/http"

	"github.com/ironclub/gym/internal/auth"
	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
	svc "github.com/ironclub/gym/internal/services"
)

// GET /admin/login
func AdminLoginForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles("templates/pages/admin/login.tmpl"); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = view.ExecuteTemplate(w, "admin/login.tmpl", map[string]any{
			"Title": "Admin • Login",
			"Next":  r.URL.Query().Get("next"),
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/login
func AdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	email, _ := svc.NormEmail(r.FormValue("email"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	var user models.User
	if err := db.Conn().Where("email = ? AND role = ?", email, "admin").First(&user).Error; err != nil ||
		!auth.CheckPassword(user.PasswordHash, password) {
		http.Redirect(w, r, "/admin/login?error=invalid_login", http.StatusSeeOther)
		return
	}
	if err := setSession(w, user); err != nil {
		http.Error(w, "session failed", http.StatusInternalServerError)
		return
	}
	if next == "" {
		next = "/admin/classes"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// POST /admin/logout
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
