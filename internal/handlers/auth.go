package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/ironclub/gym/internal/auth"
	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
	svc "github.com/ironclub/gym/internal/services"
)

// GET /signup
func SignupForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/auth/signup.tmpl")
		_ = view.ExecuteTemplate(w, "auth/signup.tmpl", map[string]any{
			"Title": "Join IronClub",
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /signup
func SignupSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")
	natID := svc.NormNationalID(r.FormValue("national_id"))
	phone := svc.NormPhone(r.FormValue("phone"))

	email, ok := svc.NormEmail(r.FormValue("email"))
	if !ok || email == "" {
		http.Redirect(w, r, "/signup?error=invalid_email", http.StatusSeeOther)
		return
	}
	if name == "" || password == "" {
		http.Redirect(w, r, "/signup?error=missing", http.StatusSeeOther)
		return
	}
	if natID == "" {
		http.Redirect(w, r, "/signup?error=invalid_natid", http.StatusSeeOther)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "hash password failed", http.StatusInternalServerError)
		return
	}
	user := models.User{
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		NationalID:       natID,
		Phone:            phone,
		Role:             "member",
		MembershipStatus: "inactive",
	}
	if err := db.Conn().Create(&user).Error; err != nil {
		le := strings.ToLower(err.Error())
		switch {
		case strings.Contains(le, "unique") && strings.Contains(le, "email"):
			http.Redirect(w, r, "/signup?error=email_in_use", http.StatusSeeOther)
		case strings.Contains(le, "unique") && strings.Contains(le, "national_id"):
			http.Redirect(w, r, "/signup?error=natid_in_use", http.StatusSeeOther)
		default:
			http.Error(w, "save user failed", http.StatusInternalServerError)
		}
		return
	}

	if err := setSession(w, user); err != nil {
		http.Error(w, "session failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/schedule", http.StatusSeeOther)
}

// GET /login
func LoginForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/auth/login.tmpl")
		_ = view.ExecuteTemplate(w, "auth/login.tmpl", map[string]any{
			"Title": "Log in",
			"Next":  r.URL.Query().Get("next"),
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /login
func LoginSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	email, _ := svc.NormEmail(r.FormValue("email"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	var user models.User
	if err := db.Conn().Where("email = ?", email).First(&user).Error; err != nil ||
		!auth.CheckPassword(user.PasswordHash, password) {
		http.Redirect(w, r, "/login?error=invalid_login", http.StatusSeeOther)
		return
	}
	if err := setSession(w, user); err != nil {
		http.Error(w, "session failed", http.StatusInternalServerError)
		return
	}
	if next == "" {
		next = "/schedule"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}
