package handlers

import (
	"net/http"
	"time"

	"github.com/ironclub/gym/internal/auth"
	"github.com/ironclub/gym/internal/config"
	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

const sessionCookie = "session"

func setSession(w http.ResponseWriter, user models.User) error {
	token, err := auth.GenerateToken(user.ID, user.Role, config.C.JWTSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(72 * time.Hour),
	})
	return nil
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// currentUser loads the logged-in user from the session cookie, or nil when
// there is no valid session.
func currentUser(r *http.Request) *models.User {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	claims, err := auth.ParseToken(c.Value, config.C.JWTSecret)
	if err != nil {
		return nil
	}
	var u models.User
	if err := db.Conn().First(&u, claims.UserID).Error; err != nil {
		return nil
	}
	return &u
}

// RequireMember is middleware: blocks access unless a member is logged in.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			http.Redirect(w, r, "/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is middleware: blocks access unless an admin is logged in.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		if u == nil || u.Role != "admin" {
			http.Redirect(w, r, "/admin/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
