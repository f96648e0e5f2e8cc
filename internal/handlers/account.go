package handlers

import (
	"crypto/rand"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
	"github.com/ironclub/gym/internal/notify"
	svc "github.com/ironclub/gym/internal/services"
)

// GET /account
func AccountForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login?next=/account", http.StatusSeeOther)
			return
		}

		linkCode := ""
		var lc models.LinkCode
		if err := db.Conn().
			Where("user_id = ? AND used_at IS NULL AND expires_at > ?", user.ID, time.Now()).
			Order("created_at desc").First(&lc).Error; err == nil {
			linkCode = lc.Code
		}

		view, _ := t.Clone()
		_, _ = view.ParseFiles("templates/pages/account/profile.tmpl")
		_ = view.ExecuteTemplate(w, "account/profile.tmpl", map[string]any{
			"Title":       "My Account",
			"User":        user,
			"LinkCode":    linkCode,
			"BotEnabled":  notify.Enabled(),
			"HasTelegram": user.TelegramChatID != 0,
			"Flash":       MakeFlash(r, "", ""),
		})
	}
}

// POST /account
func AccountSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	phone := svc.NormPhone(r.FormValue("phone"))
	email, ok := svc.NormEmail(r.FormValue("email"))
	if !ok || email == "" {
		http.Redirect(w, r, "/account?error=invalid_email", http.StatusSeeOther)
		return
	}
	if name == "" {
		http.Redirect(w, r, "/account?error=missing", http.StatusSeeOther)
		return
	}

	user.Name = name
	user.Phone = phone
	user.Email = email
	if err := db.Conn().Save(user).Error; err != nil {
		le := strings.ToLower(err.Error())
		if strings.Contains(le, "unique") && strings.Contains(le, "email") {
			http.Redirect(w, r, "/account?error=email_in_use", http.StatusSeeOther)
			return
		}
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/account?ok=saved", http.StatusSeeOther)
}

// generate 6-digit code using crypto/rand
func genCode6() string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	n := (int(b[0])<<16 | int(b[1])<<8 | int(b[2])) % 1000000
	return fmt.Sprintf("%06d", n)
}

// POST /account/linkcode
func AccountGenerateLinkCode(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// housekeeping: drop used and long-expired codes for this user
	_ = db.Conn().
		Where("user_id = ? AND (used_at IS NOT NULL OR expires_at < ?)", user.ID, time.Now().Add(-24*time.Hour)).
		Delete(&models.LinkCode{}).Error

	// try a few times to avoid unique collisions
	for i := 0; i < 10; i++ {
		lc := models.LinkCode{
			Code:      genCode6(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(15 * time.Minute),
		}
		if err := db.Conn().Create(&lc).Error; err == nil {
			break
		}
	}
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

// POST /account/unlink_telegram
func AccountUnlinkTelegram(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	_ = db.Conn().Model(&models.User{}).Where("id = ?", user.ID).Update("telegram_chat_id", 0).Error
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}
