package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
	"github.com/ironclub/gym/internal/notify"
)

// POST /tg/webhook
//
// Handles the two commands the bot understands: /start and /link <code>.
// Everything else gets a short usage hint.
func TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		w.WriteHeader(http.StatusOK) // never make Telegram retry forever
		return
	}
	if update.Message == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		notify.Reply(chatID, "Welcome to IronClub! Generate a link code on your account page, then send:\n/link 123456")

	case strings.HasPrefix(text, "/link"):
		parts := strings.Fields(text)
		if len(parts) != 2 {
			notify.Reply(chatID, "Usage: /link 123456")
			break
		}
		code := parts[1]

		var lc models.LinkCode
		if err := db.Conn().
			Where("code = ? AND used_at IS NULL AND expires_at > ?", code, time.Now()).
			First(&lc).Error; err != nil {
			notify.Reply(chatID, "That code is invalid or expired. Generate a new one on your account page.")
			break
		}

		var user models.User
		if err := db.Conn().First(&user, lc.UserID).Error; err != nil {
			notify.Reply(chatID, "Account not found.")
			break
		}

		now := time.Now()
		lc.UsedAt = &now
		_ = db.Conn().Save(&lc).Error
		_ = db.Conn().Model(&models.User{}).Where("id = ?", user.ID).Update("telegram_chat_id", chatID).Error
		notify.LinkConfirmed(chatID, user.Name)

	default:
		notify.Reply(chatID, "I only understand /start and /link <code>.")
	}

	w.WriteHeader(http.StatusOK)
}
