// Package notify delivers best-effort Telegram messages to members who linked
// their chat. Nothing in the booking flow depends on delivery succeeding.
package notify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var bot *tgbotapi.BotAPI

// Init creates the bot client. An empty token disables notifications; every
// send becomes a no-op.
func Init(token string) error {
	if token == "" {
		slog.Info("telegram notifications disabled (no token)")
		return nil
	}
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram init: %w", err)
	}
	bot = b
	slog.Info("telegram notifications enabled", "bot", b.Self.UserName)
	return nil
}

func Enabled() bool { return bot != nil }

func send(chatID int64, text string) {
	if bot == nil || chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	err := retry.Do(
		func() error {
			_, err := bot.Send(msg)
			return err
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
	)
	if err != nil {
		slog.Warn("telegram send failed", "chat_id", chatID, "err", err)
	}
}

func BookingConfirmed(chatID int64, className, code string) {
	send(chatID, fmt.Sprintf("✅ Booked <b>%s</b>.\nYour check-in code: <code>%s</code>", className, code))
}

func BookingCanceled(chatID int64, className string) {
	send(chatID, fmt.Sprintf("Your booking for <b>%s</b> was canceled.", className))
}

func RegistrationReceived(chatID int64, compName, status string) {
	if status == "pending_payment" {
		send(chatID, fmt.Sprintf("📋 Registered for <b>%s</b>. Report your payment to confirm your spot.", compName))
		return
	}
	send(chatID, fmt.Sprintf("🏆 Registered for <b>%s</b>. See you there!", compName))
}

func PaymentReviewed(chatID int64, approved bool) {
	if approved {
		send(chatID, "💳 Your payment was verified. You're all set.")
		return
	}
	send(chatID, "⚠️ Your payment report was rejected. Please check the details and submit again.")
}

func LinkConfirmed(chatID int64, name string) {
	send(chatID, fmt.Sprintf("🔗 Hi %s, your Telegram is now linked to your gym account.", name))
}

func Reply(chatID int64, text string) {
	send(chatID, text)
}
