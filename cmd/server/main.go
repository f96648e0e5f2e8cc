package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/auth"
	"github.com/ironclub/gym/internal/config"
	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/metrics"
	"github.com/ironclub/gym/internal/models"
	"github.com/ironclub/gym/internal/notify"
	"github.com/ironclub/gym/internal/web"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	})))

	cfg := config.MustLoad()

	if err := db.Init(cfg.DBPath); err != nil {
		slog.Error("db init", "err", err)
		os.Exit(1)
	}
	if err := bootstrapAdmin(db.Conn(), cfg); err != nil {
		slog.Error("bootstrap admin", "err", err)
		os.Exit(1)
	}

	notify.Init(cfg.TelegramToken)
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	r := web.Router()

	slog.Info("ironclub gym listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}

// bootstrapAdmin creates the back-office account on first start. Does
// nothing once any admin exists.
func bootstrapAdmin(gdb *gorm.DB, cfg config.Config) error {
	var n int64
	if err := gdb.Model(&models.User{}).Where("role = ?", "admin").Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Admin",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         "admin",
	}
	if err := gdb.Create(&admin).Error; err != nil {
		return err
	}
	slog.Info("created bootstrap admin", "email", cfg.AdminEmail)
	return nil
}
