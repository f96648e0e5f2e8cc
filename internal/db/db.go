package db

import (
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ironclub/gym/internal/models"
)

var conn *gorm.DB

// Init opens (or creates) the SQLite database at path and migrates the schema.
func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	// Conflicting booking transactions serialize on this writer.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.User{},
		&models.ClassOccurrence{},
		&models.Attendee{},
		&models.Competition{},
		&models.CompetitionRegistration{},
		&models.TeamMember{},
		&models.PaymentReport{},
		&models.LinkCode{},
	); err != nil {
		return err
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_regs_comp_created ON competition_registrations(competition_id, created_at)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_payments_status_created ON payment_reports(status, created_at)")

	slog.Info("database ready", "driver", "sqlite", "path", path)
	return nil
}

func Conn() *gorm.DB {
	return conn
}
