package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr      string `env:"ADDR" env-default:":8080"`
	DBPath    string `env:"DB_PATH" env-default:"gym.db"`
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`

	// Bootstrap admin, created on first start when no admin exists.
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:"admin@ironclub.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin123"`

	// Telegram notifications are optional; everything works without a token.
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	MetricsEnabled bool `env:"METRICS_ENABLED" env-default:"true"`
}

// C holds the process-wide configuration after MustLoad.
var C Config

// MustLoad reads .env (if present) and the environment. Exits on bad values.
func MustLoad() Config {
	_ = godotenv.Load()
	if err := cleanenv.ReadEnv(&C); err != nil {
		log.Fatalf("load config: %v", err)
	}
	return C
}
