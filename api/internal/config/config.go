package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	UploadDir    string
	SettingsFile string
	MaxUploadMB  int64

	APIBase     string
	OCRModel    string
	PollRetries int
	PollDelay   time.Duration
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logrus.WithField("key", k).Warnf("ignoring non-numeric value %q", v)
	}
	return def
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not load .env")
	}

	return &Config{
		Port: getEnv("PORT", "8000"),

		UploadDir:    getEnv("UPLOAD_DIR", "instance/uploads"),
		SettingsFile: getEnv("SETTINGS_FILE", "instance/settings.json"),
		MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 50)),

		APIBase:     getEnv("MISTRAL_API_BASE", "https://api.mistral.ai"),
		OCRModel:    getEnv("OCR_MODEL", "mistral-ocr-latest"),
		PollRetries: getEnvInt("OCR_POLL_RETRIES", 30),
		PollDelay:   time.Duration(getEnvInt("OCR_POLL_DELAY_SEC", 2)) * time.Second,
	}
}
