package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutboxDir string

	MaxUploadMB    int
	TargetSheet    string
	HeaderScanRows int
	PageSize       int
	DateFormat     string

	ReminderPeriodDays int
	ReminderSchedule   string
	ReminderContact    string

	SenderName    string
	SenderAddress string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "creances.db")),
		OutboxDir: getEnv("OUTBOX_DIR", filepath.Join(cwd, "data", "outbox")),

		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 20),
		TargetSheet:    getEnv("TARGET_SHEET", "Etat des créances"),
		HeaderScanRows: getEnvInt("HEADER_SCAN_ROWS", 11),
		PageSize:       getEnvInt("PAGE_SIZE", 100),
		DateFormat:     getEnv("DATE_DISPLAY_FORMAT", "02/01/2006"),

		ReminderPeriodDays: getEnvInt("REMINDER_PERIOD_DAYS", 30),
		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		ReminderContact:    getEnv("REMINDER_CONTACT", "notre service client"),

		SenderName:    getEnv("SENDER_NAME", "Service Recouvrement"),
		SenderAddress: getEnv("SENDER_ADDRESS", "recouvrement@example.dz"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
	}

	return cfg, nil
}

// MaxUploadBytes is the decode ceiling: files above it are rejected before any
// spreadsheet parsing happens.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
