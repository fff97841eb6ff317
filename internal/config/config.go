package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	FirebaseProjectID string
	CredentialsFile   string

	MailsCollection  string
	ConfigCollection string
	AuditCollection  string

	LockPort  int
	BatchSize int

	DriveFolderID string
	BackupJSONURL string
	BackupFileID  string

	LogFile string

	OffPeakInterval time.Duration
	BusyInterval    time.Duration
	IdleInterval    time.Duration

	ProbeTimeout time.Duration

	Env string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		FirebaseProjectID: GetEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile:   GetEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		MailsCollection:   GetEnv("MAILS_COLLECTION", "surat_masuk"),
		ConfigCollection:  GetEnv("CONFIG_COLLECTION", "config"),
		AuditCollection:   GetEnv("AUDIT_COLLECTION", "audit_logs"),
		LockPort:          GetEnvInt("LOCK_PORT", 56789),
		BatchSize:         GetEnvInt("SYNC_BATCH_SIZE", 400),
		DriveFolderID:     GetEnv("DRIVE_FOLDER_ID", ""),
		BackupJSONURL:     GetEnv("BACKUP_JSON_URL", ""),
		BackupFileID:      GetEnv("BACKUP_FILE_ID", ""),
		LogFile:           GetEnv("BRIDGE_LOG_FILE", "bridge.log"),
		OffPeakInterval:   GetEnvDuration("OFFPEAK_SYNC_INTERVAL", 15*time.Minute),
		BusyInterval:      GetEnvDuration("BUSY_SYNC_INTERVAL", 2*time.Minute),
		IdleInterval:      GetEnvDuration("IDLE_CHECK_INTERVAL", 30*time.Minute),
		ProbeTimeout:      GetEnvDuration("PROBE_TIMEOUT", 3*time.Second),
		Env:               GetEnv("ENV", "development"),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.LockPort <= 0 || c.LockPort > 65535 {
		return fmt.Errorf("LOCK_PORT must be a valid port number, got %d", c.LockPort)
	}
	// Firestore rejects batches of 500 or more writes; keep headroom below that.
	if c.BatchSize <= 0 || c.BatchSize >= 500 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be between 1 and 499, got %d", c.BatchSize)
	}
	return nil
}
