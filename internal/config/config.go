package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	Database DatabaseConfig `json:"database"`

	// Mongo backs attachment blob storage (GridFS)
	Mongo MongoConfig `json:"mongo"`

	Messaging MessagingConfig `json:"messaging"`

	Attachment AttachmentConfig `json:"attachment"`
}

type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
}

type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
}

type MessagingConfig struct {
	// SupportAccountID is the designated support account used by the
	// support-thread dedup rule. Injected, never hard-coded.
	SupportAccountID string `json:"support_account_id"`

	// FanoutWorkers bounds broadcast concurrency against the roster and DB.
	FanoutWorkers int `json:"fanout_workers"`

	PreviewLength int `json:"preview_length"`
}

type AttachmentConfig struct {
	MaxBytes         int64    `json:"max_bytes"`
	AllowedMimetypes []string `json:"allowed_mimetypes"`
}

// DefaultMimetypes covers images, PDF and the common office formats.
var DefaultMimetypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Load builds a Config from the environment. godotenv is loaded by main
// before this runs.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "schooltalk"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "schooltalk"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Mongo: MongoConfig{
			URI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnvOrDefault("MONGO_DB", "schooltalk_media"),
			Bucket:   getEnvOrDefault("MONGO_BUCKET", "attachments"),
		},
		Messaging: MessagingConfig{
			SupportAccountID: getEnvOrDefault("SUPPORT_ACCOUNT_ID", ""),
			FanoutWorkers:    getEnvIntOrDefault("FANOUT_WORKERS", 8),
			PreviewLength:    getEnvIntOrDefault("PREVIEW_LENGTH", 80),
		},
		Attachment: AttachmentConfig{
			MaxBytes:         int64(getEnvIntOrDefault("ATTACHMENT_MAX_BYTES", 10<<20)),
			AllowedMimetypes: DefaultMimetypes,
		},
	}
}

// DSN builds the MySQL connection string from the database section.
func (cfg *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
