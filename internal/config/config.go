package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type AuthConfig struct {
	Algorithm          string
	PrivateKeyPath     string
	PublicKeyPath      string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RegistrationTTL    time.Duration
	PasswordChangeTTL  time.Duration
	RefreshTokenHeader string
}

type FrontendConfig struct {
	ConfirmRegistrationURL string
	RegisterInvitationURL  string
	ChangingPasswordURL    string
	ConfirmSubscriptionURL string
}

type Config struct {
	HTTPAddr     string
	LogLevel     string
	ContactsPath string
	ReaperHour   int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ESURL      string
	ESUser     string
	ESPassword string
	NewsIndex  string

	KafkaAddress string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	AdminEmail    string
	AdminUsername string
	AdminPassword string

	Auth     AuthConfig
	Frontend FrontendConfig
}

// Load reads the whole configuration once at startup. Everything downstream
// takes the resulting struct by injection, nothing reads the environment on
// its own.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		ContactsPath: getenv("CONTACTS_PATH", "contacts.json"),
		ReaperHour:   getint("REAPER_HOUR", 3),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		NewsIndex:  getenv("ES_NEWS_INDEX", "news"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getint("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailFromName: getenv("MAIL_FROM_NAME", "ESKRO"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		Auth: AuthConfig{
			Algorithm:          getenv("JWT_ALGORITHM", "EdDSA"),
			PrivateKeyPath:     getenv("JWT_PRIVATE_KEY_PATH", "certs/jwt-private.pem"),
			PublicKeyPath:      getenv("JWT_PUBLIC_KEY_PATH", "certs/jwt-public.pem"),
			AccessTokenTTL:     time.Duration(getint("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
			RefreshTokenTTL:    time.Duration(getint("REFRESH_TOKEN_EXPIRE_DAYS", 30)) * 24 * time.Hour,
			RegistrationTTL:    time.Duration(getint("REGISTRATION_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
			PasswordChangeTTL:  time.Duration(getint("CHANGING_PASSWORD_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
			RefreshTokenHeader: getenv("REFRESH_TOKEN_HEADER", "X-Refresh-Token"),
		},
		Frontend: FrontendConfig{
			ConfirmRegistrationURL: os.Getenv("FRONTEND_CONFIRM_REGISTRATION_URL"),
			RegisterInvitationURL:  os.Getenv("FRONTEND_REGISTER_INVITATION_URL"),
			ChangingPasswordURL:    os.Getenv("FRONTEND_CHANGING_PASSWORD_URL"),
			ConfirmSubscriptionURL: os.Getenv("FRONTEND_CONFIRM_SUBSCRIPTION_URL"),
		},
	}

	return cfg, nil
}

func (c *Config) OpenDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.NewsType{}, &models.News{}, &models.Event{}, &models.Project{},
		&models.Poll{}, &models.PollQuestion{}, &models.PollAnswer{},
		&models.Banner{}, &models.Partner{}, &models.Document{},
		&models.Feedback{}, &models.Subscriber{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
