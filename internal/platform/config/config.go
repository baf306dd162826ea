package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr               string
	Environment        string
	LogLevel           string
	DatabaseURL        string
	JWTSecret          string
	AdminEmail         string
	AdminPasswordHash  string
	FrontendDir        string
	MigrationsDir      string
	RunMigrations      bool
	MaxBodyBytes       int64
	MaxUploadBytes     int64
	RateLimitPerMinute int
	MetricsEnabled     bool

	CompanyName     string
	CompanyAddress  string
	CompanyContact  string
	CurrencyCode    string
	ProfessionalTax float64

	AIProvider string
	AIURL      string
	AIModel    string
	AIAPIKey   string
	AITimeout  time.Duration

	EmailEnabled bool
	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPUseTLS   bool
}

const (
	AIProviderOllama = "ollama"
	AIProviderGemini = "gemini"
	AIProviderNone   = "none"
)

var defaults = map[string]any{
	"APP_ADDR":                ":8080",
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"DATABASE_URL":            "",
	"JWT_SECRET":              "",
	"ADMIN_EMAIL":             "",
	"ADMIN_PASSWORD_HASH":     "",
	"FRONTEND_DIR":            "frontend/dist",
	"MIGRATIONS_DIR":          "migrations",
	"RUN_MIGRATIONS":          true,
	"MAX_BODY_BYTES":          1048576,
	"MAX_UPLOAD_BYTES":        10485760,
	"RATE_LIMIT_PER_MINUTE":   60,
	"METRICS_ENABLED":         true,
	"COMPANY_NAME":            "Arah Infotech Pvt Ltd",
	"COMPANY_ADDRESS":         "123, Tech Park, Innovation City, India",
	"COMPANY_CONTACT":         "contact@arahinfotech.com | www.arahinfotech.com",
	"CURRENCY_CODE":           "INR",
	"PROFESSIONAL_TAX_ANNUAL": 2400,
	"AI_PROVIDER":             AIProviderOllama,
	"AI_URL":                  "http://localhost:11434",
	"AI_MODEL":                "llama3",
	"AI_API_KEY":              "",
	"AI_TIMEOUT":              "5s",
	"EMAIL_ENABLED":           false,
	"EMAIL_FROM":              "no-reply@example.com",
	"SMTP_HOST":               "",
	"SMTP_PORT":               587,
	"SMTP_USER":               "",
	"SMTP_PASSWORD":           "",
	"SMTP_USE_TLS":            true,
}

// Load reads configuration from the environment, with an optional .env or
// config.env file in the working directory. Environment variables win.
func Load() Config {
	v := viper.New()
	v.SetConfigType("env")
	for _, name := range []string{".env", "config.env"} {
		v.SetConfigFile(name)
		_ = v.MergeInConfig()
	}
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return Config{
		Addr:               v.GetString("APP_ADDR"),
		Environment:        v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		AdminEmail:         strings.ToLower(v.GetString("ADMIN_EMAIL")),
		AdminPasswordHash:  v.GetString("ADMIN_PASSWORD_HASH"),
		FrontendDir:        v.GetString("FRONTEND_DIR"),
		MigrationsDir:      v.GetString("MIGRATIONS_DIR"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		MaxBodyBytes:       v.GetInt64("MAX_BODY_BYTES"),
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		CompanyName:        v.GetString("COMPANY_NAME"),
		CompanyAddress:     v.GetString("COMPANY_ADDRESS"),
		CompanyContact:     v.GetString("COMPANY_CONTACT"),
		CurrencyCode:       strings.ToUpper(v.GetString("CURRENCY_CODE")),
		ProfessionalTax:    v.GetFloat64("PROFESSIONAL_TAX_ANNUAL"),
		AIProvider:         strings.ToLower(v.GetString("AI_PROVIDER")),
		AIURL:              strings.TrimRight(v.GetString("AI_URL"), "/"),
		AIModel:            v.GetString("AI_MODEL"),
		AIAPIKey:           v.GetString("AI_API_KEY"),
		AITimeout:          v.GetDuration("AI_TIMEOUT"),
		EmailEnabled:       v.GetBool("EMAIL_ENABLED"),
		EmailFrom:          v.GetString("EMAIL_FROM"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetInt("SMTP_PORT"),
		SMTPUser:           v.GetString("SMTP_USER"),
		SMTPPassword:       v.GetString("SMTP_PASSWORD"),
		SMTPUseTLS:         v.GetBool("SMTP_USE_TLS"),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.JWTSecret != "" && (c.AdminEmail == "" || c.AdminPasswordHash == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required when JWT_SECRET is set")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ProfessionalTax < 0 {
		return fmt.Errorf("PROFESSIONAL_TAX_ANNUAL must not be negative")
	}
	if len(c.CurrencyCode) != 3 {
		return fmt.Errorf("CURRENCY_CODE must be a three-letter code")
	}
	switch c.AIProvider {
	case AIProviderOllama:
		if c.AIURL == "" {
			return fmt.Errorf("AI_URL is required for the ollama provider")
		}
	case AIProviderGemini:
		if c.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required for the gemini provider")
		}
	case AIProviderNone:
	default:
		return fmt.Errorf("AI_PROVIDER must be one of ollama, gemini, none")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
