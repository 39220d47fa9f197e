package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Language backend (Gemini).
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel    string `mapstructure:"GEMINI_MODEL"` // optional preferred model, tried first
	ExtractorModel string `mapstructure:"EXTRACTOR_MODEL"`

	// Google APIs.
	GoogleMapsAPIKey         string `mapstructure:"GOOGLE_MAPS_API_KEY"`
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	BookingSheetID           string `mapstructure:"BOOKING_SHEET_ID"`

	// Mail.
	SMTPHost          string `mapstructure:"SMTP_HOST"`
	SMTPPort          int    `mapstructure:"SMTP_PORT"`
	EmailAddress      string `mapstructure:"EMAIL_ADDRESS"`
	EmailPassword     string `mapstructure:"EMAIL_PASSWORD"`
	ManagerEmail      string `mapstructure:"MANAGER_EMAIL"`
	SendCustomerEmail bool   `mapstructure:"SEND_CUSTOMER_EMAIL"`

	// Business constants.
	OfficeAddress string `mapstructure:"OFFICE_ADDRESS"`
	CompanyPhone  string `mapstructure:"COMPANY_PHONE"`
	DailyCapacity int    `mapstructure:"DAILY_CAPACITY"`
	PeakDates     string `mapstructure:"PEAK_DATES"` // comma-separated YYYY-MM-DD

	// Session store selection: "memory" (default) or "redis".
	SessionStore      string `mapstructure:"SESSION_STORE"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB    int    `mapstructure:"REDIS_SESSION_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("GEMINI_MODEL", "")
	viper.SetDefault("EXTRACTOR_MODEL", "models/gemini-1.5-flash")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SEND_CUSTOMER_EMAIL", false)
	viper.SetDefault("OFFICE_ADDRESS", "2800 Rolido Dr Apt 238, Houston, TX 77063")
	viper.SetDefault("COMPANY_PHONE", "(281) 743-4503")
	viper.SetDefault("DAILY_CAPACITY", 3)
	viper.SetDefault("PEAK_DATES", "")
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// PeakDateSet parses the configured comma-separated peak dates.
func PeakDateSet() map[string]bool {
	set := make(map[string]bool)
	for _, d := range strings.Split(AppConfig.PeakDates, ",") {
		if d = strings.TrimSpace(d); d != "" {
			set[d] = true
		}
	}
	return set
}

// AllowedOriginList splits the configured CORS origins.
func AllowedOriginList() []string {
	var origins []string
	for _, o := range strings.Split(AppConfig.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
