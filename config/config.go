package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DBConnectionString string
	RedisURL           string

	AccessTokenSecret  string
	RefreshTokenSecret string
	EmailTokenSecret   string

	// Booking policy
	BookingExpiryDays      int
	MaxConsecutiveBookings int
	SweepIntervalMinutes   int

	// Admin verification window (payment-proof approval validity)
	AdminVerificationDays int
	// Fee recorded when a payment proof is accepted
	MonthlySubscriptionFee float64

	// Outbound mail
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	MailFrom   string
	AdminEmail string
	// Public frontend base url used in email links
	FrontendBaseURL string

	// Cloudinary (payment-proof images)
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// C holds the loaded configuration. Load must run before the first use.
var C Config

func Load() Config {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	C = Config{
		Port:               getEnv("PORT", "4000"),
		DBConnectionString: os.Getenv("DB_CONNECTION_STRING"),
		RedisURL:           os.Getenv("REDIS_URL"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		EmailTokenSecret:   os.Getenv("EMAIL_TOKEN_SECRET"),

		BookingExpiryDays:      getEnvInt("BOOKING_EXPIRY_DAYS", 7),
		MaxConsecutiveBookings: getEnvInt("MAX_CONSECUTIVE_BOOKINGS", 2),
		SweepIntervalMinutes:   getEnvInt("SWEEP_INTERVAL_MINUTES", 5),
		AdminVerificationDays:  getEnvInt("ADMIN_VERIFICATION_DAYS", 30),
		MonthlySubscriptionFee: getEnvFloat("MONTHLY_SUBSCRIPTION_FEE", 50),

		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		MailFrom:        os.Getenv("FROM_EMAIL"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		FrontendBaseURL: os.Getenv("FRONTEND_BASE_URL"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    os.Getenv("CLOUDINARY_FOLDER"),
	}
	return C
}

// HoldDuration is how long a reserved booking stays valid before it expires.
func (c Config) HoldDuration() time.Duration {
	return time.Duration(c.BookingExpiryDays) * 24 * time.Hour
}

// VerificationWindow is how long an accepted payment proof keeps a student
// admin-verified.
func (c Config) VerificationWindow() time.Duration {
	return time.Duration(c.AdminVerificationDays) * 24 * time.Hour
}

// SweepInterval is how often the background sweep looks for lapsed holds.
// Zero or negative disables it.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %g", key, v, fallback)
		return fallback
	}
	return f
}
