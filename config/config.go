package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisAddr     string
	RedisPort     string
	RedisPassword string
	JWTSecret     string

	// LedgerSecret keys the tamper hash on ledger rows.
	LedgerSecret string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool

	// Loyalty engine configuration
	DailyCap          int64  // XP earnable per calendar day, <= 0 means unlimited
	GraceDays         int    // demotion protection window, <= 0 disables hysteresis
	XPBasis           string // "total" or "rolling"
	RollingWindowDays int
	Timezone          string // calendar-day boundary for caps, streaks and campaigns
	XPExpiryMonths    int    // <= 0 disables the expiry sweep

	// Streak configuration
	StreakBaseXP       float64
	StreakMultiplier   float64
	StreakMaxDay       int
	StreakToleranceDay int // 1 strict, 2 with the tolerance option
	StreakCycleReset   bool
	BirthdayXP         int64
	AnniversaryXP      int64

	// Optional webhook target for outbound events
	EventWebhookURL string
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		LedgerSecret:  getEnv("LEDGER_SECRET", "change-me"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),

		DailyCap:          int64(getEnvAsInt("LOYALTY_DAILY_CAP", 0)),
		GraceDays:         getEnvAsInt("LOYALTY_GRACE_DAYS", 7),
		XPBasis:           getEnv("LOYALTY_XP_BASIS", "total"),
		RollingWindowDays: getEnvAsInt("LOYALTY_ROLLING_WINDOW_DAYS", 365),
		Timezone:          getEnv("LOYALTY_TIMEZONE", "UTC"),
		XPExpiryMonths:    getEnvAsInt("LOYALTY_XP_EXPIRY_MONTHS", 0),

		StreakBaseXP:       getEnvAsFloat("STREAK_BASE_XP", 2),
		StreakMultiplier:   getEnvAsFloat("STREAK_MULTIPLIER", 2),
		StreakMaxDay:       getEnvAsInt("STREAK_MAX_DAY", 7),
		StreakToleranceDay: getEnvAsInt("STREAK_TOLERANCE_DAYS", 1),
		StreakCycleReset:   getEnvAsBool("STREAK_CYCLE_RESET", false),
		BirthdayXP:         int64(getEnvAsInt("STREAK_BIRTHDAY_XP", 0)),
		AnniversaryXP:      int64(getEnvAsInt("STREAK_ANNIVERSARY_XP", 0)),

		EventWebhookURL: os.Getenv("EVENT_WEBHOOK_URL"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
