package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT (token issuance lives in the auth service; we only verify)
	JWTSecret string

	// Server
	Port   string
	AppEnv string

	// Email
	SendgridAPIKey string
	EmailFromName  string
	EmailFromAddr  string

	// Attendance engine
	DefaultAttendanceThreshold float64       // fallback when a subject has none
	DefaultGeofenceRadiusM     float64       // fallback radius for geofenced codes
	ReminderInterval           time.Duration // scheduler tick
	ReminderLookbackSlack      time.Duration // extra lookback beyond the interval
	ReminderDedupWindow        time.Duration // min gap between same-tier reminders
	ReminderSendTimeout        time.Duration // per-recipient email timeout

	// Rate limiting
	CheckinRateLimit  int // requests per window per client
	CheckinRateWindow time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Feature toggles
	SkipMigrate bool
	SeedDemo    bool
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
}

var AppConfig *Config

func LoadConfig() {
	useSSM := getEnv("USE_SSM", "false") == "true"

	var paramMap map[string]string

	// Stage & base path for SSM (allows multi-env without code changes)
	basePath := strings.TrimRight(getEnv("SSM_BASE_PATH", "/classtrack"), "/")
	stage := getEnv("STAGE", getEnv("APP_ENV", "production"))
	prefix := basePath + "/" + stage

	if useSSM {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(getEnv("AWS_REGION", "ap-southeast-1"))})
		if err != nil {
			log.Fatal("Failed to create AWS session:", err)
		}
		log.Printf("Using AWS SSM Parameter Store (prefix=%s)", prefix)
		paramMap = fetchSSMParameters(ssm.New(sess), prefix)
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using environment variables")
		}
	}

	// Helper accessor respecting map / env fallback
	getVal := func(key, def string) string {
		if useSSM {
			uk := strings.ToUpper(key)
			if v, ok := paramMap[uk]; ok && v != "" {
				return v
			}
		}
		return getEnv(strings.ToUpper(key), def)
	}

	AppConfig = &Config{
		DBHost:     getVal("DB_HOST", "localhost"),
		DBPort:     getVal("DB_PORT", "3306"),
		DBUser:     getVal("DB_USER", "root"),
		DBPassword: getVal("DB_PASSWORD", ""),
		DBName:     getVal("DB_NAME", "classtrack_go"),

		RedisHost:     getVal("REDIS_HOST", "localhost"),
		RedisPort:     getVal("REDIS_PORT", "6379"),
		RedisPassword: getVal("REDIS_PASSWORD", ""),

		JWTSecret: getVal("JWT_SECRET", "your_super_secret_jwt_key"),

		Port:   getVal("PORT", "3000"),
		AppEnv: getVal("APP_ENV", "development"),

		SendgridAPIKey: getVal("SENDGRID_API_KEY", ""),
		EmailFromName:  getVal("EMAIL_FROM_NAME", "ClassTrack"),
		EmailFromAddr:  getVal("EMAIL_FROM_ADDR", "no-reply@classtrack.local"),

		DefaultAttendanceThreshold: mustFloat(getVal("ATTENDANCE_THRESHOLD", "0.80")),
		DefaultGeofenceRadiusM:     mustFloat(getVal("GEOFENCE_RADIUS_M", "75")),
		ReminderInterval:           mustDuration(getVal("REMINDER_INTERVAL", "5m")),
		ReminderLookbackSlack:      mustDuration(getVal("REMINDER_LOOKBACK_SLACK", "1m")),
		ReminderDedupWindow:        mustDuration(getVal("REMINDER_DEDUP_WINDOW", "6h")),
		ReminderSendTimeout:        mustDuration(getVal("REMINDER_SEND_TIMEOUT", "10s")),

		CheckinRateLimit:  mustInt(getVal("CHECKIN_RATE_LIMIT", "30")),
		CheckinRateWindow: mustDuration(getVal("CHECKIN_RATE_WINDOW", "1m")),

		LogLevel: getVal("LOG_LEVEL", "info"),
		LogFile:  getVal("LOG_FILE", "logs/app.log"),

		SkipMigrate: strings.ToLower(getVal("SKIP_MIGRATE", "false")) == "true",
		SeedDemo:    strings.ToLower(getVal("SEED_DEMO", "false")) == "true",
	}

	validateConfig(AppConfig, useSSM)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Invalid duration %q: %v", s, err)
	}
	return d
}

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("Invalid number %q: %v", s, err)
	}
	return f
}

func mustInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("Invalid integer %q: %v", s, err)
	}
	return n
}

// fetchSSMParameters reads all parameters under prefix and returns a map with UPPERCASE keys.
func fetchSSMParameters(client *ssm.SSM, prefix string) map[string]string {
	out := make(map[string]string)
	next := aws.String("")
	for {
		in := &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
		}
		if *next != "" {
			in.NextToken = next
		}
		resp, err := client.GetParametersByPath(in)
		if err != nil {
			log.Printf("Warning: unable to fetch SSM parameters for prefix %s: %v", prefix, err)
			break
		}
		for _, p := range resp.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			name := *p.Name
			key := name
			if idx := strings.LastIndex(name, "/"); idx >= 0 {
				key = name[idx+1:]
			}
			if key == "" {
				continue
			}
			out[strings.ToUpper(key)] = *p.Value
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		next = resp.NextToken
	}
	return out
}

func validateConfig(c *Config, usedSSM bool) {
	// The lookback slack must exceed scheduler jitter; a slack shorter than
	// zero (or a dedup window shorter than the interval) opens gaps or
	// hot-loops, so refuse to start.
	if c.ReminderLookbackSlack <= 0 {
		log.Fatal("REMINDER_LOOKBACK_SLACK must be positive")
	}
	if c.ReminderDedupWindow < c.ReminderInterval {
		log.Fatal("REMINDER_DEDUP_WINDOW must not be shorter than REMINDER_INTERVAL")
	}
	if c.DefaultAttendanceThreshold <= 0 || c.DefaultAttendanceThreshold > 1 {
		log.Fatal("ATTENDANCE_THRESHOLD must be a fraction in (0, 1]")
	}

	// Only enforce stricter rules in production
	if strings.ToLower(c.AppEnv) != "production" {
		return
	}
	required := map[string]string{
		"DB_PASSWORD": c.DBPassword,
		"JWT_SECRET":  c.JWTSecret,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			log.Fatalf("Missing required secret %s in production (SSM=%v)", k, usedSSM)
		}
	}
	if len(c.JWTSecret) < 16 {
		log.Fatal("JWT_SECRET too short (min 16 chars)")
	}
}
