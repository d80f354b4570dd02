package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contient toutes les configurations de l'application
type Config struct {
	Port                    string
	Host                    string
	MongoURI                string
	MongoDB                 string
	JWTSecret               string
	JWTTTL                  time.Duration
	Environment             string
	CORSOrigins             []string
	Timezone                string
	StorageDir              string
	PhotoMaxBytes           int64
	PublicBaseURL           string
	CloudinaryCloudName     string
	CloudinaryAPIKey        string
	CloudinaryAPISecret     string
	CloudinaryFolder        string
	RedisURL                string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	SlackWebhookURL         string
	RateLimitRPS            float64
	RateLimitBurst          int
	LogLevel                slog.Level
	DefaultLocale           string
	ReminderSchedule        string
}

// Load charge la configuration depuis les variables d'environnement
func Load() (*Config, error) {
	// Charger le fichier .env s'il existe
	_ = godotenv.Load()

	config := &Config{
		Port:                    getEnv("PORT", "8090"),
		Host:                    getEnv("HOST", "0.0.0.0"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "ensaj_db"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		Environment:             getEnv("ENVIRONMENT", "development"),
		Timezone:                getEnv("TIMEZONE", "Africa/Casablanca"),
		StorageDir:              getEnv("STORAGE_DIR", "./storage"),
		PublicBaseURL:           strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		CloudinaryCloudName:     getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:        getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:     getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:        getEnv("CLOUDINARY_FOLDER", "ensaj/events"),
		RedisURL:                getEnv("REDIS_URL", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		SlackWebhookURL:         getEnv("SLACK_WEBHOOK_URL", ""),
		DefaultLocale:           getEnv("DEFAULT_LOCALE", "fr"),
		ReminderSchedule:        getEnv("REMINDER_SCHEDULE", "@hourly"),
	}

	// Parser les origines CORS
	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	originsList := strings.Split(origins, ",")
	config.CORSOrigins = make([]string, 0, len(originsList))
	for _, origin := range originsList {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			config.CORSOrigins = append(config.CORSOrigins, trimmed)
		}
	}

	// Valider les configurations critiques
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET est requis")
	}

	var err error
	if config.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("JWT_TTL invalide: %w", err)
	}
	if config.PhotoMaxBytes, err = strconv.ParseInt(getEnv("PHOTO_MAX_BYTES", "2097152"), 10, 64); err != nil {
		return nil, fmt.Errorf("PHOTO_MAX_BYTES invalide: %w", err)
	}
	if config.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "1"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS invalide: %w", err)
	}
	if config.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST invalide: %w", err)
	}
	if err = config.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "debug"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL invalide: %w", err)
	}
	if _, err = time.LoadLocation(config.Timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE invalide: %w", err)
	}

	return config, nil
}

// Location retourne le fuseau horaire de l'application
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UsesCloudinary indique si les photos sont stockées sur Cloudinary
func (c *Config) UsesCloudinary() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// UsesFCM indique si les notifications push sont configurées
func (c *Config) UsesFCM() bool {
	return c.FirebaseCredentialsFile != "" || c.FirebaseCredentialsJSON != ""
}

// IsProduction indique si l'application tourne en production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv récupère une variable d'environnement avec une valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
