// Package config loads server configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"databaseURL"`
	LogLevel    string `yaml:"logLevel"`

	JWTSecret string `yaml:"jwtSecret"`
	TokenTTL  string `yaml:"tokenTTL"`

	GeminiAPIKey string `yaml:"geminiAPIKey"`
	GeminiModel  string `yaml:"geminiModel"`

	MailEndpoint  string `yaml:"mailEndpoint"`
	MailAPIKey    string `yaml:"mailAPIKey"`
	MailFrom      string `yaml:"mailFrom"`
	VerifyBaseURL string `yaml:"verifyBaseURL"`

	RedisAddr          string `yaml:"redisAddr"`
	RedisPassword      string `yaml:"redisPassword"`
	RateLimitPerMinute int    `yaml:"rateLimitPerMinute"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	// HoroscopeHour is a pointer so a configured midnight (0) is
	// distinguishable from an absent value.
	HoroscopeHour      *int     `yaml:"horoscopeHour"`
	HoroscopeLanguages []string `yaml:"horoscopeLanguages"`
	HoroscopePause     string   `yaml:"horoscopePause"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnvOverrides(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *FileConfig) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		cfg.TokenTTL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("MAIL_ENDPOINT"); v != "" {
		cfg.MailEndpoint = v
	}
	if v := os.Getenv("MAIL_API_KEY"); v != "" {
		cfg.MailAPIKey = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.MailFrom = v
	}
	if v := os.Getenv("VERIFY_BASE_URL"); v != "" {
		cfg.VerifyBaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("HOROSCOPE_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HoroscopeHour = &n
		}
	}
	if v := os.Getenv("HOROSCOPE_LANGUAGES"); v != "" {
		var langs []string
		for _, lang := range strings.Split(v, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				langs = append(langs, lang)
			}
		}
		cfg.HoroscopeLanguages = langs
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set DATABASE_URL)")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return errors.New("config: jwtSecret is required (set JWT_SECRET)")
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return errors.New("config: geminiAPIKey is required (set GEMINI_API_KEY)")
	}
	if cfg.RateLimitPerMinute < 0 {
		return errors.New("config: rateLimitPerMinute must be >= 0")
	}
	if cfg.HoroscopeHour != nil && (*cfg.HoroscopeHour < 0 || *cfg.HoroscopeHour > 23) {
		return errors.New("config: horoscopeHour must be between 0 and 23")
	}
	return nil
}

// ParseTokenTTL parses the optional token TTL duration string.
func ParseTokenTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid tokenTTL duration: %w", err)
	}
	return dur, nil
}

// ParseHoroscopePause parses the optional pause duration string.
func ParseHoroscopePause(pauseStr string) (time.Duration, error) {
	if pauseStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(pauseStr)
	if err != nil {
		return 0, fmt.Errorf("invalid horoscopePause duration: %w", err)
	}
	return dur, nil
}
