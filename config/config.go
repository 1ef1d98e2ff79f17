package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string `json:"app_name"`
	ListenIP   string `json:"listen_ip"`
	ListenPort int    `json:"listen_port"`
	SessionKey string `json:"session_key"`

	DBDriver string `json:"db_driver"` // "sqlite3", "pgx" or "mysql"
	DBDSN    string `json:"db_dsn"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	TokenTTLHours  int      `json:"token_ttl_hours"`
	SecureCookies  bool     `json:"secure_cookies"`
	RequireCaptcha bool     `json:"require_captcha"`
	AllowedOrigins []string `json:"allowed_origins"`
	DefaultLang    string   `json:"default_lang"`

	// TranslationsDir holds en.json/hu.json overriding built-in messages.
	TranslationsDir   string `json:"translations_dir"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For and friends.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `json:"trust_proxy_headers"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // "text", "json" or "cli"

	MapCenterLat float64 `json:"map_center_lat"`
	MapCenterLon float64 `json:"map_center_lon"`
	MapZoom      int     `json:"map_zoom"`
	MapFitBounds bool    `json:"map_fit_bounds"`

	// APIURL is where the terminal client sends its requests.
	APIURL string `json:"api_url"`
}

var AppConfig Config

// Defaults returns the configuration used when a key is absent from the file.
func Defaults() Config {
	return Config{
		AppName:        "CityGuard",
		ListenIP:       "0.0.0.0",
		ListenPort:     8080,
		DBDriver:       "sqlite3",
		DBDSN:          "./cityguard.db",
		TokenTTLHours:  72,
		AllowedOrigins: []string{"*"},
		DefaultLang:    "en",
		LogLevel:       "info",
		LogFormat:      "text",
		MapCenterLat:   47.4979,
		MapCenterLon:   19.0402,
		MapZoom:        13,
		APIURL:         "http://localhost:8080/",
	}
}

// LoadConfig applies defaults, then the JSON file at path, then .env and
// CITYGUARD_* variables. A missing file is not an error.
func LoadConfig(path string) error {
	AppConfig = Defaults()

	if err := loadFile(path, &AppConfig); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.WithField("path", path).Debug("config file not found, using defaults")
	}

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, relying on environment variables")
	}
	applyEnv(&AppConfig)

	// If no key is provided or it's the placeholder, generate a secure random one
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Warn("no session key configured, generating a random key; sessions and tokens will be invalidated on restart")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		AppConfig.SessionKey = hex.EncodeToString(randomKey)
	}

	return nil
}

func loadFile(path string, c *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.AppName = getEnv("CITYGUARD_APP_NAME", c.AppName)
	c.SessionKey = getEnv("CITYGUARD_SESSION_KEY", c.SessionKey)
	c.ListenIP = getEnv("CITYGUARD_LISTEN_IP", c.ListenIP)
	c.ListenPort = getEnvAsInt("CITYGUARD_LISTEN_PORT", c.ListenPort)
	c.DBDriver = getEnv("CITYGUARD_DB_DRIVER", c.DBDriver)
	c.DBDSN = getEnv("CITYGUARD_DB_DSN", c.DBDSN)
	c.RedisAddr = getEnv("CITYGUARD_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("CITYGUARD_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvAsInt("CITYGUARD_REDIS_DB", c.RedisDB)
	c.LogLevel = getEnv("CITYGUARD_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("CITYGUARD_LOG_FORMAT", c.LogFormat)
	c.APIURL = getEnv("CITYGUARD_API_URL", c.APIURL)
	c.TokenTTLHours = getEnvAsInt("CITYGUARD_TOKEN_TTL_HOURS", c.TokenTTLHours)
	c.SecureCookies = getEnvAsBool("CITYGUARD_SECURE_COOKIES", c.SecureCookies)
	c.RequireCaptcha = getEnvAsBool("CITYGUARD_REQUIRE_CAPTCHA", c.RequireCaptcha)
	c.TrustProxyHeaders = getEnvAsBool("CITYGUARD_TRUST_PROXY_HEADERS", c.TrustProxyHeaders)
	c.DefaultLang = getEnv("CITYGUARD_DEFAULT_LANG", c.DefaultLang)
	c.TranslationsDir = getEnv("CITYGUARD_TRANSLATIONS_DIR", c.TranslationsDir)
	c.MapCenterLat = getEnvAsFloat("CITYGUARD_MAP_CENTER_LAT", c.MapCenterLat)
	c.MapCenterLon = getEnvAsFloat("CITYGUARD_MAP_CENTER_LON", c.MapCenterLon)
	c.MapZoom = getEnvAsInt("CITYGUARD_MAP_ZOOM", c.MapZoom)
	c.MapFitBounds = getEnvAsBool("CITYGUARD_MAP_FIT_BOUNDS", c.MapFitBounds)
	if origins := getEnv("CITYGUARD_ALLOWED_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = strings.Split(origins, ",")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}
