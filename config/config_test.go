package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "config.json")
	if err != nil {
		t.Fatalf("Failed to create temporary file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temporary file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temporary file: %v", err)
	}
	return tmpfile.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `{
		"app_name": "TestApp",
		"listen_ip": "127.0.0.1",
		"listen_port": 9090,
		"session_key": "test-session-key",
		"db_driver": "sqlite3",
		"db_dsn": ":memory:"
	}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.AppName != "TestApp" {
		t.Errorf("Expected AppName 'TestApp', got '%s'", AppConfig.AppName)
	}
	if AppConfig.ListenIP != "127.0.0.1" {
		t.Errorf("Expected ListenIP '127.0.0.1', got '%s'", AppConfig.ListenIP)
	}
	if AppConfig.ListenPort != 9090 {
		t.Errorf("Expected ListenPort 9090, got %d", AppConfig.ListenPort)
	}
	if AppConfig.SessionKey != "test-session-key" {
		t.Errorf("Expected SessionKey 'test-session-key', got '%s'", AppConfig.SessionKey)
	}
	if AppConfig.DBDSN != ":memory:" {
		t.Errorf("Expected DBDSN ':memory:', got '%s'", AppConfig.DBDSN)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeTempConfig(t, `{"session_key": "k"}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.MapCenterLat != 47.4979 || AppConfig.MapCenterLon != 19.0402 || AppConfig.MapZoom != 13 {
		t.Errorf("Map defaults not applied: %+v", AppConfig)
	}
	if AppConfig.TokenTTLHours != 72 {
		t.Errorf("Expected TokenTTLHours 72, got %d", AppConfig.TokenTTLHours)
	}
	if AppConfig.DBDriver != "sqlite3" {
		t.Errorf("Expected default driver sqlite3, got %s", AppConfig.DBDriver)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `{"session_key": "from-file", "listen_port": 9090}`)
	t.Setenv("CITYGUARD_SESSION_KEY", "from-env")
	t.Setenv("CITYGUARD_LISTEN_PORT", "7070")
	t.Setenv("CITYGUARD_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.SessionKey != "from-env" {
		t.Errorf("Expected env session key, got %s", AppConfig.SessionKey)
	}
	if AppConfig.ListenPort != 7070 {
		t.Errorf("Expected env port 7070, got %d", AppConfig.ListenPort)
	}
	if len(AppConfig.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 origins, got %v", AppConfig.AllowedOrigins)
	}
}

func TestLoadConfigGeneratesSessionKey(t *testing.T) {
	path := writeTempConfig(t, `{"session_key": "CHANGE_ME_IN_PRODUCTION"}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(AppConfig.SessionKey) != 64 {
		t.Errorf("Expected a generated 32-byte hex key, got %q", AppConfig.SessionKey)
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("CITYGUARD_API_URL", "http://api.example.test/")
	t.Setenv("CITYGUARD_SESSION_KEY", "from-env")

	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("LoadConfig with a missing file should fall back, got %v", err)
	}

	if AppConfig.APIURL != "http://api.example.test/" {
		t.Errorf("Expected env API URL, got %s", AppConfig.APIURL)
	}
	if AppConfig.SessionKey != "from-env" {
		t.Errorf("Expected env session key, got %s", AppConfig.SessionKey)
	}
	if AppConfig.ListenPort != 8080 {
		t.Errorf("Expected default port 8080, got %d", AppConfig.ListenPort)
	}
}

func TestLoadConfigTypedEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `{"session_key": "k", "secure_cookies": true, "map_zoom": 10}`)
	t.Setenv("CITYGUARD_TOKEN_TTL_HOURS", "12")
	t.Setenv("CITYGUARD_SECURE_COOKIES", "false")
	t.Setenv("CITYGUARD_REQUIRE_CAPTCHA", "true")
	t.Setenv("CITYGUARD_TRUST_PROXY_HEADERS", "1")
	t.Setenv("CITYGUARD_DEFAULT_LANG", "hu")
	t.Setenv("CITYGUARD_TRANSLATIONS_DIR", "/etc/cityguard/i18n")
	t.Setenv("CITYGUARD_MAP_CENTER_LAT", "46.253")
	t.Setenv("CITYGUARD_MAP_CENTER_LON", "20.1414")
	t.Setenv("CITYGUARD_MAP_ZOOM", "15")
	t.Setenv("CITYGUARD_MAP_FIT_BOUNDS", "true")

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.TokenTTLHours != 12 {
		t.Errorf("Expected TokenTTLHours 12, got %d", AppConfig.TokenTTLHours)
	}
	if AppConfig.SecureCookies {
		t.Error("Expected env to switch secure cookies off")
	}
	if !AppConfig.RequireCaptcha || !AppConfig.TrustProxyHeaders || !AppConfig.MapFitBounds {
		t.Errorf("Boolean env overrides not applied: %+v", AppConfig)
	}
	if AppConfig.DefaultLang != "hu" || AppConfig.TranslationsDir != "/etc/cityguard/i18n" {
		t.Errorf("String env overrides not applied: %+v", AppConfig)
	}
	if AppConfig.MapCenterLat != 46.253 || AppConfig.MapCenterLon != 20.1414 || AppConfig.MapZoom != 15 {
		t.Errorf("Map env overrides not applied: %+v", AppConfig)
	}
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	path := writeTempConfig(t, `{"session_key": "k", "secure_cookies": true}`)
	t.Setenv("CITYGUARD_SECURE_COOKIES", "maybe")
	t.Setenv("CITYGUARD_MAP_CENTER_LAT", "north")

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !AppConfig.SecureCookies {
		t.Error("A malformed boolean should keep the file value")
	}
	if AppConfig.MapCenterLat != 47.4979 {
		t.Errorf("A malformed float should keep the default, got %v", AppConfig.MapCenterLat)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeTempConfig(t, `{ "invalid": json }`)

	err := LoadConfig(path)
	if err == nil {
		t.Error("LoadConfig with invalid JSON should have failed")
	}
}
