package i18n

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	if err := LoadEmbedded(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestT(t *testing.T) {
	if got := T("hu", "MissingFields"); got != "Tölts ki minden mezőt!" {
		t.Errorf("Unexpected hu translation: %q", got)
	}
	if got := T("en", "MissingFields"); got != "Please fill in every field!" {
		t.Errorf("Unexpected en translation: %q", got)
	}
	// Unknown language falls back to English, unknown key to the key itself.
	if got := T("de", "Login"); got != "Log in" {
		t.Errorf("Expected English fallback, got %q", got)
	}
	if got := T("hu", "NoSuchKey"); got != "NoSuchKey" {
		t.Errorf("Expected key fallback, got %q", got)
	}
}

func TestCataloguesHaveSameKeys(t *testing.T) {
	en, hu := translations["en"], translations["hu"]
	for k := range en {
		if _, ok := hu[k]; !ok {
			t.Errorf("hu.json is missing %q", k)
		}
	}
	for k := range hu {
		if _, ok := en[k]; !ok {
			t.Errorf("en.json is missing %q", k)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	testCases := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"hu-HU,hu;q=0.9,en;q=0.8", "hu"},
		{"HU", "hu"},
		{"fr-CH, fr;q=0.9, en;q=0.8", "en"},
		{"de", "en"},
	}

	for _, tc := range testCases {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Accept-Language", tc.header)
		}
		if got := DetectLanguage(r); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestLoadTranslationsOverride(t *testing.T) {
	dir := t.TempDir()
	for _, lang := range Languages {
		data, _ := json.Marshal(map[string]string{"Login": lang + "-override"})
		if err := os.WriteFile(filepath.Join(dir, lang+".json"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() { LoadEmbedded() })

	if err := LoadTranslations(dir); err != nil {
		t.Fatalf("LoadTranslations failed: %v", err)
	}
	if got := T("hu", "Login"); got != "hu-override" {
		t.Errorf("Expected override, got %q", got)
	}

	if err := LoadTranslations(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without catalogues")
	}
}

func TestLoadTranslationsKeepsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	for _, lang := range Languages {
		data, _ := json.Marshal(map[string]string{"Login": lang + "-override"})
		if err := os.WriteFile(filepath.Join(dir, lang+".json"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() { LoadEmbedded() })

	if err := LoadTranslations(dir); err != nil {
		t.Fatalf("LoadTranslations failed: %v", err)
	}
	if got := T("en", "Login"); got != "en-override" {
		t.Errorf("Expected override, got %q", got)
	}
	if got := T("hu", "MissingFields"); got != "Tölts ki minden mezőt!" {
		t.Errorf("Keys absent from the override should survive, got %q", got)
	}

	if err := LoadEmbedded(); err != nil {
		t.Fatal(err)
	}
	if got := T("en", "Login"); got != "Log in" {
		t.Errorf("LoadEmbedded should drop overrides, got %q", got)
	}
}
