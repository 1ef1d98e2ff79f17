package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

//go:embed *.json
var embedded embed.FS

var Languages = []string{"en", "hu"}

var translations = make(map[string]map[string]string)
var DefaultLang = "en"

// LoadEmbedded resets the catalogues to the ones compiled into the binary.
func LoadEmbedded() error {
	translations = make(map[string]map[string]string)
	return load(embedded)
}

// LoadTranslations merges <path>/<lang>.json over the loaded catalogues for
// every supported language. Keys absent from the files keep their text.
func LoadTranslations(path string) error {
	return load(os.DirFS(path))
}

func load(fsys fs.FS) error {
	for _, lang := range Languages {
		data, err := fs.ReadFile(fsys, lang+".json")
		if err != nil {
			return err
		}
		var t map[string]string
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("parsing %s.json: %w", lang, err)
		}
		if translations[lang] == nil {
			translations[lang] = make(map[string]string, len(t))
		}
		for k, v := range t {
			translations[lang][k] = v
		}
	}
	return nil
}

func Supported(lang string) bool {
	_, ok := translations[lang]
	return ok
}

func T(lang, key string) string {
	if t, ok := translations[lang]; ok {
		if val, ok := t[key]; ok {
			return val
		}
	}
	// Fallback to English
	if lang != DefaultLang {
		return T(DefaultLang, key)
	}
	return key
}

func DetectLanguage(r *http.Request) string {
	// 1. Check Accept-Language header
	accept := r.Header.Get("Accept-Language")
	if accept != "" {
		// Example: hu-HU, hu;q=0.9, en;q=0.8
		parts := strings.Split(accept, ",")
		for _, part := range parts {
			lang := strings.TrimSpace(strings.Split(part, ";")[0])
			if len(lang) >= 2 {
				lang = strings.ToLower(lang[:2]) // e.g., "en-US" -> "en"
				if _, ok := translations[lang]; ok {
					return lang
				}
			}
		}
	}

	return DefaultLang
}
