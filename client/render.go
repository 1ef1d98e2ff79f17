package client

import (
	"fmt"
	"strings"

	"cityguard/i18n"
	"cityguard/maprender"
)

// Render draws st as text for a terminal. The map screen is the Leaflet
// document itself, ready to be saved or shown in a web view.
func Render(st AppState, lang string, mapOpts maprender.Options) (string, error) {
	t := func(key string) string { return i18n.T(lang, key) }
	var b strings.Builder

	switch st.Screen {
	case ScreenLogin:
		renderCredentials(&b, st, t)
		fmt.Fprintf(&b, "[ %s ]\n", t("Login"))
		fmt.Fprintf(&b, "%s\n", t("NoAccount"))

	case ScreenRegister:
		renderCredentials(&b, st, t)
		fmt.Fprintf(&b, "[ %s ]\n", t("Register"))
		fmt.Fprintf(&b, "%s\n", t("HaveAccount"))

	case ScreenHome:
		renderNavbar(&b, t)
		fmt.Fprintf(&b, "%s\n", t("Welcome"))

	case ScreenReport:
		renderNavbar(&b, t)
		fmt.Fprintf(&b, "%s: %s\n", t("DescriptionPlaceholder"), st.Description)
		fmt.Fprintf(&b, "[ %s ]\n", t("PickImage"))
		if st.Image != "" {
			fmt.Fprintf(&b, "  %s\n", st.Image)
		}
		fmt.Fprintf(&b, "[ %s ]\n", t("GetLocation"))
		if st.Location != nil {
			fmt.Fprintf(&b, "  %s (%g, %g)\n", t("LocationCaptured"), st.Location.Latitude, st.Location.Longitude)
		}
		fmt.Fprintf(&b, "[ %s ]\n", t("SubmitReport"))

	case ScreenList:
		renderNavbar(&b, t)
		if len(st.Reports) == 0 {
			fmt.Fprintf(&b, "%s\n", t("NoReports"))
		}
		for _, r := range st.Reports {
			fmt.Fprintf(&b, "+ %s\n  %s: %s\n", r.Description, t("Status"), r.Status)
		}

	case ScreenMap:
		doc, err := maprender.Render(st.Reports, mapOpts)
		if err != nil {
			return "", err
		}
		return doc, nil

	default:
		return "", fmt.Errorf("render: unknown screen %d", int(st.Screen))
	}

	return b.String(), nil
}

func renderCredentials(b *strings.Builder, st AppState, t func(string) string) {
	fmt.Fprintf(b, "%s\n\n", t("AppTitle"))
	fmt.Fprintf(b, "%s: %s\n", t("Email"), st.Email)
	fmt.Fprintf(b, "%s: %s\n", t("Password"), strings.Repeat("*", len([]rune(st.Password))))
}

func renderNavbar(b *strings.Builder, t func(string) string) {
	fmt.Fprintf(b, "| %s | %s | %s |\n\n", t("NavReport"), t("NavList"), t("NavMap"))
}
