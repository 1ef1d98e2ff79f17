package client

import (
	"strings"
	"testing"

	"cityguard/maprender"
	"cityguard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEveryScreen(t *testing.T) {
	st := AppState{
		Email:       "anna@example.com",
		Password:    "secret",
		Description: "pothole",
		Image:       "file:///hole.jpg",
		Location:    &Location{Latitude: 47.5, Longitude: 19.04},
		Reports: []models.Report{
			{ID: 1, Description: "pothole", Status: "pending", Latitude: 47.5, Longitude: 19.04},
		},
	}

	testCases := []struct {
		screen Screen
		want   []string
	}{
		{ScreenLogin, []string{"CityŐr", "anna@example.com", "******", "Bejelentkezés", "Nincs fiókod? Regisztráció"}},
		{ScreenRegister, []string{"Regisztráció", "Már van fiókod? Bejelentkezés"}},
		{ScreenHome, []string{"Bejelentés", "Lista", "Térkép", "Üdv a CityŐr alkalmazásban!"}},
		{ScreenReport, []string{"Probléma leírása: pothole", "file:///hole.jpg", "Hely rögzítve", "Bejelentés küldése"}},
		{ScreenList, []string{"+ pothole", "Állapot: pending"}},
		{ScreenMap, []string{"L.marker([47.5,19.04])"}},
	}

	for _, tc := range testCases {
		t.Run(tc.screen.String(), func(t *testing.T) {
			st.Screen = tc.screen
			out, err := Render(st, "hu", maprender.DefaultOptions())
			require.NoError(t, err)
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
			assert.NotContains(t, out, "secret")
		})
	}
}

func TestRenderEmptyList(t *testing.T) {
	out, err := Render(AppState{Screen: ScreenList}, "en", maprender.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "No reports yet.")
}

func TestRenderReportWithoutLocation(t *testing.T) {
	out, err := Render(AppState{Screen: ScreenReport}, "en", maprender.DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, out, "Location captured")
}

func TestRenderListShowsOneCardPerReport(t *testing.T) {
	st := AppState{Screen: ScreenList, Reports: []models.Report{
		{Description: "a", Status: "pending"},
		{Description: "b", Status: "resolved"},
		{Description: "c", Status: "in_progress"},
	}}
	out, err := Render(st, "en", maprender.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Status: "))
}

func TestRenderUnknownScreen(t *testing.T) {
	_, err := Render(AppState{Screen: Screen(99)}, "en", maprender.DefaultOptions())
	assert.Error(t, err)
}
