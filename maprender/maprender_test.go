package maprender

import (
	"strings"
	"testing"

	"cityguard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmpty(t *testing.T) {
	html, err := Render(nil, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, html, "setView([47.4979,19.0402],13)")
	assert.Contains(t, html, "leaflet.js")
	assert.NotContains(t, html, "L.marker(")
	assert.NotContains(t, html, "fitBounds")
}

func TestRenderOneMarkerPerReport(t *testing.T) {
	reports := []models.Report{
		{ID: 1, Description: "pothole", Status: "pending", Latitude: 47.5, Longitude: 19.04},
		{ID: 2, Description: "broken lamp", Status: "resolved", Latitude: 47.49, Longitude: 19.05},
		{ID: 3, Description: "graffiti", Status: "in_progress", Latitude: -33.8688, Longitude: 151.2093},
	}

	html, err := Render(reports, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, len(reports), strings.Count(html, "L.marker("))
	assert.Contains(t, html, "L.marker([47.5,19.04])")
	assert.Contains(t, html, "L.marker([47.49,19.05])")
	assert.Contains(t, html, "L.marker([-33.8688,151.2093])")
	for _, r := range reports {
		assert.Contains(t, html, r.Description)
		assert.Contains(t, html, r.Status)
	}

	// Markers follow collection order
	assert.Less(t, strings.Index(html, "pothole"), strings.Index(html, "broken lamp"))
}

func TestRenderEscapesReportText(t *testing.T) {
	reports := []models.Report{{
		Description: `"</script><script>alert(1)</script>`,
		Status:      `<img src=x onerror=alert(2)>`,
		Latitude:    47.5,
		Longitude:   19.04,
	}}

	html, err := Render(reports, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(html, "<script>"), "only the map script may open a script element")
	assert.NotContains(t, html, "alert(1)</script>")
	assert.NotContains(t, html, "<img")
	assert.Equal(t, 1, strings.Count(html, "L.marker("))
}

func TestRenderFitBounds(t *testing.T) {
	reports := []models.Report{
		{Description: "a", Status: "pending", Latitude: 47.4, Longitude: 19.0},
		{Description: "b", Status: "pending", Latitude: 47.6, Longitude: 19.2},
	}
	opts := DefaultOptions()
	opts.FitBounds = true

	html, err := Render(reports, opts)
	require.NoError(t, err)
	assert.Contains(t, html, "map.fitBounds([[47.400000,19.000000],[47.600000,19.200000]])")

	// One report has nothing to fit
	html, err = Render(reports[:1], opts)
	require.NoError(t, err)
	assert.NotContains(t, html, "fitBounds")
}

func TestRenderAntimeridianKeepsCenter(t *testing.T) {
	reports := []models.Report{
		{Description: "west", Status: "pending", Latitude: -16.5, Longitude: 179.0},
		{Description: "east", Status: "pending", Latitude: -16.8, Longitude: -179.0},
	}
	require.True(t, Bounds(reports).Lng.IsInverted())

	opts := DefaultOptions()
	opts.FitBounds = true
	html, err := Render(reports, opts)
	require.NoError(t, err)

	assert.NotContains(t, html, "fitBounds")
	assert.Contains(t, html, "setView([47.4979,19.0402],13)")
	assert.Equal(t, 2, strings.Count(html, "L.marker("))
}

func TestRenderCustomOptions(t *testing.T) {
	html, err := Render(nil, Options{CenterLat: 48.2082, CenterLon: 16.3738, Zoom: 11})
	require.NoError(t, err)

	assert.Contains(t, html, "setView([48.2082,16.3738],11)")
	// Empty tile URL falls back to OpenStreetMap
	assert.Contains(t, html, "tile.openstreetmap.org")
}

func TestBounds(t *testing.T) {
	rect := Bounds([]models.Report{
		{Latitude: 10, Longitude: 20},
		{Latitude: -5, Longitude: 25},
		{Latitude: 3, Longitude: 21},
	})

	assert.InDelta(t, -5, rect.Lo().Lat.Degrees(), 1e-9)
	assert.InDelta(t, 20, rect.Lo().Lng.Degrees(), 1e-9)
	assert.InDelta(t, 10, rect.Hi().Lat.Degrees(), 1e-9)
	assert.InDelta(t, 25, rect.Hi().Lng.Degrees(), 1e-9)

	assert.True(t, Bounds(nil).IsEmpty())
}
