// Package maprender builds the self-contained Leaflet document shown on the
// map screen.
package maprender

import (
	"bytes"
	"html/template"
	"strconv"

	"cityguard/models"

	"github.com/golang/geo/s2"
)

const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

type Options struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	// FitBounds fits the view to all markers instead of the fixed center.
	FitBounds bool
	TileURL   string
}

// DefaultOptions centers the map on Budapest.
func DefaultOptions() Options {
	return Options{
		CenterLat: 47.4979,
		CenterLon: 19.0402,
		Zoom:      13,
		TileURL:   DefaultTileURL,
	}
}

// Numbers are passed as template.JS so they land in the script unpadded;
// everything user-supplied goes through the JS string escaper.
var page = template.Must(template.New("map").Parse(`<html><head><meta name="viewport" content="initial-scale=1.0">` +
	`<link rel="stylesheet" href="https://unpkg.com/leaflet/dist/leaflet.css" />` +
	`<script src="https://unpkg.com/leaflet/dist/leaflet.js"></script></head>` +
	`<body><div id="map" style="width:100%; height:100%;"></div><script>` +
	`var map=L.map('map').setView([{{.Center}}],{{.Zoom}});` +
	`L.tileLayer({{.TileURL}}).addTo(map);` +
	`{{range .Markers}}L.marker([{{.Coords}}]).addTo(map).bindPopup({{.Popup}});{{end}}` +
	`{{with .Bounds}}map.fitBounds({{.}});{{end}}` +
	`</script></body></html>`))

type marker struct {
	Coords template.JS
	Popup  string
}

type pageData struct {
	Center  template.JS
	Zoom    template.JS
	TileURL string
	Markers []marker
	Bounds  template.JS
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func coords(lat, lon float64) template.JS {
	return template.JS(formatFloat(lat) + "," + formatFloat(lon))
}

// popupHTML is the popup body: bold description, then status. Both are
// HTML-escaped because Leaflet renders popup content as markup.
func popupHTML(r models.Report) string {
	return "<b>" + template.HTMLEscapeString(r.Description) + "</b><br>" + template.HTMLEscapeString(r.Status)
}

// Bounds returns the smallest lat/lng rectangle holding every report.
func Bounds(reports []models.Report) s2.Rect {
	rect := s2.EmptyRect()
	for _, r := range reports {
		rect = rect.AddPoint(r.LatLng())
	}
	return rect
}

func boundsJS(rect s2.Rect) template.JS {
	lo, hi := rect.Lo(), rect.Hi()
	corner := func(ll s2.LatLng) string {
		return "[" + strconv.FormatFloat(ll.Lat.Degrees(), 'f', 6, 64) + "," +
			strconv.FormatFloat(ll.Lng.Degrees(), 'f', 6, 64) + "]"
	}
	return template.JS("[" + corner(lo) + "," + corner(hi) + "]")
}

// Render returns the map document for reports: one marker per report in the
// given order. It keeps no state between calls.
func Render(reports []models.Report, opts Options) (string, error) {
	if opts.TileURL == "" {
		opts.TileURL = DefaultTileURL
	}

	data := pageData{
		Center:  coords(opts.CenterLat, opts.CenterLon),
		Zoom:    template.JS(strconv.Itoa(opts.Zoom)),
		TileURL: opts.TileURL,
		Markers: make([]marker, 0, len(reports)),
	}
	for _, r := range reports {
		data.Markers = append(data.Markers, marker{
			Coords: coords(r.Latitude, r.Longitude),
			Popup:  popupHTML(r),
		})
	}
	// A single marker has no extent to fit; keep the configured zoom. Leaflet
	// cannot express a box crossing the antimeridian, so such sets keep the
	// configured view too.
	if opts.FitBounds && len(reports) > 1 {
		if rect := Bounds(reports); !rect.Lng.IsInverted() {
			data.Bounds = boundsJS(rect)
		}
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
