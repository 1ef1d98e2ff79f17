package models

import (
	"time"

	"github.com/golang/geo/s2"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Report statuses written by the server. Clients treat status as an opaque string.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

type Report struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"` // device URI, never the image bytes
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// LatLng returns the report position for geometry helpers.
func (r Report) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(r.Latitude, r.Longitude)
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// APISession is the persisted half of a bearer token; deleting it revokes the token.
type APISession struct {
	TokenID   string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}
