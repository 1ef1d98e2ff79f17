package client

import (
	"fmt"

	"cityguard/models"
)

// Screen is the single view the app currently shows.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenHome
	ScreenReport
	ScreenList
	ScreenMap
)

var screenNames = map[Screen]string{
	ScreenLogin:    "login",
	ScreenRegister: "register",
	ScreenHome:     "home",
	ScreenReport:   "report",
	ScreenList:     "list",
	ScreenMap:      "map",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Screen(%d)", int(s))
}

func (s Screen) valid() bool {
	_, ok := screenNames[s]
	return ok
}

// requiresSession reports whether the screen is only reachable after login.
func (s Screen) requiresSession() bool {
	return s != ScreenLogin && s != ScreenRegister
}

func ParseScreen(name string) (Screen, error) {
	for s, n := range screenNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}

type Location struct {
	Latitude  float64
	Longitude float64
}

// AppState is everything the app shows. The controller owns it; observers
// and callers only ever see copies.
type AppState struct {
	Screen Screen

	Email    string
	Password string

	UserID int64
	Token  string

	Description string
	Image       string
	Location    *Location

	Reports []models.Report
}

func (s AppState) LoggedIn() bool {
	return s.UserID != 0
}

func (s AppState) clone() AppState {
	c := s
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	if s.Reports != nil {
		c.Reports = append([]models.Report(nil), s.Reports...)
	}
	return c
}
