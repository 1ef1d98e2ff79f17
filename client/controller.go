// Package client is the CityGuard app without its widgets: the state the
// screens show, the actions behind every button, and a text renderer.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cityguard/i18n"
)

var (
	ErrMissingFields    = errors.New("required fields are empty")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrPermissionDenied = errors.New("location permission denied")
	ErrNoImagePicker    = errors.New("no image picker available")
)

// Controller owns the AppState and runs every user action against the
// Backend. Each action makes at most one request (plus the report refresh
// that follows login and submission) and reports every failure through the
// Notifier. Nothing is retried.
type Controller struct {
	mu        sync.Mutex
	state     AppState
	observers []func(AppState)

	backend  Backend
	notifier Notifier
	picker   ImagePicker
	locator  Locator
	lang     string
}

type Option func(*Controller)

func WithImagePicker(p ImagePicker) Option { return func(c *Controller) { c.picker = p } }

func WithLocator(l Locator) Option { return func(c *Controller) { c.locator = l } }

// WithLanguage selects the catalogue for client-side messages.
func WithLanguage(lang string) Option { return func(c *Controller) { c.lang = lang } }

func NewController(backend Backend, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		notifier: notifier,
		locator:  DeniedLocator{},
		lang:     i18n.DefaultLang,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Language() string { return c.lang }

// Subscribe registers fn to receive a snapshot after every change.
func (c *Controller) Subscribe(fn func(AppState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) update(fn func(s *AppState)) {
	c.mu.Lock()
	fn(&c.state)
	snapshot := c.state.clone()
	observers := append(([]func(AppState))(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o(snapshot)
	}
}

func (c *Controller) alert(message string) {
	if c.notifier != nil {
		c.notifier.Alert(message)
	}
}

func (c *Controller) alertMissingFields() error {
	c.alert(i18n.T(c.lang, "MissingFields"))
	return ErrMissingFields
}

func (c *Controller) SetEmail(email string) {
	c.update(func(s *AppState) { s.Email = email })
}

func (c *Controller) SetPassword(password string) {
	c.update(func(s *AppState) { s.Password = password })
}

func (c *Controller) SetDescription(description string) {
	c.update(func(s *AppState) { s.Description = description })
}

// Register creates an account and moves to the login screen on success.
func (c *Controller) Register(ctx context.Context) error {
	st := c.State()
	if st.Email == "" || st.Password == "" {
		return c.alertMissingFields()
	}

	resp, err := c.backend.Register(ctx, st.Email, st.Password)
	if err != nil {
		c.alert(err.Error())
		return err
	}
	c.alert(resp.Message)

	c.update(func(s *AppState) { s.Screen = ScreenLogin })
	return nil
}

// Login stores the session, moves home and loads the reports once.
func (c *Controller) Login(ctx context.Context) error {
	st := c.State()
	if st.Email == "" || st.Password == "" {
		return c.alertMissingFields()
	}

	resp, err := c.backend.Login(ctx, st.Email, st.Password)
	if err != nil {
		c.alert(err.Error())
		return err
	}
	c.alert(resp.Message)

	c.update(func(s *AppState) {
		s.Screen = ScreenHome
		s.UserID = resp.UserID
		s.Token = resp.Token
	})
	return c.FetchReports(ctx)
}

// PickImage stores the chosen photo URI. Cancelling changes nothing.
func (c *Controller) PickImage(ctx context.Context) error {
	if c.picker == nil {
		c.alert(ErrNoImagePicker.Error())
		return ErrNoImagePicker
	}

	uri, ok, err := c.picker.PickImage(ctx)
	if err != nil {
		c.alert(err.Error())
		return err
	}
	if !ok {
		return nil
	}

	c.update(func(s *AppState) { s.Image = uri })
	return nil
}

// GetLocation captures the device position. A refused permission leaves the
// location unset without telling the user.
func (c *Controller) GetLocation(ctx context.Context) error {
	granted, err := c.locator.RequestPermission(ctx)
	if err != nil {
		c.alert(err.Error())
		return err
	}
	if !granted {
		return nil
	}

	loc, err := c.locator.CurrentPosition(ctx)
	if err != nil {
		c.alert(err.Error())
		return err
	}

	c.update(func(s *AppState) { s.Location = &loc })
	return nil
}

// SubmitReport sends the draft. On success the draft is cleared, the list is
// reloaded and the list screen shown.
func (c *Controller) SubmitReport(ctx context.Context) error {
	st := c.State()
	if st.Description == "" || st.Location == nil {
		return c.alertMissingFields()
	}

	resp, err := c.backend.SubmitReport(ctx, st.Token, ReportInput{
		UserID:      st.UserID,
		Description: st.Description,
		Image:       st.Image,
		Latitude:    st.Location.Latitude,
		Longitude:   st.Location.Longitude,
	})
	if err != nil {
		c.alert(err.Error())
		return err
	}
	c.alert(resp.Message)

	c.update(func(s *AppState) {
		s.Description = ""
		s.Image = ""
		s.Location = nil
	})
	err = c.FetchReports(ctx)
	c.update(func(s *AppState) { s.Screen = ScreenList })
	return err
}

// FetchReports replaces the local list with the server's.
func (c *Controller) FetchReports(ctx context.Context) error {
	reports, err := c.backend.FetchReports(ctx)
	if err != nil {
		c.alert(err.Error())
		return err
	}

	c.update(func(s *AppState) { s.Reports = reports })
	return nil
}

// Navigate switches screens. Everything past login needs a session.
func (c *Controller) Navigate(screen Screen) error {
	if !screen.valid() {
		return fmt.Errorf("navigate: unknown screen %d", int(screen))
	}
	if screen.requiresSession() && !c.State().LoggedIn() {
		return ErrNotLoggedIn
	}

	c.update(func(s *AppState) { s.Screen = screen })
	return nil
}

// Logout revokes the token and drops all session data. Local state is reset
// even when the server call fails.
func (c *Controller) Logout(ctx context.Context) error {
	st := c.State()

	var err error
	if st.Token != "" {
		if err = c.backend.Logout(ctx, st.Token); err != nil {
			c.alert(err.Error())
		}
	}

	c.update(func(s *AppState) { *s = AppState{Screen: ScreenLogin} })
	return err
}
