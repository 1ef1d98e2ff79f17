package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cityguard/models"
)

// Response is the envelope the server answers write requests with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  int64  `json:"user_id,omitempty"`
	Token   string `json:"token,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// AppError is a request the server answered with success:false.
type AppError struct {
	StatusCode int
	Message    string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type ReportInput struct {
	UserID      int64   `json:"user_id"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Backend is the server as the controller sees it.
type Backend interface {
	Register(ctx context.Context, email, password string) (Response, error)
	Login(ctx context.Context, email, password string) (Response, error)
	SubmitReport(ctx context.Context, token string, report ReportInput) (Response, error)
	FetchReports(ctx context.Context) ([]models.Report, error)
	Logout(ctx context.Context, token string) error
}

// API talks to the CityGuard server over HTTP using the paths the mobile
// app has always used.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
	// Language is sent as Accept-Language so server messages match the UI.
	Language string
}

func NewAPI(baseURL string) *API {
	return &API{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

func (a *API) url(path string) string {
	return strings.TrimRight(a.BaseURL, "/") + "/" + path
}

func (a *API) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.url(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if a.Language != "" {
		req.Header.Set("Accept-Language", a.Language)
	}

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// call sends body and decodes the envelope. A success:false answer comes
// back as *AppError alongside the decoded response.
func (a *API) call(ctx context.Context, path, token string, body any) (Response, error) {
	resp, err := a.do(ctx, http.MethodPost, path, token, body)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding %s response (status %d): %w", path, resp.StatusCode, err)
	}
	if !out.Success {
		return out, &AppError{StatusCode: resp.StatusCode, Message: out.Message}
	}
	return out, nil
}

func (a *API) Register(ctx context.Context, email, password string) (Response, error) {
	return a.call(ctx, "register.php", "", map[string]string{"email": email, "password": password})
}

func (a *API) Login(ctx context.Context, email, password string) (Response, error) {
	return a.call(ctx, "login.php", "", map[string]string{"email": email, "password": password})
}

func (a *API) SubmitReport(ctx context.Context, token string, report ReportInput) (Response, error) {
	return a.call(ctx, "submit_report.php", token, report)
}

func (a *API) Logout(ctx context.Context, token string) error {
	_, err := a.call(ctx, "api/v1/logout", token, nil)
	return err
}

func (a *API) FetchReports(ctx context.Context) ([]models.Report, error) {
	resp, err := a.do(ctx, http.MethodGet, "get_reports.php", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var out Response
		json.NewDecoder(resp.Body).Decode(&out)
		return nil, &AppError{StatusCode: resp.StatusCode, Message: out.Message}
	}

	var reports []models.Report
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		return nil, fmt.Errorf("decoding reports: %w", err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}
