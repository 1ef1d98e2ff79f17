package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cityguard/auth"
	"cityguard/common"
	"cityguard/config"
	"cityguard/crypto"
	"cityguard/db"
	"cityguard/i18n"
	"cityguard/models"

	"github.com/apex/log"
	"github.com/dchest/captcha"
	"github.com/gorilla/csrf"
)

// APIResponse is the envelope every write endpoint answers with. Existing
// mobile clients only look at success and message.
type APIResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	UserID    int64  `json:"user_id,omitempty"`
	Token     string `json:"token,omitempty"`
	ID        int64  `json:"id,omitempty"`
	CaptchaID string `json:"captcha_id,omitempty"`
	CSRFToken string `json:"csrf_token,omitempty"`
}

type categoriesResponse struct {
	Items []models.Category `json:"items"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func sendError(w http.ResponseWriter, status int, lang, key string) {
	sendJSONResponse(w, status, APIResponse{Success: false, Message: i18n.T(lang, key)})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	CaptchaID       string `json:"captcha_id"`
	CaptchaSolution string `json:"captcha_solution"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type submitReportRequest struct {
	UserID      *int64   `json:"user_id"`
	CategoryID  *int64   `json:"category_id"`
	Description string   `json:"description" validate:"required"`
	Image       string   `json:"image"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	ctx := r.Context()

	ip := getClientIP(r)
	if !signupLimiter.Allow(ctx, ip) {
		sendError(w, http.StatusTooManyRequests, lang, "TooManyAttempts")
		return
	}

	var input registerRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, http.StatusBadRequest, lang, "InvalidRequestBody")
		return
	}
	input.Email = normalizeEmail(input.Email)

	if input.Email == "" || input.Password == "" {
		sendError(w, http.StatusBadRequest, lang, "MissingFields")
		return
	}
	if err := validate.Struct(input); err != nil {
		sendError(w, http.StatusBadRequest, lang, validationMessageKey(err))
		return
	}

	if config.AppConfig.RequireCaptcha && !captcha.VerifyString(input.CaptchaID, input.CaptchaSolution) {
		sendError(w, http.StatusBadRequest, lang, "CaptchaRequired")
		return
	}

	hashedPassword, err := crypto.HashPassword(input.Password)
	if err != nil {
		log.WithError(err).Error("hashing password")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}

	id, err := db.CreateUser(ctx, input.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			sendError(w, http.StatusConflict, lang, "EmailAlreadyExists")
			return
		}
		log.WithError(err).Error("creating user")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}

	// Record signup attempt to limit rate of creation per IP
	signupLimiter.RecordFailure(ctx, ip)

	log.WithFields(log.Fields{"user_id": id}).Info("user registered")
	sendJSONResponse(w, http.StatusCreated, APIResponse{Success: true, Message: i18n.T(lang, "RegistrationSuccessful")})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	ctx := r.Context()

	ip := getClientIP(r)
	if !loginLimiter.Allow(ctx, ip) {
		sendError(w, http.StatusTooManyRequests, lang, "TooManyAttempts")
		return
	}

	var input loginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, http.StatusBadRequest, lang, "InvalidRequestBody")
		return
	}
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		sendError(w, http.StatusBadRequest, lang, "MissingFields")
		return
	}

	user, err := db.FindUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		log.WithError(err).Error("looking up user")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}

	// Timing attack mitigation: always check password
	targetHash := crypto.DummyHash
	if user != nil {
		targetHash = user.PasswordHash
	}
	match := crypto.CheckPasswordHash(input.Password, targetHash)

	if user == nil || !match {
		loginLimiter.RecordFailure(ctx, ip)
		sendError(w, http.StatusUnauthorized, lang, "InvalidCredentials")
		return
	}

	loginLimiter.Reset(ctx, ip)

	token, err := auth.CreateAPIToken(ctx, user.ID)
	if err != nil {
		log.WithError(err).Error("issuing api token")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}
	if err := auth.SetSession(w, r, user.ID); err != nil {
		log.WithError(err).Warn("saving session cookie")
	}

	sendJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: i18n.T(lang, "LoginSuccessful"),
		UserID:  user.ID,
		Token:   token,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	id, _ := auth.IdentityFromContext(r.Context())

	if id.TokenID != "" {
		if err := auth.RevokeAPIToken(r.Context(), id.TokenID); err != nil {
			log.WithError(err).Error("revoking api token")
			sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
			return
		}
	}
	auth.ClearSession(w, r)

	sendJSONResponse(w, http.StatusOK, APIResponse{Success: true, Message: i18n.T(lang, "LoggedOut")})
}

func SubmitReportHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	var input submitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, http.StatusBadRequest, lang, "InvalidRequestBody")
		return
	}
	input.Description = strings.TrimSpace(input.Description)

	if input.Description == "" || input.Latitude == nil || input.Longitude == nil {
		sendError(w, http.StatusBadRequest, lang, "MissingFields")
		return
	}
	if err := validate.Struct(input); err != nil {
		sendError(w, http.StatusBadRequest, lang, validationMessageKey(err))
		return
	}

	// The owner always comes from the session; a body user_id is only checked.
	if input.UserID != nil && *input.UserID != id.UserID {
		sendError(w, http.StatusForbidden, lang, "Forbidden")
		return
	}

	if input.CategoryID != nil {
		ok, err := db.CategoryExists(ctx, *input.CategoryID)
		if err != nil {
			log.WithError(err).Error("checking category")
			sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
			return
		}
		if !ok {
			sendError(w, http.StatusBadRequest, lang, "UnknownCategory")
			return
		}
	}

	reportID, err := db.CreateReport(ctx, db.NewReport{
		UserID:      id.UserID,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Image:       strings.TrimSpace(input.Image),
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
	})
	if err != nil {
		log.WithError(err).Error("creating report")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}

	log.WithFields(log.Fields{"report_id": reportID, "user_id": id.UserID}).Info("report submitted")
	sendJSONResponse(w, http.StatusCreated, APIResponse{Success: true, Message: i18n.T(lang, "ReportSubmitted"), ID: reportID})
}

func GetReportsHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)

	reports, err := db.ListReports(r.Context())
	if err != nil {
		log.WithError(err).Error("listing reports")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}

	sendJSONResponse(w, http.StatusOK, reports)
}

func CategoriesListHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)

	categories, err := db.ListCategories(r.Context())
	if err != nil {
		log.WithError(err).Error("listing categories")
		sendError(w, http.StatusInternalServerError, lang, "InternalServerError")
		return
	}

	sendJSONResponse(w, http.StatusOK, categoriesResponse{Items: categories})
}

func NewCaptchaHandler(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, APIResponse{Success: true, CaptchaID: captcha.New()})
}

func CSRFTokenHandler(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, APIResponse{Success: true, CSRFToken: csrf.Token(r)})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}
