package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cityguard/common"
	"cityguard/config"
	"cityguard/db"

	"github.com/go-chi/jwtauth/v5"
	"github.com/gorilla/sessions"
)

var Store *sessions.CookieStore

func InitStore() {
	// Derive two 32-byte keys from the session key to ensure secure encryption
	// Auth key for signing (HMAC)
	authKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "auth"))
	// Encryption key for content encryption (AES)
	encKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "encryption"))

	Store = sessions.NewCookieStore(authKey[:], encKey[:])

	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   config.AppConfig.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

const SessionName = "cityguard-session"

func GetUserID(r *http.Request) int64 {
	session, _ := Store.Get(r, SessionName)
	if id, ok := session.Values["userID"].(int64); ok {
		return id
	}
	return 0
}

func SetSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := Store.Get(r, SessionName)
	session.Values["userID"] = userID
	return session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
}

// HasSessionCookie reports whether the request carries the browser session cookie.
func HasSessionCookie(r *http.Request) bool {
	_, err := r.Cookie(SessionName)
	return err == nil
}

// Identity is the authenticated caller. TokenID is empty for cookie sessions.
type Identity struct {
	UserID  int64
	TokenID string
}

type contextKey string

const identityCtxKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

// Authenticate resolves the caller from a verified bearer token (see
// jwtauth.Verifier) or, failing that, from the session cookie. A bearer token
// must still have its api_sessions row; logging out deletes it.
func Authenticate(r *http.Request) (Identity, error) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err == nil && token != nil {
		sub, _ := claims["sub"].(string)
		jti, _ := claims["jti"].(string)
		userID, perr := strconv.ParseInt(sub, 10, 64)
		if perr != nil || jti == "" {
			return Identity{}, fmt.Errorf("malformed token claims: %w", common.ErrUnauthorized)
		}

		sess, err := db.GetAPISession(r.Context(), jti)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return Identity{}, fmt.Errorf("token revoked or expired: %w", common.ErrUnauthorized)
			}
			return Identity{}, err
		}
		if sess.UserID != userID {
			return Identity{}, fmt.Errorf("token subject mismatch: %w", common.ErrUnauthorized)
		}
		return Identity{UserID: userID, TokenID: jti}, nil
	}
	if err != nil && !errors.Is(err, jwtauth.ErrNoTokenFound) {
		return Identity{}, fmt.Errorf("invalid token: %v: %w", err, common.ErrUnauthorized)
	}

	if id := GetUserID(r); id != 0 {
		return Identity{UserID: id}, nil
	}
	return Identity{}, common.ErrUnauthorized
}
