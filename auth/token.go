package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cityguard/config"
	"cityguard/db"
	"cityguard/models"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var TokenAuth *jwtauth.JWTAuth

const defaultTokenTTL = 72 * time.Hour

func InitJWT() {
	key := []byte(config.AppConfig.SessionKey + "jwt")
	TokenAuth = jwtauth.New("HS256", key, nil)
}

func tokenTTL() time.Duration {
	if config.AppConfig.TokenTTLHours <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(config.AppConfig.TokenTTLHours) * time.Hour
}

// CreateAPIToken signs a bearer token for userID and records its id so it can
// be revoked before it expires.
func CreateAPIToken(ctx context.Context, userID int64) (string, error) {
	now := time.Now()
	expiresAt := now.Add(tokenTTL())
	tokenID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": tokenID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	err = db.CreateAPISession(ctx, models.APISession{TokenID: tokenID, UserID: userID, ExpiresAt: expiresAt})
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func RevokeAPIToken(ctx context.Context, tokenID string) error {
	return db.DeleteAPISession(ctx, tokenID)
}
