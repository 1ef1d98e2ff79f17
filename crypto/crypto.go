// Package crypto holds the credential primitives: salted password hashing and
// random token material.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is lowered by tests; production keeps the default.
var BcryptCost = bcrypt.DefaultCost

// DummyHash is compared against when a login names an unknown account so the
// request costs the same as a real password check.
var DummyHash string

func init() {
	h, err := bcrypt.GenerateFromPassword([]byte("cityguard-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("crypto: cannot prepare dummy hash: %v", err))
	}
	DummyHash = string(h)
}

// HashPassword returns a bcrypt hash; bcrypt embeds a per-password random salt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomKey returns n bytes from the system CSPRNG.
func RandomKey(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// RandomToken returns n random bytes, URL-safe base64 encoded.
func RandomToken(n int) (string, error) {
	b, err := RandomKey(n)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
