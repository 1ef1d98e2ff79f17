package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = bcrypt.DefaultCost }()

	password := "correct horse battery staple"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == password {
		t.Error("Hash equals the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Expected a bcrypt hash, got %q", hash)
	}
	if !CheckPasswordHash(password, hash) {
		t.Error("CheckPasswordHash failed for correct password")
	}
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("CheckPasswordHash succeeded for wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = bcrypt.DefaultCost }()

	h1, _ := HashPassword("same-password")
	h2, _ := HashPassword("same-password")
	if h1 == h2 {
		t.Error("Two hashes of the same password are identical; salt missing")
	}
}

func TestDummyHashNeverMatchesEmpty(t *testing.T) {
	if DummyHash == "" {
		t.Fatal("DummyHash not initialised")
	}
	if CheckPasswordHash("", DummyHash) {
		t.Error("Empty password matched the dummy hash")
	}
}

func TestRandomToken(t *testing.T) {
	t1, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken failed: %v", err)
	}
	t2, _ := RandomToken(32)

	if t1 == t2 {
		t.Error("RandomToken produced identical tokens")
	}
	raw, err := base64.URLEncoding.DecodeString(t1)
	if err != nil {
		t.Fatalf("Token is not URL-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("Expected 32 random bytes, got %d", len(raw))
	}
}
