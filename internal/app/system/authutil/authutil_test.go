package authutil

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("unexpected hash format %q", hash)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != BcryptCost {
		t.Errorf("cost = %d, want %d", cost, BcryptCost)
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPassword_BadHash(t *testing.T) {
	if CheckPassword("anything", "") {
		t.Error("empty hash must not match")
	}
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("malformed hash must not match")
	}
}
