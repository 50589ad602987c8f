package service

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("Admin@123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "Admin@123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !h.Verify("Admin@123", hash) {
		t.Fatalf("Verify rejected the right password")
	}
	if h.Verify("admin@123", hash) {
		t.Fatalf("Verify accepted a wrong password")
	}
}

func TestPasswordHasher_Salted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatalf("two hashes of the same input must differ")
	}
}

func TestPasswordHasher_MalformedHashFailsClosed(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if h.Verify("x", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must not verify")
	}
	if h.Verify("", "") {
		t.Fatalf("empty hash must not verify")
	}
}

func TestPasswordHasher_DefaultCost(t *testing.T) {
	h := NewPasswordHasher(0)
	hash, err := h.Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != passwordCost {
		t.Fatalf("expected cost %d, got %d (%v)", passwordCost, cost, err)
	}
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatalf("expected error for password over 72 bytes")
	}
}
