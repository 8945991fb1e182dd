package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	password := "S3curePass!"
	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}
	if hash == password {
		t.Fatal("hash must not equal plaintext")
	}

	if !hasher.Verify(password, hash) {
		t.Fatal("expected password to verify")
	}

	if hasher.Verify("wrong", hash) {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestHasherUsesConfiguredCost(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost + 1)
	hash, err := hasher.Hash("another-pass")
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("unexpected error reading cost: %v", err)
	}
	if cost != bcrypt.MinCost+1 {
		t.Fatalf("expected cost %d, got %d", bcrypt.MinCost+1, cost)
	}

	if got := NewHasher(99).Cost(); got != bcrypt.DefaultCost {
		t.Fatalf("expected out of range cost to fall back to %d, got %d", bcrypt.DefaultCost, got)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	for _, hash := range []string{"", "   ", "not-a-bcrypt-hash", "$2a$10$short"} {
		if hasher.Verify("whatever", hash) {
			t.Fatalf("expected malformed hash %q to fail verification", hash)
		}
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := NewHasher(bcrypt.MinCost).Hash("  "); err == nil {
		t.Fatal("expected error for empty password")
	}
}
