package accounts

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	password := "correct-horse-battery"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == password {
		t.Error("HashPassword() should not return the plaintext password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}

func TestHashPassword_HashesDiffer(t *testing.T) {
	hash1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// bcrypt salts every hash
	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := HashPassword(string(long)); err == nil {
		t.Error("HashPassword() should fail for passwords over bcrypt's 72-byte limit")
	}
}
