package accounts

import (
	"errors"
	"testing"
	"time"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:            "test-secret-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "test-issuer",
	}
}

func TestJWTManager_GenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	userID := "user-123"
	email := "alice@example.com"

	token, err := manager.GenerateAccessToken(userID, email)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Error("GenerateAccessToken() returned empty token")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("claims.Email = %v, want %v", claims.Email, email)
	}
	if claims.TokenType != "access" {
		t.Errorf("claims.TokenType = %v, want %v", claims.TokenType, "access")
	}
}

func TestJWTManager_TokenTypeCrossRejection(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	accessToken, err := manager.GenerateAccessToken("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	refreshToken, err := manager.GenerateRefreshToken("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if _, err := manager.ValidateRefreshToken(accessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateRefreshToken(access token) error = %v, want ErrInvalidToken", err)
	}
	if _, err := manager.ValidateAccessToken(refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateAccessToken(refresh token) error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "random string", token: "not.a.valid.token"},
		{name: "malformed jwt", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.ValidateAccessToken(tt.token); err == nil {
				t.Error("ValidateAccessToken() should return error for invalid token")
			}
		})
	}
}

func TestJWTManager_WrongSecretKey(t *testing.T) {
	config := testJWTConfig()
	manager1 := NewJWTManager(config)

	config.SecretKey = "another-secret-key"
	manager2 := NewJWTManager(config)

	token, err := manager1.GenerateAccessToken("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := manager2.ValidateAccessToken(token); err == nil {
		t.Error("ValidateAccessToken() should fail with different secret key")
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	config := testJWTConfig()
	config.AccessTokenDuration = 1 * time.Millisecond
	manager := NewJWTManager(config)

	token, err := manager.GenerateAccessToken("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := manager.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateAccessToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTManager_UniqueTokenIDs(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	first, err := manager.GenerateRefreshToken("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	second, err := manager.GenerateRefreshToken("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	firstClaims, err := manager.ValidateRefreshToken(first)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	secondClaims, err := manager.ValidateRefreshToken(second)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}

	if firstClaims.ID == "" {
		t.Error("refresh token should carry a jti claim")
	}
	if firstClaims.ID == secondClaims.ID {
		t.Error("two tokens for the same user should carry distinct jti claims")
	}
}

func TestJWTManager_AccessTokenSeconds(t *testing.T) {
	config := testJWTConfig()
	config.AccessTokenDuration = 30 * time.Minute
	manager := NewJWTManager(config)

	if got, want := manager.AccessTokenSeconds(), int64(30*60); got != want {
		t.Errorf("AccessTokenSeconds() = %v, want %v", got, want)
	}
}

func TestLoadJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "env-secret")
	t.Setenv("JWT_ISSUER", "env-issuer")

	config := LoadJWTConfig()
	if config.SecretKey != "env-secret" {
		t.Errorf("SecretKey = %q, want %q", config.SecretKey, "env-secret")
	}
	if config.Issuer != "env-issuer" {
		t.Errorf("Issuer = %q, want %q", config.Issuer, "env-issuer")
	}
	if config.AccessTokenDuration <= 0 || config.RefreshTokenDuration <= 0 {
		t.Error("token durations should keep their defaults")
	}
}
