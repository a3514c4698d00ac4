package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	FirstName    string `gorm:"size:100;not null"`
	LastName     string `gorm:"size:100;not null"`
	Email        string `gorm:"uniqueIndex;not null;size:200"`
	PasswordHash string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Identity is the result of verifying a connection credential.
type Identity struct {
	Anonymous bool   `json:"anonymous"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// AnonymousIdentity is returned whenever a credential cannot be resolved
// to an existing user.
func AnonymousIdentity() Identity {
	return Identity{Anonymous: true}
}

// RevokedToken is a denylisted refresh token, recorded at logout and
// kept until the token would have expired on its own.
type RevokedToken struct {
	JTI       string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36"`
	ExpiresAt time.Time
	RevokedAt time.Time
}

// TableName returns the table name for the RevokedToken entity.
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// TokenPair represents access and refresh tokens issued at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
