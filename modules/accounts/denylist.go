package accounts

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/dm-chat/domain/user"
	"gorm.io/gorm"
)

// TokenDenylist records refresh tokens revoked at logout. Tokens are
// keyed by their jti claim so the denylist row is a fixed-size record
// rather than the token itself.
type TokenDenylist struct {
	db *gorm.DB
}

// NewTokenDenylist creates a new TokenDenylist.
func NewTokenDenylist(db *gorm.DB) *TokenDenylist {
	return &TokenDenylist{db: db}
}

// Revoke adds a token to the denylist. Revoking the same token twice
// is a no-op.
func (d *TokenDenylist) Revoke(jti, userID string, expiresAt time.Time) error {
	row := &domain.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
		RevokedAt: time.Now(),
	}
	if err := d.db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token with the given jti has been
// denylisted.
func (d *TokenDenylist) IsRevoked(jti string) (bool, error) {
	var count int64
	err := d.db.Model(&domain.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check denylist: %w", err)
	}
	return count > 0, nil
}

// PurgeExpired removes denylist rows whose token has expired anyway.
func (d *TokenDenylist) PurgeExpired() error {
	err := d.db.Where("expires_at < ?", time.Now()).Delete(&domain.RevokedToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to purge denylist: %w", err)
	}
	return nil
}
