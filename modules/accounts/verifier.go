package accounts

import (
	"context"
	"errors"

	domain "github.com/example/dm-chat/domain/user"
)

// userLookup is the read-only user access the verifier needs.
type userLookup interface {
	FindByID(id string) (*domain.User, error)
}

// TokenVerifier resolves a raw connection credential to an identity.
// Any decoding, signature, or expiry failure yields an anonymous
// identity rather than an error, as does a token whose user_id claim
// does not resolve to an existing user. The downstream membership
// check is what actually rejects anonymous connections.
type TokenVerifier struct {
	jwt   *JWTManager
	users userLookup
}

// NewTokenVerifier creates a new TokenVerifier.
func NewTokenVerifier(jwt *JWTManager, users userLookup) *TokenVerifier {
	return &TokenVerifier{
		jwt:   jwt,
		users: users,
	}
}

// Verify resolves the raw token to an identity. It only errors on
// storage failures, never on credential problems.
func (v *TokenVerifier) Verify(_ context.Context, rawToken string) (domain.Identity, error) {
	if rawToken == "" {
		return domain.AnonymousIdentity(), nil
	}

	claims, err := v.jwt.ValidateAccessToken(rawToken)
	if err != nil {
		return domain.AnonymousIdentity(), nil
	}

	user, err := v.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.AnonymousIdentity(), nil
		}
		return domain.AnonymousIdentity(), err
	}

	return domain.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}
