package accounts

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/dm-chat/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AccountsPort defines the interface other modules use to reach the
// accounts module.
type AccountsPort interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ResolveToken(ctx context.Context, token string) (domain.Identity, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, excludeUserID string) ([]GetUserResponse, error)
}

// AccountsAdapter implements AccountsPort using the service container.
type AccountsAdapter struct {
	container mono.ServiceContainer
}

// NewAccountsAdapter creates a new AccountsAdapter.
func NewAccountsAdapter(container mono.ServiceContainer) *AccountsAdapter {
	return &AccountsAdapter{
		container: container,
	}
}

// Register creates a new user account.
func (a *AccountsAdapter) Register(ctx context.Context, firstName, lastName, email, password string) (*RegisterResponse, error) {
	req := RegisterRequest{FirstName: firstName, LastName: lastName, Email: email, Password: password}
	var resp RegisterResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"register",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}

	return &resp, nil
}

// Login authenticates a user and returns a token pair.
func (a *AccountsAdapter) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp LoginResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"login",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	}, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (a *AccountsAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp RefreshResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"refresh-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("refresh-token request failed: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	}, nil
}

// Logout revokes a refresh token.
func (a *AccountsAdapter) Logout(ctx context.Context, refreshToken string) error {
	req := LogoutRequest{RefreshToken: refreshToken}
	var resp LogoutResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"logout",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}

	return nil
}

// ResolveToken resolves a connection credential to an identity.
func (a *AccountsAdapter) ResolveToken(ctx context.Context, token string) (domain.Identity, error) {
	req := ResolveTokenRequest{Token: token}
	var resp ResolveTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"resolve-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.AnonymousIdentity(), fmt.Errorf("resolve-token request failed: %w", err)
	}

	if resp.Anonymous {
		return domain.AnonymousIdentity(), nil
	}
	return domain.Identity{
		UserID:    resp.UserID,
		Email:     resp.Email,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AccountsAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}

	return &domain.User{
		ID:        resp.ID,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// ListUsers returns every user except the given one.
func (a *AccountsAdapter) ListUsers(ctx context.Context, excludeUserID string) ([]GetUserResponse, error) {
	req := ListUsersRequest{ExcludeUserID: excludeUserID}
	var resp ListUsersResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-users",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-users request failed: %w", err)
	}

	return resp.Users, nil
}
