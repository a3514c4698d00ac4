package gateway

import (
	"time"
)

// Outbound frame types. Every frame written to a chat socket carries
// exactly one of these tags.
const (
	FrameConnected = "connected"
	FrameMessage   = "message"
	FrameError     = "error"
)

// InboundFrame is what a client sends on a chat socket.
type InboundFrame struct {
	Message     string `json:"message"`
	RecipientID string `json:"recipient_id"`
}

// OutboundFrame is what the server writes to a chat socket. Fields
// other than Type are populated per tag: Message and RecipientID for
// "message" frames, Error for "error" frames.
type OutboundFrame struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id,omitempty"`
	Message     string `json:"message,omitempty"`
	SenderID    string `json:"sender_id,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the body of POST /api/v1/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutResponse acknowledges a revoked refresh token.
type LogoutResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse describes a single user.
type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse carries the contact list.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// ChatMessageResponse is a single message in a chat response.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatResponse describes a conversation and its recent messages.
type ChatResponse struct {
	ConversationID string                `json:"conversation_id"`
	MemberAID      string                `json:"member_a_id"`
	MemberBID      string                `json:"member_b_id"`
	Messages       []ChatMessageResponse `json:"messages"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
