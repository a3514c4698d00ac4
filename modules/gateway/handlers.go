package gateway

import (
	"context"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 50

// setupRoutes configures all HTTP routes.
func (m *GatewayModule) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws/chat/:conversation_id", websocket.New(m.handleChatSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	// Authentication
	api.Post("/auth/register", m.register)
	api.Post("/auth/login", m.login)
	api.Post("/auth/refresh", m.refresh)
	api.Post("/auth/logout", m.logout)

	// Authenticated surface
	authed := api.Use(AuthMiddleware(m.accountsAdapter))
	authed.Get("/users", m.listUsers)
	authed.Get("/chats/:recipient_id", m.fetchChat)
}

// healthHandler handles GET /health.
func (m *GatewayModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "gateway",
		},
	})
}

// register handles POST /api/v1/auth/register.
func (m *GatewayModule) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if req.Password != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Passwords do not match",
		})
	}

	user, err := m.accountsAdapter.Register(c.UserContext(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "registration_failed",
			Message: "Could not create the account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// login handles POST /api/v1/auth/login.
func (m *GatewayModule) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	tokens, err := m.accountsAdapter.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
	}

	return c.JSON(TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	})
}

// refresh handles POST /api/v1/auth/refresh.
func (m *GatewayModule) refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	tokens, err := m.accountsAdapter.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
	}

	return c.JSON(TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	})
}

// logout handles POST /api/v1/auth/logout. It revokes the presented
// refresh token; the access token simply expires.
func (m *GatewayModule) logout(c *fiber.Ctx) error {
	var req LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := m.accountsAdapter.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
	}

	return c.JSON(LogoutResponse{Message: "Logged out"})
}

// listUsers handles GET /api/v1/users. It returns every user except
// the caller, as the contact list.
func (m *GatewayModule) listUsers(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
	}

	users, err := m.accountsAdapter.ListUsers(c.UserContext(), identity.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list users",
		})
	}

	response := UserListResponse{
		Users: make([]UserResponse, 0, len(users)),
	}
	for _, user := range users {
		response.Users = append(response.Users, UserResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		})
	}

	return c.JSON(response)
}

// fetchChat handles GET /api/v1/chats/:recipient_id. First contact
// with a recipient creates the conversation.
func (m *GatewayModule) fetchChat(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
	}

	recipientID := c.Params("recipient_id")
	if recipientID == "" || recipientID == identity.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_recipient",
			Message: "Invalid recipient.",
		})
	}

	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	// The recipient must be a real account, not just a well-formed ID.
	if _, err := m.accountsAdapter.GetUser(c.UserContext(), recipientID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Recipient not found",
		})
	}

	chatResp, err := m.chatAdapter.FetchChat(c.UserContext(), identity.UserID, recipientID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "fetch_failed",
			Message: "Failed to fetch conversation",
		})
	}

	response := ChatResponse{
		ConversationID: chatResp.ConversationID,
		MemberAID:      chatResp.MemberAID,
		MemberBID:      chatResp.MemberBID,
		Messages:       make([]ChatMessageResponse, 0, len(chatResp.Messages)),
	}
	for _, msg := range chatResp.Messages {
		response.Messages = append(response.Messages, ChatMessageResponse{
			ID:        msg.ID,
			SenderID:  msg.SenderID,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}

	return c.JSON(response)
}

// handleChatSocket handles WebSocket connections at /ws/chat/:conversation_id.
// The session rejects itself if the credential or membership check
// fails; by the time frames flow the caller is a verified member.
func (m *GatewayModule) handleChatSocket(c *websocket.Conn) {
	conversationID := c.Params("conversation_id")
	token := c.Query("token")

	session := NewSession(c, m.accountsAdapter, m.chatAdapter, m.registry, conversationID)
	session.Run(context.Background(), token)
}
