package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	domain "github.com/example/dm-chat/domain/chat"
	"github.com/example/dm-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrSelfChat is returned when a user tries to open a conversation with
// themselves.
var ErrSelfChat = errors.New("cannot open a conversation with yourself")

// ChatModule owns conversations and messages. It persists every
// message before announcing it on the event bus; persistence is the
// authoritative outcome, fan-out is best effort.
type ChatModule struct {
	db         *gorm.DB
	repo       *ConversationRepository
	authorizer *MembershipAuthorizer
	eventBus   mono.EventBus
	dbPath     string
}

// Compile-time interface checks.
var _ mono.Module = (*ChatModule)(nil)
var _ mono.ServiceProviderModule = (*ChatModule)(nil)
var _ mono.HealthCheckableModule = (*ChatModule)(nil)
var _ mono.EventBusAwareModule = (*ChatModule)(nil)
var _ mono.EventEmitterModule = (*ChatModule)(nil)

// NewModule creates a new ChatModule.
func NewModule() *ChatModule {
	dbPath := os.Getenv("DM_CHAT_DB_PATH")
	if dbPath == "" {
		dbPath = "dm_chat.db"
	}
	return &ChatModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// SetEventBus receives the application event bus.
func (m *ChatModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *ChatModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageStoredV1.ToBase(),
	}
}

// Start initializes the chat module.
func (m *ChatModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Message{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.repo = NewConversationRepository(db)
	m.authorizer = NewMembershipAuthorizer(m.repo)

	log.Printf("[chat] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *ChatModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *ChatModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *ChatModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"send-message",
		json.Unmarshal,
		json.Marshal,
		m.handleSendMessage,
	); err != nil {
		return fmt.Errorf("failed to register send-message service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"authorize-member",
		json.Unmarshal,
		json.Marshal,
		m.handleAuthorizeMember,
	); err != nil {
		return fmt.Errorf("failed to register authorize-member service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"fetch-chat",
		json.Unmarshal,
		json.Marshal,
		m.handleFetchChat,
	); err != nil {
		return fmt.Errorf("failed to register fetch-chat service: %w", err)
	}

	log.Printf("[chat] Registered services: send-message, authorize-member, fetch-chat")
	return nil
}

// handleSendMessage persists a message and announces it on the event
// bus. A publish failure after a successful write is logged, never
// surfaced: the message is already stored.
func (m *ChatModule) handleSendMessage(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	conv, err := m.authorizer.Authorize(ctx, req.ConversationID, req.SenderID)
	if err != nil {
		return SendMessageResponse{}, err
	}

	msg, err := m.repo.AppendMessage(req.ConversationID, req.SenderID, req.Text)
	if err != nil {
		return SendMessageResponse{}, err
	}

	recipientID := conv.MemberAID
	if recipientID == req.SenderID {
		recipientID = conv.MemberBID
	}

	if m.eventBus != nil {
		event := events.MessageStoredEvent{
			MessageID:      msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			RecipientID:    recipientID,
			Text:           msg.Text,
			CreatedAt:      msg.CreatedAt,
		}
		if err := events.MessageStoredV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[chat] Failed to publish MessageStored event: %v", err)
		}
	}

	return SendMessageResponse{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		RecipientID:    recipientID,
		Text:           msg.Text,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

// handleAuthorizeMember answers whether a user may attach to a
// conversation. Denial is a normal response, not a service error.
func (m *ChatModule) handleAuthorizeMember(ctx context.Context, req AuthorizeMemberRequest, _ *mono.Msg) (AuthorizeMemberResponse, error) {
	conv, err := m.authorizer.Authorize(ctx, req.ConversationID, req.UserID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return AuthorizeMemberResponse{Authorized: false}, nil
		}
		return AuthorizeMemberResponse{}, err
	}

	return AuthorizeMemberResponse{
		Authorized:     true,
		ConversationID: conv.ID,
		MemberAID:      conv.MemberAID,
		MemberBID:      conv.MemberBID,
	}, nil
}

// handleFetchChat returns the conversation between the caller and the
// recipient, creating it on first contact, together with its recent
// messages.
func (m *ChatModule) handleFetchChat(_ context.Context, req FetchChatRequest, _ *mono.Msg) (FetchChatResponse, error) {
	if req.UserID == "" || req.RecipientID == "" {
		return FetchChatResponse{}, ErrForbidden
	}
	if req.UserID == req.RecipientID {
		return FetchChatResponse{}, ErrSelfChat
	}

	conv, err := m.repo.GetOrCreate(req.UserID, req.RecipientID)
	if err != nil {
		return FetchChatResponse{}, err
	}

	messages, err := m.repo.ListMessages(conv.ID, req.Limit)
	if err != nil {
		return FetchChatResponse{}, err
	}

	resp := FetchChatResponse{
		ConversationID: conv.ID,
		MemberAID:      conv.MemberAID,
		MemberBID:      conv.MemberBID,
		Messages:       make([]MessageView, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, MessageView{
			ID:        msg.ID,
			SenderID:  msg.SenderID,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}
