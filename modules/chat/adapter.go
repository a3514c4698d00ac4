package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort defines the interface other modules use to reach the chat
// module.
type ChatPort interface {
	SendMessage(ctx context.Context, conversationID, senderID, text string) (*SendMessageResponse, error)
	AuthorizeMember(ctx context.Context, conversationID, userID string) (*AuthorizeMemberResponse, error)
	FetchChat(ctx context.Context, userID, recipientID string, limit int) (*FetchChatResponse, error)
}

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) *ChatAdapter {
	return &ChatAdapter{
		container: container,
	}
}

// SendMessage appends a message to a conversation.
func (a *ChatAdapter) SendMessage(ctx context.Context, conversationID, senderID, text string) (*SendMessageResponse, error) {
	req := SendMessageRequest{ConversationID: conversationID, SenderID: senderID, Text: text}
	var resp SendMessageResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"send-message",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("send-message request failed: %w", err)
	}

	return &resp, nil
}

// AuthorizeMember asks whether a user may attach to a conversation.
func (a *ChatAdapter) AuthorizeMember(ctx context.Context, conversationID, userID string) (*AuthorizeMemberResponse, error) {
	req := AuthorizeMemberRequest{ConversationID: conversationID, UserID: userID}
	var resp AuthorizeMemberResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"authorize-member",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("authorize-member request failed: %w", err)
	}

	return &resp, nil
}

// FetchChat returns the conversation between a user and a recipient,
// creating it on first contact.
func (a *ChatAdapter) FetchChat(ctx context.Context, userID, recipientID string, limit int) (*FetchChatResponse, error) {
	req := FetchChatRequest{UserID: userID, RecipientID: recipientID, Limit: limit}
	var resp FetchChatResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"fetch-chat",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("fetch-chat request failed: %w", err)
	}

	return &resp, nil
}
