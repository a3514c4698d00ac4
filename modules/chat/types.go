package chat

import (
	"time"
)

// SendMessageRequest asks to append a message to a conversation.
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Text           string `json:"text"`
}

// SendMessageResponse describes the persisted message.
type SendMessageResponse struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuthorizeMemberRequest asks whether a user may attach to a conversation.
type AuthorizeMemberRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// AuthorizeMemberResponse carries the authorization outcome. When
// Authorized is false the member fields are left empty.
type AuthorizeMemberResponse struct {
	Authorized     bool   `json:"authorized"`
	ConversationID string `json:"conversation_id,omitempty"`
	MemberAID      string `json:"member_a_id,omitempty"`
	MemberBID      string `json:"member_b_id,omitempty"`
}

// FetchChatRequest asks for the conversation between a user and a
// recipient, creating it if it does not exist yet.
type FetchChatRequest struct {
	UserID      string `json:"user_id"`
	RecipientID string `json:"recipient_id"`
	Limit       int    `json:"limit,omitempty"`
}

// MessageView is a single message as returned to callers.
type MessageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// FetchChatResponse carries the conversation and its recent messages,
// newest first.
type FetchChatResponse struct {
	ConversationID string        `json:"conversation_id"`
	MemberAID      string        `json:"member_a_id"`
	MemberBID      string        `json:"member_b_id"`
	Messages       []MessageView `json:"messages"`
}
