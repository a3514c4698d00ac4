package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageStoredEvent is emitted after a chat message has been persisted.
// The broadcast module consumes it to fan the message out to every live
// connection in the conversation's group. Persistence is authoritative;
// delivery of this event is best effort.
type MessageStoredEvent struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageStoredV1 is the typed event definition for MessageStoredEvent.
var MessageStoredV1 = helper.EventDefinition[MessageStoredEvent](
	"chat",
	"MessageStored",
	"v1",
)
