package chat

import (
	"time"
)

// Conversation is a persisted exchange between exactly two users.
// PairKey holds the sorted member pair; its unique index is what makes
// get-or-create atomic under concurrent initiation.
type Conversation struct {
	ID        string `gorm:"primaryKey;size:36"`
	PairKey   string `gorm:"uniqueIndex;not null;size:80"`
	MemberAID string `gorm:"not null;size:36"`
	MemberBID string `gorm:"not null;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for the Conversation entity.
func (Conversation) TableName() string {
	return "conversations"
}

// HasMember reports whether the given user is one of the two participants.
func (c *Conversation) HasMember(userID string) bool {
	return userID != "" && (c.MemberAID == userID || c.MemberBID == userID)
}

// PairKey builds the canonical key for an unordered user pair.
func PairKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// Message is a single persisted chat message, immutable once created.
type Message struct {
	ID             string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"index;not null;size:36"`
	SenderID       string `gorm:"not null;size:36"`
	Text           string `gorm:"not null;type:text"`
	CreatedAt      time.Time
}

// TableName returns the table name for the Message entity.
func (Message) TableName() string {
	return "messages"
}
