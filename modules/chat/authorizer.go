package chat

import (
	"context"
	"errors"

	domain "github.com/example/dm-chat/domain/chat"
)

// ErrForbidden is returned when a user may not access a conversation.
// Anonymous users and non-members get the same answer; the caller
// learns nothing about whether the conversation exists.
var ErrForbidden = errors.New("access to conversation denied")

// conversationLookup is the read access the authorizer needs.
type conversationLookup interface {
	FindByIDForMember(conversationID, userID string) (*domain.Conversation, error)
}

// MembershipAuthorizer decides whether a user may attach to a
// conversation's message stream.
type MembershipAuthorizer struct {
	conversations conversationLookup
}

// NewMembershipAuthorizer creates a new MembershipAuthorizer.
func NewMembershipAuthorizer(conversations conversationLookup) *MembershipAuthorizer {
	return &MembershipAuthorizer{conversations: conversations}
}

// Authorize returns the conversation if the user is one of its two
// members. Every failure mode collapses into ErrForbidden except real
// storage errors, which pass through.
func (a *MembershipAuthorizer) Authorize(_ context.Context, conversationID, userID string) (*domain.Conversation, error) {
	if userID == "" {
		return nil, ErrForbidden
	}

	conv, err := a.conversations.FindByIDForMember(conversationID, userID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	return conv, nil
}
