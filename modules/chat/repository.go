package chat

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/dm-chat/domain/chat"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrConversationNotFound is returned when a conversation does not exist.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrNotAMember is returned when a user is not a participant of the conversation.
	ErrNotAMember = errors.New("user is not a member of the conversation")
)

// ConversationRepository handles conversation and message persistence.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreate returns the conversation between the two users, creating
// it if none exists. The unique index on pair_key guarantees at most
// one row per pair; a lost creation race falls back to re-fetching the
// winner's row.
func (r *ConversationRepository) GetOrCreate(userA, userB string) (*domain.Conversation, error) {
	// Member columns are stored sorted, like the pair key, so the row is
	// identical no matter which member initiated.
	if userA > userB {
		userA, userB = userB, userA
	}
	pairKey := domain.PairKey(userA, userB)

	var conv domain.Conversation
	err := r.db.Where("pair_key = ?", pairKey).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	now := time.Now()
	conv = domain.Conversation{
		ID:        uuid.New().String(),
		PairKey:   pairKey,
		MemberAID: userA,
		MemberBID: userB,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if createErr := r.db.Create(&conv).Error; createErr != nil {
		// Another initiator may have won the race; the re-fetch settles it.
		var existing domain.Conversation
		if refetchErr := r.db.Where("pair_key = ?", pairKey).First(&existing).Error; refetchErr != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", createErr)
		}
		return &existing, nil
	}

	return &conv, nil
}

// FindByIDForMember fetches a conversation only if the given user is
// one of its two participants. A conversation that exists but does not
// include the user is indistinguishable from a missing one.
func (r *ConversationRepository) FindByIDForMember(conversationID, userID string) (*domain.Conversation, error) {
	if userID == "" {
		return nil, ErrConversationNotFound
	}

	var conv domain.Conversation
	err := r.db.
		Where("id = ? AND (member_a_id = ? OR member_b_id = ?)", conversationID, userID, userID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	return &conv, nil
}

// FindByID fetches a conversation without a membership restriction.
func (r *ConversationRepository) FindByID(conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("id = ?", conversationID).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &conv, nil
}

// AppendMessage persists a message after re-validating, inside the same
// transaction, that the sender is still a member of the conversation.
// Membership checked at connect time can go stale before a send lands.
func (r *ConversationRepository) AppendMessage(conversationID, senderID, text string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var conv domain.Conversation
		if err := tx.Where("id = ?", conversationID).First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return fmt.Errorf("failed to find conversation: %w", err)
		}

		if !conv.HasMember(senderID) {
			return ErrNotAMember
		}

		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		if err := tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", msg.CreatedAt).Error; err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ListMessages returns up to limit messages of a conversation, newest
// first. A non-positive limit falls back to 50.
func (r *ConversationRepository) ListMessages(conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*domain.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}
