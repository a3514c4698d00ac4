package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/example/dm-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// GroupKey builds the broadcast group name for a conversation.
func GroupKey(conversationID string) string {
	return "chat_" + conversationID
}

// BroadcastModule consumes stored-message events and fans them out to
// the live subscribers of the conversation's group.
type BroadcastModule struct {
	registry *Registry
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		registry: NewRegistry(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start initializes the module.
func (m *BroadcastModule) Start(_ context.Context) error {
	log.Println("[broadcast] Module started - group registry ready")
	return nil
}

// Stop shuts down the module.
func (m *BroadcastModule) Stop(_ context.Context) error {
	log.Printf("[broadcast] Module stopped - %d groups were active", m.registry.GroupCount())
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_groups": m.registry.GroupCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageStoredV1, m.handleMessageStored, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageStored consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: MessageStored")
	return nil
}

// handleMessageStored fans a stored message out to the conversation's
// group. The sender's own session is a subscriber like any other and
// receives its echo this way.
func (m *BroadcastModule) handleMessageStored(_ context.Context, event events.MessageStoredEvent, _ *mono.Msg) error {
	delivered := m.registry.Publish(GroupKey(event.ConversationID), ChatMessage{
		MessageID:      event.MessageID,
		ConversationID: event.ConversationID,
		SenderID:       event.SenderID,
		RecipientID:    event.RecipientID,
		Text:           event.Text,
		CreatedAt:      event.CreatedAt,
	})

	log.Printf("[broadcast] Delivered message %s to %d subscribers of %s",
		event.MessageID, delivered, GroupKey(event.ConversationID))
	return nil
}

// GetRegistry returns the group registry for the gateway module to use.
func (m *BroadcastModule) GetRegistry() *Registry {
	return m.registry
}
