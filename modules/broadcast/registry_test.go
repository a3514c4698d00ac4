package broadcast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSubscriber collects delivered events.
type recordingSubscriber struct {
	id     string
	mu     sync.Mutex
	events []Event
}

func (s *recordingSubscriber) ID() string { return s.id }

func (s *recordingSubscriber) Deliver(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSubscriber) delivered() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "chat_conv-1", GroupKey("conv-1"))
}

func TestRegistry_PublishReachesAllSubscribers(t *testing.T) {
	registry := NewRegistry()

	alice := &recordingSubscriber{id: "alice-session"}
	bob := &recordingSubscriber{id: "bob-session"}
	registry.Subscribe("chat_conv-1", alice)
	registry.Subscribe("chat_conv-1", bob)

	msg := ChatMessage{MessageID: "m1", ConversationID: "conv-1", SenderID: "alice", Text: "hi"}
	delivered := registry.Publish("chat_conv-1", msg)

	assert.Equal(t, 2, delivered)
	require.Len(t, alice.delivered(), 1)
	require.Len(t, bob.delivered(), 1)
	assert.Equal(t, msg, alice.delivered()[0])
}

func TestRegistry_SenderSessionReceivesOwnMessage(t *testing.T) {
	registry := NewRegistry()

	alice := &recordingSubscriber{id: "alice-session"}
	registry.Subscribe("chat_conv-1", alice)

	registry.Publish("chat_conv-1", ChatMessage{MessageID: "m1", SenderID: "alice", Text: "echo"})

	// The originator's own session is not excluded from fan-out.
	require.Len(t, alice.delivered(), 1)
}

func TestRegistry_GroupsAreIsolated(t *testing.T) {
	registry := NewRegistry()

	alice := &recordingSubscriber{id: "alice-session"}
	carol := &recordingSubscriber{id: "carol-session"}
	registry.Subscribe("chat_conv-1", alice)
	registry.Subscribe("chat_conv-2", carol)

	registry.Publish("chat_conv-1", ChatMessage{MessageID: "m1"})

	assert.Len(t, alice.delivered(), 1)
	assert.Empty(t, carol.delivered())
}

func TestRegistry_PublishToEmptyGroup(t *testing.T) {
	registry := NewRegistry()

	delivered := registry.Publish("chat_nobody", ChatMessage{MessageID: "m1"})

	assert.Equal(t, 0, delivered)
}

func TestRegistry_ResubscribeReplacesEntry(t *testing.T) {
	registry := NewRegistry()

	alice := &recordingSubscriber{id: "alice-session"}
	registry.Subscribe("chat_conv-1", alice)
	registry.Subscribe("chat_conv-1", alice)

	assert.Equal(t, 1, registry.GroupSize("chat_conv-1"))

	registry.Publish("chat_conv-1", ChatMessage{MessageID: "m1"})
	assert.Len(t, alice.delivered(), 1)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	registry := NewRegistry()

	alice := &recordingSubscriber{id: "alice-session"}
	bob := &recordingSubscriber{id: "bob-session"}
	registry.Subscribe("chat_conv-1", alice)
	registry.Subscribe("chat_conv-1", bob)

	registry.Unsubscribe("chat_conv-1", alice.id)
	registry.Publish("chat_conv-1", ChatMessage{MessageID: "m1"})

	assert.Empty(t, alice.delivered())
	assert.Len(t, bob.delivered(), 1)

	t.Run("last unsubscribe removes the group", func(t *testing.T) {
		registry.Unsubscribe("chat_conv-1", bob.id)
		assert.Equal(t, 0, registry.GroupCount())
	})

	t.Run("unknown group and subscriber are no-ops", func(t *testing.T) {
		registry.Unsubscribe("chat_missing", "nobody")
		registry.Unsubscribe("chat_conv-1", "nobody")
	})
}

func TestRegistry_UnsubscribeDuringDeliver(t *testing.T) {
	registry := NewRegistry()

	// A subscriber that removes itself from inside Deliver, the way a
	// session does when its connection is gone.
	self := &selfRemovingSubscriber{id: "flaky-session", registry: registry, group: "chat_conv-1"}
	registry.Subscribe("chat_conv-1", self)

	delivered := registry.Publish("chat_conv-1", ChatMessage{MessageID: "m1"})
	require.Equal(t, 1, delivered)

	assert.Equal(t, 0, registry.GroupSize("chat_conv-1"))
	assert.Equal(t, 0, registry.Publish("chat_conv-1", ChatMessage{MessageID: "m2"}))
}

type selfRemovingSubscriber struct {
	id       string
	registry *Registry
	group    string
}

func (s *selfRemovingSubscriber) ID() string { return s.id }

func (s *selfRemovingSubscriber) Deliver(Event) {
	s.registry.Unsubscribe(s.group, s.id)
}

func TestRegistry_ConcurrentPublishAndSubscribe(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sub := &recordingSubscriber{id: fmt.Sprintf("session-%d", n)}
			registry.Subscribe("chat_conv-1", sub)
			registry.Publish("chat_conv-1", ChatMessage{MessageID: "m"})
			registry.Unsubscribe("chat_conv-1", sub.ID())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, registry.GroupCount())
}
