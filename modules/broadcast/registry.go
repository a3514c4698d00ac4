package broadcast

import (
	"sync"
	"time"
)

// Event is a tagged union of everything that can be fanned out to a
// group. Concrete variants carry their own payload; subscribers switch
// on the type.
type Event interface {
	eventKind() string
}

// ChatMessage is the fan-out variant for a stored chat message.
type ChatMessage struct {
	MessageID      string
	ConversationID string
	SenderID       string
	RecipientID    string
	Text           string
	CreatedAt      time.Time
}

func (ChatMessage) eventKind() string { return "chat.message" }

// Subscriber is a live receiver of group events. Deliver must never
// block; slow receivers are the receiver's problem, not the group's.
type Subscriber interface {
	ID() string
	Deliver(event Event)
}

// Registry maps group names to their live subscribers and fans events
// out to them. It carries no history: an event published to a group
// nobody is subscribed to is gone.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]Subscriber
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]map[string]Subscriber),
	}
}

// Subscribe adds a subscriber to a group. Re-subscribing the same
// subscriber ID replaces the previous entry, so a reconnecting session
// never doubles its deliveries.
func (r *Registry) Subscribe(group string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		members = make(map[string]Subscriber)
		r.groups[group] = members
	}
	members[sub.ID()] = sub
}

// Unsubscribe removes a subscriber from a group. Removing the last
// subscriber removes the group entry itself. Unknown groups and
// unknown subscribers are no-ops.
func (r *Registry) Unsubscribe(group, subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, subscriberID)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// Publish delivers an event to every current subscriber of the group,
// including one whose ID matches the event's originator. The member
// snapshot is taken under the read lock; Deliver runs outside it, so a
// subscriber may unsubscribe from inside its own Deliver.
func (r *Registry) Publish(group string, event Event) int {
	r.mu.RLock()
	members := r.groups[group]
	snapshot := make([]Subscriber, 0, len(members))
	for _, sub := range members {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	for _, sub := range snapshot {
		sub.Deliver(event)
	}
	return len(snapshot)
}

// GroupSize returns the number of live subscribers in a group.
func (r *Registry) GroupSize(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

// GroupCount returns the number of non-empty groups.
func (r *Registry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
