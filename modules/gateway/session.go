package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/example/dm-chat/modules/accounts"
	"github.com/example/dm-chat/modules/broadcast"
	"github.com/example/dm-chat/modules/chat"
	"github.com/google/uuid"
)

const (
	maxMessageLength = 4096
	outboxSize       = 32
)

// wire is the minimal connection surface a session needs.
type wire interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
	Close() error
}

// groupRegistry is the subscription surface of the broadcast registry.
type groupRegistry interface {
	Subscribe(group string, sub broadcast.Subscriber)
	Unsubscribe(group, subscriberID string)
}

// Session states. A session is pending until its credential and
// membership are verified, active while the read and write loops run,
// and closed once either loop stops.
const (
	statePending int32 = iota
	stateActive
	stateClosed
)

// Session is one live chat socket bound to a single conversation.
// All frames are written by a single writer goroutine fed from the
// outbox channel; Deliver never touches the connection directly.
type Session struct {
	id             string
	conversationID string
	userID         string
	peerID         string

	conn     wire
	groups   groupRegistry
	chats    chat.ChatPort
	accounts accounts.AccountsPort

	state     atomic.Int32
	outbox    chan OutboundFrame
	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Compile-time interface check.
var _ broadcast.Subscriber = (*Session)(nil)

// NewSession creates a session for an upgraded chat socket. The
// session stays pending until Run verifies the credential.
func NewSession(conn wire, accountsAdapter accounts.AccountsPort, chatAdapter chat.ChatPort, groups groupRegistry, conversationID string) *Session {
	return &Session{
		id:             uuid.New().String(),
		conversationID: conversationID,
		conn:           conn,
		groups:         groups,
		chats:          chatAdapter,
		accounts:       accountsAdapter,
		outbox:         make(chan OutboundFrame, outboxSize),
		closing:        make(chan struct{}),
	}
}

// ID returns the session's subscriber ID.
func (s *Session) ID() string {
	return s.id
}

// UserID returns the authenticated user, empty while pending.
func (s *Session) UserID() string {
	return s.userID
}

// Run drives the session to completion: credential resolution,
// membership authorization, then the read loop. It returns when the
// connection is gone.
func (s *Session) Run(ctx context.Context, token string) {
	identity, err := s.accounts.ResolveToken(ctx, token)
	if err != nil {
		log.Printf("[gateway] Session %s credential resolution failed: %v", s.id, err)
		s.reject("Authentication failed.")
		return
	}

	auth, err := s.chats.AuthorizeMember(ctx, s.conversationID, identity.UserID)
	if err != nil {
		log.Printf("[gateway] Session %s authorization failed: %v", s.id, err)
		s.reject("Authentication failed.")
		return
	}
	if !auth.Authorized {
		s.reject("Access denied.")
		return
	}

	s.userID = identity.UserID
	s.peerID = auth.MemberAID
	if s.peerID == s.userID {
		s.peerID = auth.MemberBID
	}

	s.state.Store(stateActive)

	group := broadcast.GroupKey(s.conversationID)
	s.groups.Subscribe(group, s)

	s.wg.Add(1)
	go s.writeLoop()

	s.enqueue(OutboundFrame{Type: FrameConnected, UserID: s.userID})

	log.Printf("[gateway] Session %s connected: user %s, conversation %s", s.id, s.userID, s.conversationID)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			break
		}
		s.handleInbound(ctx, raw)
	}

	s.groups.Unsubscribe(group, s.id)
	s.teardown()
	s.wg.Wait()

	log.Printf("[gateway] Session %s disconnected", s.id)
}

// Deliver implements broadcast.Subscriber. It converts the event to a
// frame and enqueues it without blocking; a full outbox drops the
// frame rather than stalling the publisher.
func (s *Session) Deliver(event broadcast.Event) {
	if s.state.Load() != stateActive {
		return
	}

	switch e := event.(type) {
	case broadcast.ChatMessage:
		s.enqueue(OutboundFrame{
			Type:        FrameMessage,
			Message:     e.Text,
			SenderID:    e.SenderID,
			RecipientID: e.RecipientID,
		})
	default:
		log.Printf("[gateway] Session %s dropping unknown event type %T", s.id, event)
	}
}

// handleInbound validates one client frame and hands it to the chat
// module. Every failure is reported back on the socket; the echo of a
// successful send arrives through the broadcast group, not from here.
func (s *Session) handleInbound(ctx context.Context, raw []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.enqueue(OutboundFrame{Type: FrameError, Error: "Invalid message format."})
		return
	}

	if frame.Message == "" {
		s.enqueue(OutboundFrame{Type: FrameError, Error: "Message text is required."})
		return
	}
	if len(frame.Message) > maxMessageLength {
		s.enqueue(OutboundFrame{Type: FrameError, Error: "Message too long."})
		return
	}

	// The recipient must resolve to the other member, nobody else.
	if frame.RecipientID != s.peerID {
		s.enqueue(OutboundFrame{Type: FrameError, Error: "Invalid recipient."})
		return
	}

	if _, err := s.chats.SendMessage(ctx, s.conversationID, s.userID, frame.Message); err != nil {
		log.Printf("[gateway] Session %s send failed: %v", s.id, err)
		s.enqueue(OutboundFrame{Type: FrameError, Error: "Failed to send message."})
	}
}

// enqueue puts a frame on the outbox without blocking.
func (s *Session) enqueue(frame OutboundFrame) {
	select {
	case s.outbox <- frame:
	default:
		log.Printf("[gateway] Session %s outbox full, dropping %s frame", s.id, frame.Type)
	}
}

// writeLoop is the sole writer of the connection. On shutdown it
// flushes whatever is already queued before returning.
func (s *Session) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case frame := <-s.outbox:
			if err := s.conn.WriteJSON(frame); err != nil {
				s.teardown()
				return
			}
		case <-s.closing:
			for {
				select {
				case frame := <-s.outbox:
					_ = s.conn.WriteJSON(frame)
				default:
					return
				}
			}
		}
	}
}

// reject reports a pre-activation failure and closes the connection.
// The writer goroutine is not running yet, so the direct write is safe.
func (s *Session) reject(reason string) {
	_ = s.conn.WriteJSON(OutboundFrame{Type: FrameError, Error: reason})
	s.teardown()
}

// teardown transitions the session to closed exactly once.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.state.Store(stateClosed)
		close(s.closing)
		s.conn.Close()
	})
}
