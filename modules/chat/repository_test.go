package chat

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	domain "github.com/example/dm-chat/domain/chat"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Message{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func TestRepository_GetOrCreate(t *testing.T) {
	repo := NewConversationRepository(setupTestDB(t))

	alice := uuid.New().String()
	bob := uuid.New().String()

	conv, err := repo.GetOrCreate(alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if conv.ID == "" {
		t.Error("GetOrCreate() should assign an ID")
	}
	if !conv.HasMember(alice) || !conv.HasMember(bob) {
		t.Error("conversation should contain both members")
	}

	t.Run("same pair returns same conversation", func(t *testing.T) {
		again, err := repo.GetOrCreate(alice, bob)
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if again.ID != conv.ID {
			t.Errorf("GetOrCreate() returned %q, want %q", again.ID, conv.ID)
		}
	})

	t.Run("reversed pair returns same conversation", func(t *testing.T) {
		reversed, err := repo.GetOrCreate(bob, alice)
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if reversed.ID != conv.ID {
			t.Errorf("GetOrCreate() returned %q, want %q", reversed.ID, conv.ID)
		}
	})

	t.Run("different pair returns different conversation", func(t *testing.T) {
		carol := uuid.New().String()
		other, err := repo.GetOrCreate(alice, carol)
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if other.ID == conv.ID {
			t.Error("distinct pairs should not share a conversation")
		}
	})
}

func TestRepository_GetOrCreate_Concurrent(t *testing.T) {
	// A file-backed database so every goroutine sees the same store.
	repo := NewConversationRepository(openTestDB(t, filepath.Join(t.TempDir(), "chat_test.db")))

	alice := uuid.New().String()
	bob := uuid.New().String()

	const initiators = 8
	ids := make([]string, initiators)
	errs := make([]error, initiators)

	var wg sync.WaitGroup
	for i := 0; i < initiators; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conv, err := repo.GetOrCreate(alice, bob)
			if err != nil {
				errs[n] = err
				return
			}
			ids[n] = conv.ID
		}(i)
	}
	wg.Wait()

	for n, err := range errs {
		if err != nil {
			t.Fatalf("initiator %d: GetOrCreate() error = %v", n, err)
		}
	}
	for n := 1; n < initiators; n++ {
		if ids[n] != ids[0] {
			t.Fatalf("initiator %d got conversation %q, initiator 0 got %q", n, ids[n], ids[0])
		}
	}

	var count int64
	if err := repo.db.Model(&domain.Conversation{}).Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 conversation, got %d", count)
	}
}

func TestRepository_FindByIDForMember(t *testing.T) {
	repo := NewConversationRepository(setupTestDB(t))

	alice := uuid.New().String()
	bob := uuid.New().String()
	mallory := uuid.New().String()

	conv, err := repo.GetOrCreate(alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	t.Run("member can fetch", func(t *testing.T) {
		found, err := repo.FindByIDForMember(conv.ID, alice)
		if err != nil {
			t.Fatalf("FindByIDForMember() error = %v", err)
		}
		if found.ID != conv.ID {
			t.Errorf("FindByIDForMember() returned %q, want %q", found.ID, conv.ID)
		}
	})

	t.Run("non-member gets not found", func(t *testing.T) {
		_, err := repo.FindByIDForMember(conv.ID, mallory)
		if !errors.Is(err, ErrConversationNotFound) {
			t.Errorf("FindByIDForMember() error = %v, want ErrConversationNotFound", err)
		}
	})

	t.Run("empty user gets not found", func(t *testing.T) {
		_, err := repo.FindByIDForMember(conv.ID, "")
		if !errors.Is(err, ErrConversationNotFound) {
			t.Errorf("FindByIDForMember() error = %v, want ErrConversationNotFound", err)
		}
	})

	t.Run("missing conversation gets not found", func(t *testing.T) {
		_, err := repo.FindByIDForMember(uuid.New().String(), alice)
		if !errors.Is(err, ErrConversationNotFound) {
			t.Errorf("FindByIDForMember() error = %v, want ErrConversationNotFound", err)
		}
	})
}

func TestRepository_AppendMessage(t *testing.T) {
	repo := NewConversationRepository(setupTestDB(t))

	alice := uuid.New().String()
	bob := uuid.New().String()
	mallory := uuid.New().String()

	conv, err := repo.GetOrCreate(alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	t.Run("member can append", func(t *testing.T) {
		msg, err := repo.AppendMessage(conv.ID, alice, "hello bob")
		if err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
		if msg.ID == "" {
			t.Error("AppendMessage() should assign an ID")
		}
		if msg.SenderID != alice || msg.Text != "hello bob" {
			t.Errorf("message = %+v, want sender %q text %q", msg, alice, "hello bob")
		}

		// The conversation's updated_at moves with the newest message.
		refreshed, err := repo.FindByID(conv.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if refreshed.UpdatedAt.Before(msg.CreatedAt) {
			t.Error("conversation updated_at should not precede the newest message")
		}
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		_, err := repo.AppendMessage(conv.ID, mallory, "intrusion")
		if !errors.Is(err, ErrNotAMember) {
			t.Errorf("AppendMessage() error = %v, want ErrNotAMember", err)
		}
	})

	t.Run("missing conversation is rejected", func(t *testing.T) {
		_, err := repo.AppendMessage(uuid.New().String(), alice, "void")
		if !errors.Is(err, ErrConversationNotFound) {
			t.Errorf("AppendMessage() error = %v, want ErrConversationNotFound", err)
		}
	})
}

func TestRepository_ListMessages(t *testing.T) {
	repo := NewConversationRepository(setupTestDB(t))

	alice := uuid.New().String()
	bob := uuid.New().String()
	conv, err := repo.GetOrCreate(alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	for _, text := range []string{"first", "second", "third"} {
		if _, err := repo.AppendMessage(conv.ID, alice, text); err != nil {
			t.Fatalf("AppendMessage(%q) error = %v", text, err)
		}
	}

	messages, err := repo.ListMessages(conv.ID, 10)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("ListMessages() returned %d messages, want 3", len(messages))
	}

	t.Run("limit is honored", func(t *testing.T) {
		limited, err := repo.ListMessages(conv.ID, 2)
		if err != nil {
			t.Fatalf("ListMessages() error = %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("ListMessages() returned %d messages, want 2", len(limited))
		}
	})

	t.Run("empty conversation", func(t *testing.T) {
		other, err := repo.GetOrCreate(alice, uuid.New().String())
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		messages, err := repo.ListMessages(other.ID, 10)
		if err != nil {
			t.Fatalf("ListMessages() error = %v", err)
		}
		if len(messages) != 0 {
			t.Errorf("ListMessages() returned %d messages, want 0", len(messages))
		}
	})
}
