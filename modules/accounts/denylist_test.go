package accounts

import (
	"testing"
	"time"
)

func TestTokenDenylist(t *testing.T) {
	denylist := NewTokenDenylist(setupTestDB(t))

	if err := denylist.Revoke("jti-1", "user-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	revoked, err := denylist.IsRevoked("jti-1")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if !revoked {
		t.Error("IsRevoked() = false for a revoked token")
	}

	revoked, err = denylist.IsRevoked("jti-other")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if revoked {
		t.Error("IsRevoked() = true for an unrevoked token")
	}
}

func TestTokenDenylist_PurgeExpired(t *testing.T) {
	denylist := NewTokenDenylist(setupTestDB(t))

	if err := denylist.Revoke("jti-stale", "user-1", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := denylist.Revoke("jti-live", "user-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if err := denylist.PurgeExpired(); err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}

	if revoked, _ := denylist.IsRevoked("jti-stale"); revoked {
		t.Error("expired row should be purged")
	}
	if revoked, _ := denylist.IsRevoked("jti-live"); !revoked {
		t.Error("live row should survive the purge")
	}
}
