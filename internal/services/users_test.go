package services

import (
	"context"
	"errors"
	"testing"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
)

func TestCachedDirectory_LooksUpOnMissThenCaches(t *testing.T) {
	calls := 0
	d := NewCachedDirectory(func(ctx context.Context, userID string) (*domain.User, error) {
		calls++
		return &domain.User{UserID: userID, Name: "alice"}, nil
	})

	for i := 0; i < 3; i++ {
		u, err := d.Find(context.Background(), "U1")
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if u.Name != "alice" {
			t.Fatalf("unexpected user: %+v", u)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single lookup, got %d", calls)
	}
}

func TestCachedDirectory_LookupErrorsAreNotCached(t *testing.T) {
	calls := 0
	d := NewCachedDirectory(func(ctx context.Context, userID string) (*domain.User, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return &domain.User{UserID: userID, Name: "bob"}, nil
	})

	if _, err := d.Find(context.Background(), "U1"); err == nil {
		t.Fatalf("expected first lookup to fail")
	}
	u, err := d.Find(context.Background(), "U1")
	if err != nil {
		t.Fatalf("second Find: %v", err)
	}
	if u.Name != "bob" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestCachedDirectory_ReplaceOverridesLookup(t *testing.T) {
	d := NewCachedDirectory(func(ctx context.Context, userID string) (*domain.User, error) {
		return &domain.User{UserID: userID, Name: "stale"}, nil
	})
	d.Replace(domain.User{UserID: "U1", Name: "fresh"})

	u, err := d.Find(context.Background(), "U1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if u.Name != "fresh" {
		t.Fatalf("expected replaced identity, got %+v", u)
	}
}

func TestCachedDirectory_NilLookupIsNotFound(t *testing.T) {
	d := NewCachedDirectory(nil)
	if _, err := d.Find(context.Background(), "U1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
