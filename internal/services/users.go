// Package services – user directory
//
// This file implements the process-local identity cache backed by the chat
// platform's lookup API. Resolutions are cached until a user_change event
// replaces the entry wholesale.
package services

import (
	"context"
	"sync"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
)

// UserLookup is the platform-side resolution call the directory falls back
// to on a cache miss. Implementations return ErrUserNotFound-compatible
// errors when the account does not exist.
type UserLookup func(ctx context.Context, userID string) (*domain.User, error)

// UserDirectory resolves account ids to identities and applies out-of-band
// identity updates. The award path uses Find to validate senders and filter
// bot recipients; the router calls Replace on user_change events.
type UserDirectory interface {
	Find(ctx context.Context, userID string) (*domain.User, error)
	Replace(u domain.User)
}

// CachedDirectory is a concurrency-safe in-memory UserDirectory with a
// pluggable miss handler.
type CachedDirectory struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	lookup UserLookup
}

// NewCachedDirectory returns a directory that consults lookup on cache
// misses. A nil lookup makes every miss a not-found.
func NewCachedDirectory(lookup UserLookup) *CachedDirectory {
	return &CachedDirectory{
		users:  make(map[string]domain.User),
		lookup: lookup,
	}
}

// Find returns the cached identity for userID, fetching and caching it on a
// miss. Unknown accounts return ErrUserNotFound.
func (d *CachedDirectory) Find(ctx context.Context, userID string) (*domain.User, error) {
	d.mu.RLock()
	u, ok := d.users[userID]
	d.mu.RUnlock()
	if ok {
		return &u, nil
	}

	if d.lookup == nil {
		return nil, ErrUserNotFound
	}
	fetched, err := d.lookup(ctx, userID)
	if err != nil || fetched == nil {
		return nil, ErrUserNotFound
	}

	d.mu.Lock()
	d.users[fetched.UserID] = *fetched
	d.mu.Unlock()
	return fetched, nil
}

// Replace installs u, overwriting any cached identity for the same account.
func (d *CachedDirectory) Replace(u domain.User) {
	d.mu.Lock()
	d.users[u.UserID] = u
	d.mu.Unlock()
}

var _ UserDirectory = (*CachedDirectory)(nil)
