// Package repo implements the data persistence layer for the avocado ledger,
// backed by GORM. This file provides the receipt store: batch creation,
// the three query patterns the processor needs (by event id, by sender and
// timestamp range, aggregation by receiver with a timestamp floor), and
// revocation.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - Queries that find nothing return empty slices, not errors.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
)

// CreateReceipts persists a batch of receipts in a single insert. Each
// receipt gets a UUID primary key and a UTC CreatedAt; the caller supplies
// the award Timestamp from the originating message. An empty batch is a
// no-op. The passed slice is mutated with the assigned ids.
func CreateReceipts(ctx context.Context, db *gorm.DB, receipts []domain.AvocadoReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range receipts {
		receipts[i].ID = uuid.NewString()
		receipts[i].CreatedAt = now
	}
	return db.WithContext(ctx).Create(&receipts).Error
}

// FindByEventID returns all receipts created from the given chat event.
// Used for the durable idempotency check on redelivered events.
func FindByEventID(ctx context.Context, db *gorm.DB, eventID string) ([]domain.AvocadoReceipt, error) {
	var out []domain.AvocadoReceipt
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Find(&out).Error
	return out, err
}

// CountSentBetween returns the number of receipts sender created with a
// timestamp in the half-open interval [from, to). The quota enforcer calls
// this with the civil-day window.
func CountSentBetween(ctx context.Context, db *gorm.DB, sender string, from, to int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.AvocadoReceipt{}).
		Where("sender = ? AND timestamp >= ? AND timestamp < ?", sender, from, to).
		Count(&total).Error
	return total, err
}

// RevokeBySenderAndTimestamp deletes every receipt matching (sender,
// timestamp) and returns the deleted set grouped by receiver with counts,
// in first-seen receiver order. An empty result means nothing matched and
// nothing was deleted. Lookup and delete run in one transaction so a
// concurrent insert cannot be half-counted.
func RevokeBySenderAndTimestamp(ctx context.Context, db *gorm.DB, sender string, timestamp int64) ([]domain.AvocadoCount, error) {
	var revoked []domain.AvocadoCount
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receipts []domain.AvocadoReceipt
		if err := tx.
			Where("sender = ? AND timestamp = ?", sender, timestamp).
			Order("created_at asc").
			Find(&receipts).Error; err != nil {
			return err
		}
		if len(receipts) == 0 {
			return nil
		}
		if err := tx.
			Where("sender = ? AND timestamp = ?", sender, timestamp).
			Delete(&domain.AvocadoReceipt{}).Error; err != nil {
			return err
		}

		counts := make(map[string]int, len(receipts))
		order := make([]string, 0, len(receipts))
		for _, r := range receipts {
			if _, seen := counts[r.Receiver]; !seen {
				order = append(order, r.Receiver)
			}
			counts[r.Receiver]++
		}
		revoked = make([]domain.AvocadoCount, 0, len(order))
		for _, receiver := range order {
			revoked = append(revoked, domain.AvocadoCount{Receiver: receiver, Count: counts[receiver]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

// Leaderboard aggregates receipts with timestamp >= since into per-receiver
// counts, sorted by count descending; ties are broken by the earliest
// receipt timestamp of each receiver, ascending (the earlier first-time
// recipient wins). At most limit entries are returned; limit <= 0 falls
// back to 10.
func Leaderboard(ctx context.Context, db *gorm.DB, since int64, limit int) ([]domain.AvocadoCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []domain.AvocadoCount
	err := db.WithContext(ctx).
		Model(&domain.AvocadoReceipt{}).
		Select("receiver, COUNT(*) AS count, MIN(timestamp) AS first_ts").
		Where("timestamp >= ?", since).
		Group("receiver").
		Order("count DESC, first_ts ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
