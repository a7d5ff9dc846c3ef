// Package domain defines the persistence models for avocado receipts and the
// read-only projections derived from them. These types are mapped with GORM
// and form the core data layer of the avocado ledger.
package domain

import "time"

// AvocadoReceipt is one indivisible award of a single avocado from a sender
// to a receiver. Receipts are immutable once created; reversal of an award
// is modeled as deletion of its receipts, never as an update.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned by the store.
//   - EventID: identifier of the originating chat event; indexed for the
//     idempotency lookup and for revocation joins.
//   - Sender: account id of the giver; indexed together with Timestamp for
//     the daily-quota window query.
//   - Receiver: account id of the recipient; indexed for aggregation.
//   - Timestamp: award time in epoch seconds, taken from the originating
//     message's timestamp rather than wall-clock at processing time.
//   - Message: original message text, retained for downstream notifications
//     and audit.
//
// Sender != Receiver is guaranteed upstream by mention parsing (self
// mentions never count); the store does not re-check it.
type AvocadoReceipt struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	EventID   string    `json:"event_id"  gorm:"type:varchar(64);not null;index:idx_receipt_event"`
	Sender    string    `json:"sender"    gorm:"type:varchar(64);not null;index:idx_receipt_sender_ts,priority:1"`
	Receiver  string    `json:"receiver"  gorm:"type:varchar(64);not null;index:idx_receipt_receiver"`
	Timestamp int64     `json:"timestamp" gorm:"not null;index:idx_receipt_sender_ts,priority:2"`
	Message   string    `json:"message"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for AvocadoReceipt.
func (AvocadoReceipt) TableName() string { return "avocado_receipts" }

// AvocadoCount is a read-only projection of receipts grouped by receiver.
// It is produced by aggregation and revocation queries and never persisted.
type AvocadoCount struct {
	Receiver string `json:"receiver"`
	Count    int    `json:"count"`
}

// User is the resolved identity of a chat account as known to the platform.
// Identities are cached process-locally and replaced wholesale when a
// user_change event arrives.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	IsBot  bool   `json:"is_bot"`
}
