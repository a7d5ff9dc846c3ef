// Package services – quota enforcer
//
// This file computes a sender's remaining daily allowance against the
// receipt store and decides whether a prospective award batch is admissible.
// "Today" is anchored to a configured civil timezone, not UTC, so the cap
// resets at local midnight.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/holyguacamole/go-avocado-backend/internal/repo"
	"github.com/holyguacamole/go-avocado-backend/internal/season"
)

// DefaultDailyCap is the per-sender avocado allowance per civil day.
const DefaultDailyCap = 5

// QuotaEnforcer answers "how many more avocados may this sender give
// today". The quota check and the subsequent receipt insert are not one
// atomic operation at this level; AwardService serializes the award path
// per sender to keep the cap airtight.
type QuotaEnforcer struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Cap is the daily allowance; values <= 0 fall back to DefaultDailyCap.
	Cap int
	// Location anchors the civil day window.
	Location *time.Location
	// Now is the clock seam; nil means time.Now.
	Now func() time.Time
}

// cap returns the effective daily allowance.
func (q *QuotaEnforcer) cap() int {
	if q.Cap > 0 {
		return q.Cap
	}
	return DefaultDailyCap
}

func (q *QuotaEnforcer) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

// SentToday returns the number of receipts sender has created within the
// current civil day.
func (q *QuotaEnforcer) SentToday(ctx context.Context, sender string) (int, error) {
	from, to := season.DayWindow(q.now(), q.Location)
	n, err := repo.CountSentBetween(ctx, q.DB, sender, from, to)
	return int(n), err
}

// Remaining returns cap minus the receipts sent today. The value is not
// clamped; callers treat negatives as zero for display.
func (q *QuotaEnforcer) Remaining(ctx context.Context, sender string) (int, error) {
	sent, err := q.SentToday(ctx, sender)
	if err != nil {
		return 0, err
	}
	return q.cap() - sent, nil
}

// Admit reports whether sender may create proposed more receipts today.
// It also returns the pre-insert sent count so the caller can compute the
// post-award remaining without a second query.
func (q *QuotaEnforcer) Admit(ctx context.Context, sender string, proposed int) (ok bool, sentToday int, err error) {
	sentToday, err = q.SentToday(ctx, sender)
	if err != nil {
		return false, 0, err
	}
	return sentToday+proposed <= q.cap(), sentToday, nil
}
