// Package services – AwardService
//
// This file implements the award and reversal paths of the ledger. The award
// path turns a parsed message into a batch of receipts: it validates the
// sender, enforces the daily quota, filters bot recipients, persists the
// batch, and emits the confirmation and recipient notifications. The
// reversal path undoes a deleted message's receipts while they are still
// inside today's window.
//
// Notifications strictly follow persistence: a failed write sends nothing,
// while a failed notification after a successful write is logged and
// accepted (ledger correctness over notification completeness).
//
// Observability: both paths are OpenTelemetry-instrumented; spans include
// event and sender identifiers.
package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
	"github.com/holyguacamole/go-avocado-backend/internal/parse"
	"github.com/holyguacamole/go-avocado-backend/internal/repo"
	"github.com/holyguacamole/go-avocado-backend/internal/season"
	"github.com/holyguacamole/go-avocado-backend/internal/slack"
)

// Notifier dispatches outbound notification intents to the chat platform.
// Calls are fire-and-forget: the core only learns call success/failure.
type Notifier interface {
	PostMessage(ctx context.Context, channel, text string, attachments ...slack.Attachment) error
	PostEphemeral(ctx context.Context, channel, user, text string) error
	PostDirectMessage(ctx context.Context, user, text string, attachments ...slack.Attachment) error
}

// keyedMutex provides one mutex per key. The award path locks the sender's
// mutex across the quota check and receipt insert so concurrent messages
// from the same sender cannot overshoot the cap.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// AwardService owns receipt creation and revocation.
type AwardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Quota enforces the daily cap.
	Quota *QuotaEnforcer
	// Users resolves sender and recipient identities.
	Users UserDirectory
	// Notifier delivers confirmations, nudges, and recipient messages.
	Notifier Notifier

	senderLocks keyedMutex
}

// ProcessMessage runs the award path for a normal channel message. A
// message without mentions or award tokens, from an unresolvable or bot
// sender, or replaying an already-recorded event id is a silent no-op.
// Quota rejection notifies the sender ephemerally and writes nothing.
func (s *AwardService) ProcessMessage(ctx context.Context, eventID string, msg slack.Message) error {
	tr := otel.Tracer("services/AwardService")
	ctx, span := tr.Start(ctx, "ProcessMessage",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("sender.id", msg.User),
		),
	)
	defer span.End()

	mentions := parse.Mentions(msg.Text, msg.User)
	count := parse.CountAvocados(msg.Text)
	if count == 0 || len(mentions) == 0 {
		return nil
	}

	sender, err := s.Users.Find(ctx, msg.User)
	if err != nil || sender.IsBot {
		return nil
	}

	// Serialize check-then-insert per sender (quota overshoot race).
	lock := s.senderLocks.get(msg.User)
	lock.Lock()
	defer lock.Unlock()

	// Durable idempotency: a redelivery whose receipts are already
	// committed must not double-award even after the recency cache
	// forgot the event id.
	if existing, err := repo.FindByEventID(ctx, s.DB, eventID); err != nil {
		return err
	} else if len(existing) > 0 {
		return nil
	}

	proposed := count * len(mentions)
	ok, sentToday, err := s.Quota.Admit(ctx, msg.User, proposed)
	if err != nil {
		return err
	}
	if !ok {
		s.notifyEphemeral(ctx, msg.Channel, msg.User, insufficientText(s.Quota.cap()-sentToday))
		return nil
	}

	// Bots never receive avocados; unresolvable mentions are dropped too.
	receipts := make([]domain.AvocadoReceipt, 0, proposed)
	for _, m := range mentions {
		u, err := s.Users.Find(ctx, m)
		if err != nil || u.IsBot {
			continue
		}
		for i := 0; i < count; i++ {
			receipts = append(receipts, domain.AvocadoReceipt{
				EventID:   eventID,
				Sender:    msg.User,
				Receiver:  m,
				Timestamp: slack.EpochSeconds(msg.TS),
				Message:   msg.Text,
			})
		}
	}
	if len(receipts) == 0 {
		return nil
	}

	if err := repo.CreateReceipts(ctx, s.DB, receipts); err != nil {
		return err
	}

	receivers := uniqueReceivers(receipts)
	// Equal-distribution rule: integer division, uneven remainders are
	// intentionally under-reported.
	perReceiver := len(receipts) / len(receivers)
	remaining := s.Quota.cap() - sentToday - len(receivers)*perReceiver

	s.notifyEphemeral(ctx, msg.Channel, msg.User, sentConfirmationText(receivers, perReceiver, remaining))
	for _, r := range receivers {
		s.notifyDM(ctx, r, receivedText(msg.User, perReceiver), slack.Attachment{Text: msg.Text})
	}

	log.Info().
		Str("event_id", eventID).
		Str("sender", msg.User).
		Int("receipts", len(receipts)).
		Msg("avocados sent")
	return nil
}

// ProcessReversal runs the reversal path for a message event carrying a
// previous-message reference. Only deletions of messages from today's civil
// window revoke receipts; edits and stale deletions are no-ops.
func (s *AwardService) ProcessReversal(ctx context.Context, msg slack.Message) error {
	tr := otel.Tracer("services/AwardService")
	ctx, span := tr.Start(ctx, "ProcessReversal",
		trace.WithAttributes(attribute.String("subtype", msg.Subtype)),
	)
	defer span.End()

	if msg.Subtype != slack.SubtypeMessageDeleted {
		return nil
	}
	prev := msg.Previous
	if prev == nil || prev.User == "" {
		return nil
	}
	ts := slack.EpochSeconds(prev.TS)
	if !season.SameDay(ts, s.Quota.now(), s.Quota.Location) {
		return nil
	}

	revoked, err := repo.RevokeBySenderAndTimestamp(ctx, s.DB, prev.User, ts)
	if err != nil {
		return err
	}
	if len(revoked) == 0 {
		return nil
	}

	remaining, err := s.Quota.Remaining(ctx, prev.User)
	if err != nil {
		// Receipts are already gone; report the revocation without the
		// refreshed allowance rather than failing the event.
		remaining = 0
		log.Warn().Err(err).Str("sender", prev.User).Msg("remaining quota lookup failed after revocation")
	}

	receivers := make([]string, 0, len(revoked))
	for _, c := range revoked {
		receivers = append(receivers, c.Receiver)
	}
	// Every receiver in the same deleted batch carries the same count.
	perReceiver := revoked[0].Count

	s.notifyEphemeral(ctx, msg.Channel, prev.User, revokedConfirmationText(receivers, perReceiver, remaining))
	for _, c := range revoked {
		s.notifyDM(ctx, c.Receiver, revokedText(prev.User, msg.Channel, c.Count), slack.Attachment{Text: prev.Text})
	}

	log.Info().
		Str("sender", prev.User).
		Int("receivers", len(revoked)).
		Msg("avocados revoked")
	return nil
}

// notifyEphemeral posts an ephemeral message, logging failures instead of
// propagating them.
func (s *AwardService) notifyEphemeral(ctx context.Context, channel, user, text string) {
	if err := s.Notifier.PostEphemeral(ctx, channel, user, text); err != nil {
		log.Warn().Err(err).Str("user", user).Msg("ephemeral notification failed")
	}
}

// notifyDM sends a direct message, logging failures instead of propagating
// them.
func (s *AwardService) notifyDM(ctx context.Context, user, text string, attachments ...slack.Attachment) {
	if err := s.Notifier.PostDirectMessage(ctx, user, text, attachments...); err != nil {
		log.Warn().Err(err).Str("user", user).Msg("direct notification failed")
	}
}

// uniqueReceivers returns the distinct receivers of a receipt batch in
// first-seen order.
func uniqueReceivers(receipts []domain.AvocadoReceipt) []string {
	seen := make(map[string]struct{}, len(receipts))
	out := make([]string, 0, len(receipts))
	for _, r := range receipts {
		if _, ok := seen[r.Receiver]; ok {
			continue
		}
		seen[r.Receiver] = struct{}{}
		out = append(out, r.Receiver)
	}
	return out
}
