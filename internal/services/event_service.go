// Package services – EventService
//
// This file routes verified event callbacks to the right processor: award
// messages, deletion reversals, direct-message commands, app mentions
// (leaderboard and help), user profile changes, and the bot's own channel
// joins. It also computes the season leaderboard shared by the chat command
// and the REST endpoint.
package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holyguacamole/go-avocado-backend/internal/parse"
	"github.com/holyguacamole/go-avocado-backend/internal/repo"
	"github.com/holyguacamole/go-avocado-backend/internal/season"
	"github.com/holyguacamole/go-avocado-backend/internal/slack"
)

// defaultLeaderboardLimit caps leaderboard output when the request names no
// explicit entry count.
const defaultLeaderboardLimit = 10

var limitRE = regexp.MustCompile(`[0-9]+`)

// EventService routes verified event callbacks to the matching workflow:
// award, reversal, command handling, directory maintenance, or channel
// onboarding.
type EventService struct {
	DB     *gorm.DB
	Awards *AwardService
	Users  UserDirectory
	// Notifier delivers command replies and the welcome message.
	Notifier Notifier
	// BotUserID identifies the bot's own account so that joining a channel
	// triggers the welcome message.
	BotUserID string
	// SeasonMonth and SeasonDay anchor the leaderboard window.
	SeasonMonth time.Month
	SeasonDay   int
	Location    *time.Location
	Now         func() time.Time
}

func (s *EventService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Process dispatches one deduplicated callback. Unknown event types are
// accepted and ignored.
func (s *EventService) Process(ctx context.Context, cb slack.Callback) error {
	if cb.Event == nil {
		return nil
	}
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.String("event.id", cb.EventID),
			attribute.String("event.type", cb.Event.EventType()),
		),
	)
	defer span.End()

	switch ev := cb.Event.(type) {
	case slack.AppMention:
		return s.handleAppMention(ctx, ev)
	case slack.Message:
		return s.handleMessage(ctx, cb.EventID, ev)
	case slack.UserChange:
		s.Users.Replace(ev.User.ToUser())
		return nil
	case slack.MemberJoinedChannel:
		if ev.User == s.BotUserID {
			s.notify(ctx, ev.Channel, welcomeText())
		}
		return nil
	default:
		log.Debug().Str("type", cb.Event.EventType()).Msg("ignoring event")
		return nil
	}
}

// handleAppMention serves the at-mention command surface: "leaderboard"
// with an optional entry count, and "help".
func (s *EventService) handleAppMention(ctx context.Context, ev slack.AppMention) error {
	text := strings.ToLower(ev.Text)
	switch {
	case strings.Contains(text, "leaderboard"):
		// Only digits after the keyword count; mention tokens such as
		// <@u024be7lh> earlier in the text carry digits of their own.
		rest := text[strings.Index(text, "leaderboard")+len("leaderboard"):]
		limit := defaultLeaderboardLimit
		if m := limitRE.FindString(rest); m != "" {
			if n, err := strconv.Atoi(m); err == nil && n > 0 {
				limit = n
			}
		}
		return s.postLeaderboard(ctx, ev.Channel, limit)
	case strings.Contains(text, "help"):
		s.notify(ctx, ev.Channel, helpText())
		return nil
	default:
		return nil
	}
}

// LeaderboardEntry is one resolved row of the season leaderboard.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// Leaderboard returns the season's top recipients with resolved display
// names, ordered by count with ties broken by earliest receipt.
func (s *EventService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	since := season.Start(s.now(), s.SeasonMonth, s.SeasonDay, s.Location)
	counts, err := repo.Leaderboard(ctx, s.DB, since, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(counts))
	for _, c := range counts {
		name := c.Receiver
		if u, err := s.Users.Find(ctx, c.Receiver); err == nil && u.Name != "" {
			name = u.Name
		}
		entries = append(entries, LeaderboardEntry{UserID: c.Receiver, Name: name, Count: c.Count})
	}
	return entries, nil
}

func (s *EventService) postLeaderboard(ctx context.Context, channel string, limit int) error {
	entries, err := s.Leaderboard(ctx, limit)
	if err != nil {
		return err
	}
	s.notify(ctx, channel, leaderboardText(entries))
	return nil
}

// handleMessage covers ordinary channel traffic, direct-message commands,
// reminder nudges, and reversal of deleted messages.
func (s *EventService) handleMessage(ctx context.Context, eventID string, msg slack.Message) error {
	if msg.Previous != nil {
		return s.Awards.ProcessReversal(ctx, msg)
	}
	if msg.ChannelType == slack.ChannelTypeIM {
		return s.handleDirectMessage(ctx, msg)
	}
	if msg.User == "" || msg.Text == "" {
		return nil
	}
	if parse.IsReminder(msg.Text, msg.User) {
		s.Awards.notifyEphemeral(ctx, msg.Channel, msg.User, reminderText())
		return nil
	}
	return s.Awards.ProcessMessage(ctx, eventID, msg)
}

// handleDirectMessage serves the "avocados" allowance query over DM.
func (s *EventService) handleDirectMessage(ctx context.Context, msg slack.Message) error {
	if msg.User == "" || msg.User == s.BotUserID {
		return nil
	}
	if !strings.Contains(strings.ToLower(msg.Text), "avocados") {
		return nil
	}
	remaining, err := s.Awards.Quota.Remaining(ctx, msg.User)
	if err != nil {
		return err
	}
	s.notify(ctx, msg.Channel, remainingText(clampZero(remaining)))
	return nil
}

func (s *EventService) notify(ctx context.Context, channel, text string) {
	if err := s.Notifier.PostMessage(ctx, channel, text); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("notification failed")
	}
}
