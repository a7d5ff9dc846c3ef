// Package slack holds the wire-level types and client for the chat platform:
// the inbound event envelope with its closed set of event variants, and the
// outbound Web API client used to post notifications.
//
// Inbound events arrive as an envelope whose inner payload is one of a small
// number of shapes distinguished by a type (and sometimes subtype) field.
// Rather than a shared mutable struct with type-punned access, each category
// is decoded into its own variant carrying only the fields that category
// uses; consumers type-switch over the Event interface.
package slack

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
)

// Envelope types.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// Inner event types and subtypes.
const (
	TypeAppMention          = "app_mention"
	TypeMessage             = "message"
	TypeUserChange          = "user_change"
	TypeMemberJoinedChannel = "member_joined_channel"

	SubtypeMessageDeleted = "message_deleted"
	SubtypeMessageChanged = "message_changed"
)

// ChannelTypeIM marks a direct conversation with the bot.
const ChannelTypeIM = "im"

// Event is the closed set of inbound event variants. Exactly the types in
// this package implement it.
type Event interface {
	EventType() string
}

// Callback is the outer delivery envelope. For url_verification only
// Challenge is populated; for event_callback the EventID and the decoded
// inner Event are populated. Unknown inner types decode to Unknown so the
// router can drop them without failing the delivery.
type Callback struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	TeamID    string `json:"team_id"`
	EventID   string `json:"event_id"`
	Challenge string `json:"challenge"`
	Event     Event  `json:"-"`
}

// AppMention is a message that directly mentions the bot account.
type AppMention struct {
	User    string `json:"user"`
	Text    string `json:"text"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// EventType implements Event.
func (AppMention) EventType() string { return TypeAppMention }

// Message is any channel or DM message. Subtype distinguishes edits and
// deletes; Previous carries the prior version of an edited or deleted
// message and is the signal for the reversal path.
type Message struct {
	User        string           `json:"user"`
	Text        string           `json:"text"`
	Channel     string           `json:"channel"`
	ChannelType string           `json:"channel_type"`
	Subtype     string           `json:"subtype"`
	TS          string           `json:"ts"`
	Previous    *PreviousMessage `json:"previous_message"`
}

// EventType implements Event.
func (Message) EventType() string { return TypeMessage }

// PreviousMessage is the prior version of an edited or deleted message.
type PreviousMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	TS   string `json:"ts"`
}

// UserChange signals that a user's identity data changed out of band.
type UserChange struct {
	User Profile `json:"user"`
}

// EventType implements Event.
func (UserChange) EventType() string { return TypeUserChange }

// Profile is the platform's user object as carried in user_change events
// and users.info responses.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsBot   bool   `json:"is_bot"`
	Deleted bool   `json:"deleted"`
	Info    struct {
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
	} `json:"profile"`
}

// ToUser converts a Profile to the domain identity, preferring the display
// name, then the real name, then the account handle.
func (p Profile) ToUser() domain.User {
	name := p.Info.DisplayName
	if name == "" {
		name = p.Info.RealName
	}
	if name == "" {
		name = p.Name
	}
	return domain.User{UserID: p.ID, Name: name, IsBot: p.IsBot}
}

// MemberJoinedChannel signals that an account joined a channel.
type MemberJoinedChannel struct {
	User    string `json:"user"`
	Channel string `json:"channel"`
}

// EventType implements Event.
func (MemberJoinedChannel) EventType() string { return TypeMemberJoinedChannel }

// Unknown is any inner event type this service does not process. It is
// dropped silently and still counts as handled.
type Unknown struct {
	Type string
}

// EventType implements Event.
func (u Unknown) EventType() string { return u.Type }

// UnmarshalJSON decodes the envelope and dispatches the inner payload to the
// matching variant. Malformed inner payloads surface as decode errors;
// unrecognized types become Unknown.
func (c *Callback) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type      string          `json:"type"`
		Token     string          `json:"token"`
		TeamID    string          `json:"team_id"`
		EventID   string          `json:"event_id"`
		Challenge string          `json:"challenge"`
		Event     json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Type = raw.Type
	c.Token = raw.Token
	c.TeamID = raw.TeamID
	c.EventID = raw.EventID
	c.Challenge = raw.Challenge
	c.Event = nil

	if raw.Type != TypeEventCallback || len(raw.Event) == 0 {
		return nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw.Event, &head); err != nil {
		return err
	}

	switch head.Type {
	case TypeAppMention:
		var ev AppMention
		if err := json.Unmarshal(raw.Event, &ev); err != nil {
			return err
		}
		c.Event = ev
	case TypeMessage:
		var ev Message
		if err := json.Unmarshal(raw.Event, &ev); err != nil {
			return err
		}
		c.Event = ev
	case TypeUserChange:
		var ev UserChange
		if err := json.Unmarshal(raw.Event, &ev); err != nil {
			return err
		}
		c.Event = ev
	case TypeMemberJoinedChannel:
		var ev MemberJoinedChannel
		if err := json.Unmarshal(raw.Event, &ev); err != nil {
			return err
		}
		c.Event = ev
	default:
		c.Event = Unknown{Type: head.Type}
	}
	return nil
}

// EpochSeconds converts a platform timestamp ("1514991428.000245") to whole
// epoch seconds, truncating the fractional part. Unparsable input yields 0.
func EpochSeconds(ts string) int64 {
	if ts == "" {
		return 0
	}
	if i := strings.IndexByte(ts, '.'); i >= 0 {
		ts = ts[:i]
	}
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
