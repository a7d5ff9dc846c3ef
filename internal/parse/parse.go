// Package parse turns raw chat message text into the structured signals the
// event processor acts on: the list of mentioned accounts, the number of
// avocados being handed out, and whether the message deserves a reminder
// nudge. Everything here is pure; absent text is treated as empty text.
package parse

import (
	"regexp"
	"strings"
)

const (
	// AvocadoText is the award trigger token. Each occurrence in a message
	// hands one avocado to every mentioned account.
	AvocadoText = ":avocado:"

	// almostText is the "almost did it" trigger: the bare word without the
	// emoji colons. A message that mentions people and contains the word but
	// zero award tokens earns the sender a reminder.
	almostText = "avocado"
)

// mentionRE matches platform mention tokens of the form <@U12345>.
var mentionRE = regexp.MustCompile(`<@([0-9A-Z]*?)>`)

// Mentions returns the account ids mentioned in text, in order of
// appearance, excluding authorID. Repeated mentions are kept; repetition
// multiplies the number of receipts a message creates.
func Mentions(text, authorID string) []string {
	if text == "" {
		return nil
	}
	matches := mentionRE.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] == "" || m[1] == authorID {
			continue
		}
		out = append(out, m[1])
	}
	return out
}

// CountAvocados returns the number of award-token occurrences in text,
// counted as split boundaries (splits minus one).
func CountAvocados(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Split(text, AvocadoText)) - 1
}

// IsReminder reports whether text mentions at least one other account,
// contains no award tokens, and includes the bare trigger word. Such
// messages nudge the sender that they probably meant to award.
func IsReminder(text, authorID string) bool {
	if text == "" {
		return false
	}
	if CountAvocados(text) != 0 {
		return false
	}
	if len(Mentions(text, authorID)) == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(text), almostText)
}
