// Package services – outbound message copy
//
// All user-facing text lives here so the processors stay readable and the
// wording is testable in one place. Account ids are rendered as platform
// mention tokens so the client resolves them to names.
package services

import (
	"fmt"
	"strings"
)

// mention renders an account id as a platform mention token.
func mention(userID string) string { return "<@" + userID + ">" }

// mentionList renders ids as "a, b and c".
func mentionList(ids []string) string {
	switch len(ids) {
	case 0:
		return ""
	case 1:
		return mention(ids[0])
	default:
		head := make([]string, len(ids)-1)
		for i, id := range ids[:len(ids)-1] {
			head[i] = mention(id)
		}
		return strings.Join(head, ", ") + " and " + mention(ids[len(ids)-1])
	}
}

// plural returns the singular or plural noun for n.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// clampZero treats a negative remaining allowance as zero for display.
func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func sentConfirmationText(receivers []string, perReceiver, remaining int) string {
	return fmt.Sprintf("You sent %d %s to %s. You have %d left to give today.",
		perReceiver, plural(perReceiver, "avocado", "avocados"), mentionList(receivers), clampZero(remaining))
}

func receivedText(sender string, count int) string {
	return fmt.Sprintf("You received %d %s from %s:",
		count, plural(count, "avocado", "avocados"), mention(sender))
}

func insufficientText(remaining int) string {
	return fmt.Sprintf("Not enough avocados left! You only have %d %s to give today.",
		clampZero(remaining), plural(clampZero(remaining), "avocado", "avocados"))
}

func reminderText() string {
	return "It looks like you tried to give someone an avocado. Next time add the :avocado: and it will count!"
}

func revokedConfirmationText(receivers []string, perReceiver, remaining int) string {
	return fmt.Sprintf("You revoked %d %s from %s. You have %d left to give today.",
		perReceiver, plural(perReceiver, "avocado", "avocados"), mentionList(receivers), clampZero(remaining))
}

func revokedText(sender, channel string, count int) string {
	return fmt.Sprintf("%s revoked %d %s they gave you in <#%s>:",
		mention(sender), count, plural(count, "avocado", "avocados"), channel)
}

func remainingText(remaining int) string {
	return fmt.Sprintf("You have %d %s left to give today.",
		clampZero(remaining), plural(clampZero(remaining), "avocado", "avocados"))
}

func leaderboardText(entries []LeaderboardEntry) string {
	if len(entries) == 0 {
		return "No avocados have been given this season yet."
	}
	var b strings.Builder
	b.WriteString("Avocado leaderboard:")
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s: %d", i+1, e.Name, e.Count)
	}
	return b.String()
}

func helpText() string {
	return strings.Join([]string{
		"Mention a teammate with an :avocado: to send them one. Everyone can give 5 avocados per day.",
		"Commands:",
		"• `@bot leaderboard [n]` shows the season's top recipients",
		"• `@bot help` shows this message",
		"• DM me `avocados` to see how many you have left to give today",
	}, "\n")
}

func welcomeText() string {
	return "Hi! I keep track of avocados. Mention a teammate with an :avocado: to hand one out, and ask me for the `leaderboard` any time."
}
