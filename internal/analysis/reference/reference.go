// Package reference attributes generated text back to memory profile items
// with a keyword overlap heuristic. Matching is deliberately loose: no
// stemming, and common words longer than three letters can match.
package reference

import (
	"strings"

	"github.com/samber/lo"

	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
)

const minKeywordLength = 4

type category struct {
	label string
	items func(p memory.Profile) []string
}

var categories = []category{
	{"Hobby", func(p memory.Profile) []string { return p.Preferences.Hobbies }},
	{"Like", func(p memory.Profile) []string { return p.Preferences.Likes }},
	{"Dislike", func(p memory.Profile) []string { return p.Preferences.Dislikes }},
	{"Habit", func(p memory.Profile) []string { return p.Preferences.Habits }},
	{"Emotion", func(p memory.Profile) []string { return p.EmotionalPatterns.CommonEmotions }},
	{"Stress Trigger", func(p memory.Profile) []string { return p.EmotionalPatterns.StressTriggers }},
	{"Joy Source", func(p memory.Profile) []string { return p.EmotionalPatterns.JoySources }},
	{"Communication Style", func(p memory.Profile) []string {
		return []string{p.EmotionalPatterns.CommunicationStyle}
	}},
	{"Personal Detail", func(p memory.Profile) []string { return p.Facts.PersonalDetails }},
	{"Relationship", func(p memory.Profile) []string { return p.Facts.Relationships }},
	{"Goal", func(p memory.Profile) []string { return p.Facts.Goals }},
	{"Value", func(p memory.Profile) []string { return p.Facts.Values }},
}

// Extract returns "<Label>: <item>" for every profile item the response
// appears to mention, in profile order and without duplicates.
func Extract(response string, profile memory.Profile) []string {
	lowerResponse := strings.ToLower(response)
	references := make([]string, 0)

	for _, c := range categories {
		for _, item := range c.items(profile) {
			if Matches(lowerResponse, item) {
				references = append(references, c.label+": "+item)
			}
		}
	}

	return lo.Uniq(references)
}

// Matches reports whether item is referenced by an already lower-cased
// response: either the whole item occurs in it, or one of the item's
// words longer than three characters does.
func Matches(lowerResponse, item string) bool {
	lowerItem := strings.ToLower(item)
	if strings.TrimSpace(lowerItem) == "" {
		return false
	}
	if strings.Contains(lowerResponse, lowerItem) {
		return true
	}

	for _, word := range strings.Split(lowerItem, " ") {
		if len([]rune(word)) >= minKeywordLength && strings.Contains(lowerResponse, word) {
			return true
		}
	}
	return false
}
