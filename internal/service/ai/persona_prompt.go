package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	"github.com/zhouzirui/z-memory/backend/internal/model/persona"
)

// BuildPersonaPrompt renders persona instructions, the memory context and
// the user's question. Same inputs always give the same prompt.
func BuildPersonaPrompt(p persona.Persona, query string, profile memory.Profile) string {
	return fmt.Sprintf(`%s

**IMPORTANT INSTRUCTIONS:**
1. Stay fully in character as the %s
2. Weave the memories in naturally, never just list them
3. Keep the reply conversational, 2-4 paragraphs
4. Refer to specific memories when they are relevant to the question
5. Keep the tone and style described above

**WHAT YOU KNOW ABOUT THE USER:**

%s

**USER'S QUESTION:**
%s

**YOUR RESPONSE (as %s):**`,
		p.SystemInstructions,
		p.Name,
		FormatMemoryContext(profile),
		query,
		p.Name,
	)
}

// FormatMemoryContext renders only the non-empty parts of a profile.
func FormatMemoryContext(profile memory.Profile) string {
	sections := make([]string, 0, 3)

	prefs := profile.Preferences
	if anyItems(prefs.Hobbies, prefs.Likes, prefs.Dislikes, prefs.Habits) {
		sections = append(sections, section("Preferences",
			line("Hobbies", prefs.Hobbies),
			line("Likes", prefs.Likes),
			line("Dislikes", prefs.Dislikes),
			line("Habits", prefs.Habits),
		))
	}

	// communicationStyle alone does not open this section.
	emotions := profile.EmotionalPatterns
	if anyItems(emotions.CommonEmotions, emotions.StressTriggers) {
		style := ""
		if s := strings.TrimSpace(emotions.CommunicationStyle); s != "" {
			style = "Communication Style: " + s
		}
		sections = append(sections, section("Emotional Patterns",
			line("Common Emotions", emotions.CommonEmotions),
			line("Stress Triggers", emotions.StressTriggers),
			line("Joy Sources", emotions.JoySources),
			style,
		))
	}

	facts := profile.Facts
	if anyItems(facts.PersonalDetails, facts.Relationships, facts.Goals, facts.Values) {
		sections = append(sections, section("Important Facts",
			line("Personal", facts.PersonalDetails),
			line("Relationships", facts.Relationships),
			line("Goals", facts.Goals),
			line("Values", facts.Values),
		))
	}

	return strings.Join(sections, "\n\n")
}

func anyItems(lists ...[]string) bool {
	for _, list := range lists {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

func line(label string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return label + ": " + strings.Join(items, ", ")
}

func section(title string, lines ...string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return "**" + title + ":**\n" + strings.Join(kept, "\n")
}
