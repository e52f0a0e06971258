package ai

import (
	"strings"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/transcript"
	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
)

const extractionPromptHeader = `You are a careful memory extraction system for a companion AI. Read the conversation below and extract structured information about the user.

**CRITICAL INSTRUCTIONS:**

1. **Look for PATTERNS, not one-off mentions**
   - Only include information that appears 2 or more times or is clearly emphasized
   - Do not make assumptions from a single mention

2. **Be SPECIFIC, not vague**
   - Prefer concrete details (e.g., "brews pour-over coffee every morning" rather than "likes coffee")
   - Keep useful context

3. **Extract USEFUL information**
   - Details that help understand the user
   - Details that can be brought up in later conversations

4. **Read ALL messages**
   - Notice recurring themes
   - Notice patterns in emotional reactions
   - Notice consistent habits and preferences

**EXTRACTION CATEGORIES:**

**Preferences:**
- hobbies: Activities the user does or talks about doing
- likes: Things the user speaks about positively
- dislikes: Things the user speaks about negatively or avoids
- habits: Regular routines and behavioral patterns

**Emotional Patterns:**
- commonEmotions: Emotions the user often expresses or experiences
- stressTriggers: Situations or factors that cause stress or anxiety
- joySources: Things that reliably bring happiness, excitement or satisfaction
- communicationStyle: How the user communicates (e.g., "direct and analytical", "reflective and thoughtful", "casual and humorous")

**Facts:**
- personalDetails: Concrete personal information (occupation, location, age, etc.)
- relationships: Family, friends, colleagues, pets
- goals: Aspirations and things they are working towards
- values: Core beliefs and what matters most to them

**OUTPUT FORMAT:**
Return ONLY one valid JSON object with exactly this structure and no text before or after it:

{
  "preferences": {
    "hobbies": ["specific hobby 1", "specific hobby 2"],
    "likes": ["specific like 1", "specific like 2"],
    "dislikes": ["specific dislike 1", "specific dislike 2"],
    "habits": ["specific habit 1", "specific habit 2"]
  },
  "emotionalPatterns": {
    "commonEmotions": ["emotion 1", "emotion 2"],
    "stressTriggers": ["trigger 1", "trigger 2"],
    "joySources": ["source 1", "source 2"],
    "communicationStyle": "description of communication style"
  },
  "facts": {
    "personalDetails": ["detail 1", "detail 2"],
    "relationships": ["relationship 1", "relationship 2"],
    "goals": ["goal 1", "goal 2"],
    "values": ["value 1", "value 2"]
  }
}

**QUALITY GUIDELINES:**
- Each array should contain 2-8 items
- Be specific and detailed in every entry
- Use full phrases or short sentences
- Every entry must be supported by the conversation
- When a category has too little evidence, include fewer items rather than inventing any
- communicationStyle must never be empty

**CONVERSATION TO ANALYZE:**

`

const extractionPromptFooter = `

**NOW EXTRACT THE MEMORIES AS JSON:**`

// BuildExtractionPrompt embeds the transcript into the extraction
// instructions. The output depends only on messages.
func BuildExtractionPrompt(messages []chat.Message) string {
	var builder strings.Builder
	builder.WriteString(extractionPromptHeader)
	builder.WriteString(transcript.FormatBlocks(messages))
	builder.WriteString(extractionPromptFooter)
	return builder.String()
}
