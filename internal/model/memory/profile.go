// Package memory holds the memory profile extracted from a transcript and
// the schema used to accept or reject generated profiles.
package memory

// Profile is the structured summary of a user derived from a conversation.
// It is not persisted; callers send it back with every generate request.
type Profile struct {
	Preferences       Preferences       `json:"preferences" yaml:"preferences"`
	EmotionalPatterns EmotionalPatterns `json:"emotionalPatterns" yaml:"emotionalPatterns"`
	Facts             Facts             `json:"facts" yaml:"facts"`
}

type Preferences struct {
	Hobbies  []string `json:"hobbies" yaml:"hobbies"`
	Likes    []string `json:"likes" yaml:"likes"`
	Dislikes []string `json:"dislikes" yaml:"dislikes"`
	Habits   []string `json:"habits" yaml:"habits"`
}

type EmotionalPatterns struct {
	CommonEmotions     []string `json:"commonEmotions" yaml:"commonEmotions"`
	StressTriggers     []string `json:"stressTriggers" yaml:"stressTriggers"`
	JoySources         []string `json:"joySources" yaml:"joySources"`
	CommunicationStyle string   `json:"communicationStyle" yaml:"communicationStyle"`
}

type Facts struct {
	PersonalDetails []string `json:"personalDetails" yaml:"personalDetails"`
	Relationships   []string `json:"relationships" yaml:"relationships"`
	Goals           []string `json:"goals" yaml:"goals"`
	Values          []string `json:"values" yaml:"values"`
}

// Normalize replaces nil lists with empty ones so the JSON form always
// carries arrays.
func (p *Profile) Normalize() {
	for _, list := range p.lists() {
		if *list == nil {
			*list = []string{}
		}
	}
}

func (p *Profile) lists() []*[]string {
	return []*[]string{
		&p.Preferences.Hobbies,
		&p.Preferences.Likes,
		&p.Preferences.Dislikes,
		&p.Preferences.Habits,
		&p.EmotionalPatterns.CommonEmotions,
		&p.EmotionalPatterns.StressTriggers,
		&p.EmotionalPatterns.JoySources,
		&p.Facts.PersonalDetails,
		&p.Facts.Relationships,
		&p.Facts.Goals,
		&p.Facts.Values,
	}
}
