package memory

// Stats counts extracted items per group and per field.
type Stats struct {
	TotalPreferences       int            `json:"totalPreferences" yaml:"totalPreferences"`
	TotalEmotionalPatterns int            `json:"totalEmotionalPatterns" yaml:"totalEmotionalPatterns"`
	TotalFacts             int            `json:"totalFacts" yaml:"totalFacts"`
	ByCategory             map[string]int `json:"byCategory" yaml:"byCategory"`
}

// ComputeStats summarises a profile. The communication style counts as one
// emotional pattern.
func ComputeStats(p Profile) Stats {
	byCategory := map[string]int{
		"hobbies":         len(p.Preferences.Hobbies),
		"likes":           len(p.Preferences.Likes),
		"dislikes":        len(p.Preferences.Dislikes),
		"habits":          len(p.Preferences.Habits),
		"commonEmotions":  len(p.EmotionalPatterns.CommonEmotions),
		"stressTriggers":  len(p.EmotionalPatterns.StressTriggers),
		"joySources":      len(p.EmotionalPatterns.JoySources),
		"personalDetails": len(p.Facts.PersonalDetails),
		"relationships":   len(p.Facts.Relationships),
		"goals":           len(p.Facts.Goals),
		"values":          len(p.Facts.Values),
	}

	return Stats{
		TotalPreferences:       byCategory["hobbies"] + byCategory["likes"] + byCategory["dislikes"] + byCategory["habits"],
		TotalEmotionalPatterns: byCategory["commonEmotions"] + byCategory["stressTriggers"] + byCategory["joySources"] + 1,
		TotalFacts:             byCategory["personalDetails"] + byCategory["relationships"] + byCategory["goals"] + byCategory["values"],
		ByCategory:             byCategory,
	}
}
