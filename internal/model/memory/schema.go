package memory

import (
	"encoding/json"
	"fmt"
	"strings"
)

type fieldKind int

const (
	kindObject fieldKind = iota
	kindStringList
	kindText
)

func (k fieldKind) String() string {
	switch k {
	case kindObject:
		return "object"
	case kindStringList:
		return "array of strings"
	default:
		return "string"
	}
}

// fieldSpec describes one node of the profile document. Lists are optional
// and default to empty; objects and text are required.
type fieldSpec struct {
	path     string
	kind     fieldKind
	required bool
	list     func(*Profile) *[]string
	text     func(*Profile) *string
}

var profileSchema = []fieldSpec{
	{path: "preferences", kind: kindObject, required: true},
	{path: "preferences.hobbies", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Preferences.Hobbies }},
	{path: "preferences.likes", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Preferences.Likes }},
	{path: "preferences.dislikes", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Preferences.Dislikes }},
	{path: "preferences.habits", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Preferences.Habits }},

	{path: "emotionalPatterns", kind: kindObject, required: true},
	{path: "emotionalPatterns.commonEmotions", kind: kindStringList, list: func(p *Profile) *[]string { return &p.EmotionalPatterns.CommonEmotions }},
	{path: "emotionalPatterns.stressTriggers", kind: kindStringList, list: func(p *Profile) *[]string { return &p.EmotionalPatterns.StressTriggers }},
	{path: "emotionalPatterns.joySources", kind: kindStringList, list: func(p *Profile) *[]string { return &p.EmotionalPatterns.JoySources }},
	{path: "emotionalPatterns.communicationStyle", kind: kindText, required: true, text: func(p *Profile) *string { return &p.EmotionalPatterns.CommunicationStyle }},

	{path: "facts", kind: kindObject, required: true},
	{path: "facts.personalDetails", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Facts.PersonalDetails }},
	{path: "facts.relationships", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Facts.Relationships }},
	{path: "facts.goals", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Facts.Goals }},
	{path: "facts.values", kind: kindStringList, list: func(p *Profile) *[]string { return &p.Facts.Values }},
}

// Violation is a single schema failure.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Reason
}

// SchemaError lists every violation found in one pass.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "memory profile does not match schema: " + strings.Join(parts, "; ")
}

// Decode parses raw JSON and validates it against the profile schema.
func Decode(raw []byte) (Profile, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Profile{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return Validate(doc)
}

// Validate checks a generic JSON document (as produced by encoding/json)
// and returns the typed profile on success.
func Validate(doc any) (Profile, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return Profile{}, &SchemaError{Violations: []Violation{{Path: "$", Reason: "expected object"}}}
	}

	var (
		profile    Profile
		violations []Violation
		broken     = make(map[string]bool)
	)

	for _, spec := range profileSchema {
		if parent := parentPath(spec.path); parent != "" && broken[parent] {
			continue
		}

		value, present := lookup(root, spec.path)
		if !present || value == nil {
			if spec.required {
				violations = append(violations, Violation{Path: spec.path, Reason: "required"})
				broken[spec.path] = true
			}
			continue
		}

		switch spec.kind {
		case kindObject:
			if _, ok := value.(map[string]any); !ok {
				violations = append(violations, typeViolation(spec))
				broken[spec.path] = true
			}
		case kindStringList:
			items, ok := stringList(value)
			if !ok {
				violations = append(violations, typeViolation(spec))
				continue
			}
			*spec.list(&profile) = items
		case kindText:
			text, ok := value.(string)
			if !ok {
				violations = append(violations, typeViolation(spec))
				continue
			}
			if spec.required && strings.TrimSpace(text) == "" {
				violations = append(violations, Violation{Path: spec.path, Reason: "must not be empty"})
				continue
			}
			*spec.text(&profile) = text
		}
	}

	if len(violations) > 0 {
		return Profile{}, &SchemaError{Violations: violations}
	}

	profile.Normalize()
	return profile, nil
}

// Check validates an already typed profile, as received from a client.
func Check(p Profile) error {
	if strings.TrimSpace(p.EmotionalPatterns.CommunicationStyle) == "" {
		return &SchemaError{Violations: []Violation{{Path: "emotionalPatterns.communicationStyle", Reason: "must not be empty"}}}
	}
	return nil
}

func typeViolation(spec fieldSpec) Violation {
	return Violation{Path: spec.path, Reason: "expected " + spec.kind.String()}
}

func stringList(value any) ([]string, bool) {
	raw, ok := value.([]any)
	if !ok {
		return nil, false
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		text, ok := item.(string)
		if !ok {
			return nil, false
		}
		items = append(items, text)
	}
	return items, true
}

func lookup(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
