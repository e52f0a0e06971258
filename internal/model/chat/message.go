package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the speaker of a transcript line.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts the wire spellings "user", "ai" and "assistant".
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, nil
	case "ai", "assistant":
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Label is the transcript prefix used when rendering the role.
func (r Role) Label() string {
	if r == RoleUser {
		return "User"
	}
	return "AI"
}

// MarshalJSON writes the assistant role as "ai" to match the request shape.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleAssistant {
		return json.Marshal("ai")
	}
	return json.Marshal(string(r))
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Message is one parsed transcript turn.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
