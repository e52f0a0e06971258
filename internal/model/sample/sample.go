// Package sample bundles demo conversations for the UI, the CLI and tests.
package sample

import (
	"embed"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/transcript"
	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
)

//go:embed data/index.yaml data/*.txt
var files embed.FS

// Conversation is a bundled demo transcript.
type Conversation struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Messages    []chat.Message `json:"messages" yaml:"messages"`
}

type indexEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	File        string `yaml:"file"`
}

var conversations = mustLoad()

func mustLoad() []Conversation {
	items, err := load()
	if err != nil {
		panic(err)
	}
	return items
}

func load() ([]Conversation, error) {
	raw, err := files.ReadFile("data/index.yaml")
	if err != nil {
		return nil, fmt.Errorf("read sample index: %w", err)
	}

	var index []indexEntry
	if err := yaml.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("decode sample index: %w", err)
	}

	items := make([]Conversation, 0, len(index))
	for _, entry := range index {
		text, err := files.ReadFile(path.Join("data", entry.File))
		if err != nil {
			return nil, fmt.Errorf("read sample %s: %w", entry.ID, err)
		}
		items = append(items, Conversation{
			ID:          entry.ID,
			Name:        entry.Name,
			Description: entry.Description,
			Messages:    transcript.Parse(string(text)),
		})
	}
	return items, nil
}

// List returns every sample in index order.
func List() []Conversation {
	out := make([]Conversation, len(conversations))
	for i, c := range conversations {
		out[i] = c.clone()
	}
	return out
}

// Get returns a sample by id.
func Get(id string) (Conversation, error) {
	for _, c := range conversations {
		if c.ID == id {
			return c.clone(), nil
		}
	}
	return Conversation{}, apperr.NotFound("sample conversation %q not found", id)
}

// Transcript renders the sample in the pasted-text format.
func (c Conversation) Transcript() string {
	return transcript.Format(c.Messages)
}

func (c Conversation) clone() Conversation {
	c.Messages = append([]chat.Message(nil), c.Messages...)
	return c
}
