package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/transcript"
	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	"github.com/zhouzirui/z-memory/backend/internal/model/persona"
	"github.com/zhouzirui/z-memory/backend/internal/model/sample"
)

func (a *app) personasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List the available personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type summary struct {
				ID          string  `json:"id"`
				Name        string  `json:"name"`
				Description string  `json:"description"`
				Temperature float32 `json:"temperature"`
			}
			items := lo.Map(a.personaStore().List(), func(p persona.Persona, _ int) summary {
				return summary{ID: p.ID, Name: p.Name, Description: p.Description, Temperature: p.Temperature}
			})
			return a.print(cmd, items)
		},
	}
}

func (a *app) samplesCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "samples [id]",
		Short: "List sample conversations or show one",
		Long: `Without arguments, lists the bundled sample conversations.
With an id, prints that conversation. --raw prints the plain transcript
so it can be piped into "memoryctl extract -".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				type summary struct {
					ID           string `json:"id"`
					Name         string `json:"name"`
					Description  string `json:"description"`
					MessageCount int    `json:"messageCount"`
				}
				return a.print(cmd, lo.Map(sample.List(), func(c sample.Conversation, _ int) summary {
					return summary{ID: c.ID, Name: c.Name, Description: c.Description, MessageCount: len(c.Messages)}
				}))
			}

			conv, err := sample.Get(args[0])
			if err != nil {
				return err
			}
			if raw {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), conv.Transcript())
				return err
			}
			return a.print(cmd, conv)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the plain transcript")
	return cmd
}

func (a *app) parseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a transcript and report its quality warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			messages := transcript.Parse(string(data))
			return a.print(cmd, map[string]any{
				"messages":   messages,
				"validation": transcript.Validate(messages),
			})
		},
	}
}

func (a *app) extractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file|->",
		Short: "Extract a memory profile from a transcript",
		Long: `Parses the transcript, checks it and asks the configured model for a
memory profile. The output can be passed to "memoryctl ask --profile".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			messages := transcript.Parse(string(data))

			extractor, err := a.extractor(cmd.Context())
			if err != nil {
				return err
			}
			result, err := extractor.Run(cmd.Context(), messages)
			if err != nil {
				return err
			}
			return a.print(cmd, result)
		},
	}
}

func (a *app) askCommand() *cobra.Command {
	var (
		profilePath string
		personaID   string
		all         bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one persona, or all of them, a question",
		Example: `  memoryctl extract chat.txt > profile.json
  memoryctl ask "How should I spend my weekend?" --profile profile.json --persona calm_mentor
  memoryctl ask "How should I spend my weekend?" --profile profile.json --all -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && personaID == "" {
				return errors.New("specify --persona <id> or --all")
			}

			data, err := readInput(cmd, profilePath)
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}
			profile, err := loadProfile(data)
			if err != nil {
				return err
			}

			responder, err := a.responder(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			if all {
				responses, err := responder.GenerateAllPersonaResponses(cmd.Context(), query, profile)
				if err != nil {
					return err
				}
				return a.print(cmd, map[string]any{
					"responses":   responses,
					"memoryUsage": responder.Compare(responses).MemoryUsage,
				})
			}

			resp, err := responder.GeneratePersonaResponse(cmd.Context(), personaID, query, profile)
			if err != nil {
				return err
			}
			return a.print(cmd, resp)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "memory profile file, JSON or YAML (- for stdin)")
	cmd.Flags().StringVar(&personaID, "persona", "", "persona id (see memoryctl personas)")
	cmd.Flags().BoolVar(&all, "all", false, "ask every persona")
	cmd.MarkFlagsMutuallyExclusive("persona", "all")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// loadProfile accepts a bare profile or the full output of extract, in
// JSON or YAML.
func loadProfile(data []byte) (memory.Profile, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return memory.Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if root, ok := doc.(map[string]any); ok {
		if inner, ok := root["memories"]; ok {
			doc = inner
		}
	}
	profile, err := memory.Validate(doc)
	if err != nil {
		return memory.Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return profile, nil
}
