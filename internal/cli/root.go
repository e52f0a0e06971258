// Package cli implements the memoryctl command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-memory/backend/internal/config"
	"github.com/zhouzirui/z-memory/backend/internal/model/persona"
	"github.com/zhouzirui/z-memory/backend/internal/service/ai"
	memoryService "github.com/zhouzirui/z-memory/backend/internal/service/memory"
	responseService "github.com/zhouzirui/z-memory/backend/internal/service/response"
)

// GeneratorFactory builds the text generator for commands that need one.
type GeneratorFactory func(ctx context.Context, cfg config.AIConfig, logger *log.Logger) (ai.Generator, error)

type app struct {
	configPath string
	output     string
	verbose    bool

	newGenerator GeneratorFactory

	cfg    *config.Config
	logger *log.Logger
}

func defaultGenerator(ctx context.Context, cfg config.AIConfig, logger *log.Logger) (ai.Generator, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("no credentials configured for provider %q", cfg.Provider)
	}
	gen, err := ai.NewGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// NewRootCommand assembles the command tree. A nil factory uses the
// configured provider.
func NewRootCommand(factory GeneratorFactory) *cobra.Command {
	if factory == nil {
		factory = defaultGenerator
	}
	a := &app{newGenerator: factory}

	root := &cobra.Command{
		Use:   "memoryctl",
		Short: "Extract memory profiles and ask personas from the terminal",
		Long: `memoryctl works with the same pipeline as the HTTP API.

It parses "User:"/"AI:" transcripts, extracts a structured memory profile
with the configured model, and asks one or all personas a question
grounded in that profile.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML config file (defaults to $MEMORY_CONFIG)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", formatJSON, "output format: json or yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.personasCommand(),
		a.samplesCommand(),
		a.parseCommand(),
		a.extractCommand(),
		a.askCommand(),
	)
	return root
}

// Execute runs the CLI against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(nil).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := checkFormat(a.output); err != nil {
		return err
	}

	// .env is optional for the CLI
	_ = godotenv.Load()

	path := a.configPath
	if path == "" {
		path = os.Getenv("MEMORY_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
		Prefix:          "memoryctl",
	})
	return nil
}

func (a *app) personaStore() *persona.MemoryStore {
	return persona.NewMemoryStore(persona.Seed())
}

// generator is created lazily so read-only commands work without credentials.
func (a *app) generator(ctx context.Context) (ai.Generator, error) {
	gen, err := a.newGenerator(ctx, a.cfg.AI, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	return gen, nil
}

func (a *app) extractor(ctx context.Context) (*memoryService.Service, error) {
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, err
	}
	return memoryService.NewService(gen, a.logger,
		memoryService.WithSampling(a.cfg.AI.ExtractionTemperature, a.cfg.AI.ExtractionMaxTokens)), nil
}

func (a *app) responder(ctx context.Context) (*responseService.Service, error) {
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, err
	}
	return responseService.NewService(gen, a.personaStore(), a.logger,
		responseService.WithMaxTokens(a.cfg.AI.ResponseMaxTokens)), nil
}

func (a *app) print(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), a.output, v)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
