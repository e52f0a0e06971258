package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-memory/backend/internal/config"
)

// Options are the per-call sampling settings passed to the model.
type Options struct {
	Temperature float32
	MaxTokens   int
	// JSON asks for a single JSON object as output.
	JSON bool
}

// Generator is the text-completion boundary used by the orchestration
// services. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// StreamingGenerator can additionally stream the completion in chunks.
type StreamingGenerator interface {
	Generator
	Stream(ctx context.Context, prompt string, opts Options) (*schema.StreamReader[*schema.Message], error)
	StreamingEnabled() bool
}

// Service runs prompts through an eino chain backed by a chat model.
type Service struct {
	chain     compose.Runnable[map[string]any, *schema.Message]
	streaming bool
	logger    *log.Logger
}

// NewService creates the Ark backed generator described by cfg.
func NewService(ctx context.Context, cfg config.AIConfig, logger *log.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg.StreamResponse, logger)
}

// NewServiceWithModel wires an existing chat model into the prompt chain.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, streaming bool, logger *log.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{
		chain:     runnable,
		streaming: streaming,
		logger:    logger.WithPrefix("ai"),
	}, nil
}

// StreamingEnabled 指示是否开启流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.streaming
}

// Generate runs a single completion and returns the text content.
func (s *Service) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	response, err := s.chain.Invoke(ctx, chainInput(prompt), s.chainOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}
	if response == nil {
		return "", fmt.Errorf("model returned no message")
	}

	s.logger.Debug("generated completion", "length", len(response.Content), "temperature", opts.Temperature, "json", opts.JSON)
	return response.Content, nil
}

// Stream streams completion chunks via the configured chain.
func (s *Service) Stream(ctx context.Context, prompt string, opts Options) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, chainInput(prompt), s.chainOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to stream generation chain output: %w", err)
	}
	return stream, nil
}

// chainOptions maps Options onto the chat model. The Ark model takes no
// per-call response format, so JSON output relies on the prompt alone.
func (s *Service) chainOptions(opts Options) []compose.Option {
	if opts.JSON {
		s.logger.Debug("json response format not supported by chat model, relying on prompt")
	}
	modelOpts := make([]model.Option, 0, 2)
	if opts.Temperature > 0 {
		modelOpts = append(modelOpts, model.WithTemperature(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		modelOpts = append(modelOpts, model.WithMaxTokens(opts.MaxTokens))
	}
	if len(modelOpts) == 0 {
		return nil
	}
	return []compose.Option{compose.WithChatModelOption(modelOpts...)}
}

func chainInput(prompt string) map[string]any {
	return map[string]any{"prompt": prompt}
}

// CleanJSON strips a surrounding markdown code fence that some models add
// even when asked for bare JSON.
func CleanJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
