package ai

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIGenerator talks to any OpenAI compatible chat completions endpoint.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	streaming bool
	logger    *log.Logger
}

func NewOpenAIGenerator(logger *log.Logger, apiKey, baseURL, model string, streaming bool) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	if logger == nil {
		logger = log.Default()
	}
	return &OpenAIGenerator{
		client:    &client,
		model:     model,
		streaming: streaming,
		logger:    logger.WithPrefix("openai"),
	}
}

func (g *OpenAIGenerator) StreamingEnabled() bool {
	return g.streaming
}

func (g *OpenAIGenerator) params(prompt string, opts Options) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(float64(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, g.params(prompt, opts))
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no completion choices")
	}

	content := completion.Choices[0].Message.Content
	g.logger.Debug("generated completion", "model", g.model, "length", len(content))
	return content, nil
}

// Stream adapts the SSE completion stream to an eino stream reader so that
// callers consume both providers the same way.
func (g *OpenAIGenerator) Stream(ctx context.Context, prompt string, opts Options) (*schema.StreamReader[*schema.Message], error) {
	if !g.streaming {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	upstream := g.client.Chat.Completions.NewStreaming(ctx, g.params(prompt, opts))
	reader, writer := schema.Pipe[*schema.Message](8)

	go func() {
		defer writer.Close()
		defer upstream.Close()

		for upstream.Next() {
			chunk := upstream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if closed := writer.Send(schema.AssistantMessage(delta, nil), nil); closed {
				return
			}
		}
		if err := upstream.Err(); err != nil {
			writer.Send(nil, fmt.Errorf("chat completion stream failed: %w", err))
		}
	}()

	return reader, nil
}
