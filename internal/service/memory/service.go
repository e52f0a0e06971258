// Package memory turns transcripts into memory profiles through the
// configured text generator.
package memory

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/transcript"
	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	"github.com/zhouzirui/z-memory/backend/internal/service/ai"
)

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4096

	// below this many messages the result is usually thin
	minReliableMessages = 10

	errPrefix = "Memory extraction failed"
)

// Result is what the HTTP and CLI layers hand back after a full run.
type Result struct {
	Memories   memory.Profile              `json:"memories" yaml:"memories"`
	Validation transcript.ValidationResult `json:"validation" yaml:"validation"`
	Stats      memory.Stats                `json:"stats" yaml:"stats"`
}

// Service runs the extraction pipeline.
type Service struct {
	generator   ai.Generator
	logger      *log.Logger
	tracer      trace.Tracer
	temperature float32
	maxTokens   int
}

// Option customises a Service.
type Option func(*Service)

// WithSampling overrides the extraction temperature and output cap.
func WithSampling(temperature float32, maxTokens int) Option {
	return func(s *Service) {
		if temperature > 0 {
			s.temperature = temperature
		}
		if maxTokens > 0 {
			s.maxTokens = maxTokens
		}
	}
}

// NewService creates the extraction service. A nil generator is allowed;
// extraction then fails as unavailable.
func NewService(generator ai.Generator, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		generator:   generator,
		logger:      logger.WithPrefix("memory"),
		tracer:      otel.Tracer("github.com/zhouzirui/z-memory/backend/internal/service/memory"),
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractMemories makes one generation call and validates its JSON output.
func (s *Service) ExtractMemories(ctx context.Context, messages []chat.Message) (memory.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "memory.extract", trace.WithAttributes(
		attribute.Int("transcript.messages", len(messages)),
	))
	defer span.End()

	profile, err := s.extract(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return memory.Profile{}, err
	}
	return profile, nil
}

func (s *Service) extract(ctx context.Context, messages []chat.Message) (memory.Profile, error) {
	if len(messages) == 0 {
		return memory.Profile{}, apperr.Validation("%s: no messages provided", errPrefix)
	}
	if s.generator == nil {
		return memory.Profile{}, apperr.Newf(apperr.KindUnavailable, "%s: AI service is not configured", errPrefix)
	}
	if len(messages) < minReliableMessages {
		s.logger.Warn("few messages for reliable extraction", "count", len(messages))
	}

	prompt := ai.BuildExtractionPrompt(messages)
	text, err := s.generator.Generate(ctx, prompt, ai.Options{
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		return memory.Profile{}, apperr.External(err, errPrefix)
	}

	profile, err := memory.Decode([]byte(ai.CleanJSON(text)))
	if err != nil {
		s.logger.Debug("rejected model output", "output", text)
		return memory.Profile{}, apperr.External(err, errPrefix)
	}

	s.logger.Info("memories extracted", "messages", len(messages), "communicationStyle", profile.EmotionalPatterns.CommunicationStyle)
	return profile, nil
}

// Run validates the transcript, logs its warnings and extracts the profile.
// An invalid transcript never reaches the generator.
func (s *Service) Run(ctx context.Context, messages []chat.Message) (Result, error) {
	validation := transcript.Validate(messages)
	for _, warning := range validation.Warnings {
		s.logger.Warn("transcript check", "warning", warning)
	}
	if !validation.IsValid {
		return Result{Validation: validation}, apperr.Validation("%s", strings.Join(validation.Warnings, ". "))
	}

	profile, err := s.ExtractMemories(ctx, messages)
	if err != nil {
		return Result{Validation: validation}, err
	}

	return Result{
		Memories:   profile,
		Validation: validation,
		Stats:      memory.ComputeStats(profile),
	}, nil
}
