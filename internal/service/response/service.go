// Package response generates persona answers conditioned on a memory
// profile.
package response

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/reference"
	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	"github.com/zhouzirui/z-memory/backend/internal/model/persona"
	"github.com/zhouzirui/z-memory/backend/internal/service/ai"
)

const (
	DefaultMaxTokens = 1024

	minQueryLength = 5
	maxQueryLength = 500

	errPrefix = "Response generation failed"
)

// PersonaResponse is one persona's answer plus the memories it seems to use.
type PersonaResponse struct {
	ID               string    `json:"id" yaml:"id"`
	PersonaID        string    `json:"personality" yaml:"personality"`
	Response         string    `json:"response" yaml:"response"`
	MemoryReferences []string  `json:"memoryReferences" yaml:"memoryReferences"`
	GeneratedAt      time.Time `json:"generatedAt" yaml:"generatedAt"`
}

// QueryValidation is the result of ValidateQuery.
type QueryValidation struct {
	IsValid bool   `json:"isValid" yaml:"isValid"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Comparison summarises a set of responses to the same question.
type Comparison struct {
	MemoryUsage map[string]int `json:"memoryUsage" yaml:"memoryUsage"`
}

// ValidateQuery checks a user question before any generation happens.
func ValidateQuery(query string) QueryValidation {
	trimmed := strings.TrimSpace(query)
	switch {
	case trimmed == "":
		return QueryValidation{Error: "Query cannot be empty"}
	case utf8.RuneCountInString(trimmed) < minQueryLength:
		return QueryValidation{Error: "Query is too short. Please provide more context."}
	case utf8.RuneCountInString(query) > maxQueryLength:
		return QueryValidation{Error: "Query is too long. Please keep it under 500 characters."}
	}
	return QueryValidation{IsValid: true}
}

// Service orchestrates persona prompt rendering, generation and memory
// attribution.
type Service struct {
	generator ai.Generator
	personas  persona.Store
	logger    *log.Logger
	tracer    trace.Tracer
	maxTokens int
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithMaxTokens overrides the per-response output cap.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the response pipeline. A nil generator is allowed;
// generation then fails as unavailable.
func NewService(generator ai.Generator, personas persona.Store, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		generator: generator,
		personas:  personas,
		logger:    logger.WithPrefix("response"),
		tracer:    otel.Tracer("github.com/zhouzirui/z-memory/backend/internal/service/response"),
		maxTokens: DefaultMaxTokens,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Personas exposes the catalog the service answers with.
func (s *Service) Personas() persona.Store {
	return s.personas
}

// GeneratePersonaResponse answers query in the voice of one persona.
func (s *Service) GeneratePersonaResponse(ctx context.Context, personaID, query string, profile memory.Profile) (PersonaResponse, error) {
	p, err := s.prepare(personaID, query, profile)
	if err != nil {
		return PersonaResponse{}, err
	}
	return s.generate(ctx, p, query, profile)
}

// GenerateAllPersonaResponses asks every persona concurrently. Any single
// failure fails the whole call and no partial results are returned.
func (s *Service) GenerateAllPersonaResponses(ctx context.Context, query string, profile memory.Profile) ([]PersonaResponse, error) {
	if err := s.checkRequest(query, profile); err != nil {
		return nil, err
	}

	personas := s.personas.List()
	responses := make([]PersonaResponse, len(personas))

	s.logger.Info("generating responses from all personas", "count", len(personas))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range personas {
		i, p := i, p
		g.Go(func() error {
			resp, err := s.generate(gctx, p, query, profile)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// StreamPersonaResponse forwards text deltas to onDelta as they arrive and
// returns the composed response once the stream ends. Generators without
// streaming deliver the whole text as a single delta.
func (s *Service) StreamPersonaResponse(ctx context.Context, personaID, query string, profile memory.Profile, onDelta func(string) error) (PersonaResponse, error) {
	p, err := s.prepare(personaID, query, profile)
	if err != nil {
		return PersonaResponse{}, err
	}

	streamer, ok := s.generator.(ai.StreamingGenerator)
	if !ok || !streamer.StreamingEnabled() {
		resp, err := s.generate(ctx, p, query, profile)
		if err != nil {
			return PersonaResponse{}, err
		}
		if err := onDelta(resp.Response); err != nil {
			return PersonaResponse{}, err
		}
		return resp, nil
	}

	ctx, span := s.startSpan(ctx, "response.stream", p)
	defer span.End()

	text, err := s.readStream(ctx, streamer, p, query, profile, onDelta)
	if err != nil {
		recordError(span, err)
		return PersonaResponse{}, err
	}
	return s.compose(p, text, profile), nil
}

// Compare counts memory references per persona. Personas without a
// response report zero.
func (s *Service) Compare(responses []PersonaResponse) Comparison {
	usage := lo.SliceToMap(s.personas.List(), func(p persona.Persona) (string, int) {
		return p.ID, 0
	})
	for _, r := range responses {
		usage[r.PersonaID] = len(r.MemoryReferences)
	}
	return Comparison{MemoryUsage: usage}
}

func (s *Service) prepare(personaID, query string, profile memory.Profile) (persona.Persona, error) {
	if err := s.checkRequest(query, profile); err != nil {
		return persona.Persona{}, err
	}
	p, err := s.personas.Get(personaID)
	if err != nil {
		return persona.Persona{}, apperr.Wrap(apperr.KindNotFound, err, errPrefix)
	}
	return p, nil
}

func (s *Service) checkRequest(query string, profile memory.Profile) error {
	if v := ValidateQuery(query); !v.IsValid {
		return apperr.Validation("%s", v.Error)
	}
	if err := memory.Check(profile); err != nil {
		return apperr.Wrap(apperr.KindInputFormat, err, "Invalid request format")
	}
	if s.generator == nil {
		return apperr.Newf(apperr.KindUnavailable, "%s: AI service is not configured", errPrefix)
	}
	return nil
}

func (s *Service) generate(ctx context.Context, p persona.Persona, query string, profile memory.Profile) (PersonaResponse, error) {
	ctx, span := s.startSpan(ctx, "response.generate", p)
	defer span.End()

	s.logger.Debug("generating response", "persona", p.ID, "temperature", p.Temperature)
	text, err := s.generator.Generate(ctx, ai.BuildPersonaPrompt(p, query, profile), s.options(p))
	if err != nil {
		err = apperr.External(err, "%s for %s", errPrefix, p.ID)
		recordError(span, err)
		return PersonaResponse{}, err
	}

	resp := s.compose(p, text, profile)
	span.SetAttributes(attribute.Int("response.memory_references", len(resp.MemoryReferences)))
	return resp, nil
}

func (s *Service) readStream(ctx context.Context, streamer ai.StreamingGenerator, p persona.Persona, query string, profile memory.Profile, onDelta func(string) error) (string, error) {
	stream, err := streamer.Stream(ctx, ai.BuildPersonaPrompt(p, query, profile), s.options(p))
	if err != nil {
		return "", apperr.External(err, "%s for %s", errPrefix, p.ID)
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperr.External(err, "%s for %s", errPrefix, p.ID)
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		builder.WriteString(chunk.Content)
		if err := onDelta(chunk.Content); err != nil {
			return "", err
		}
	}
	return builder.String(), nil
}

func (s *Service) options(p persona.Persona) ai.Options {
	return ai.Options{Temperature: p.Temperature, MaxTokens: s.maxTokens}
}

// compose attributes references on the raw text, then trims it.
func (s *Service) compose(p persona.Persona, text string, profile memory.Profile) PersonaResponse {
	return PersonaResponse{
		ID:               uuid.NewString(),
		PersonaID:        p.ID,
		Response:         strings.TrimSpace(text),
		MemoryReferences: reference.Extract(text, profile),
		GeneratedAt:      s.now().UTC(),
	}
}

func (s *Service) startSpan(ctx context.Context, name string, p persona.Persona) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("persona.id", p.ID),
		attribute.Float64("llm.temperature", float64(p.Temperature)),
		attribute.Int("llm.max_tokens", s.maxTokens),
	))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
