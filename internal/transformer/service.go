// Package transformer is the application service behind every surface: it
// validates requests, runs personas and records history.
package transformer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/persona"
)

var tracer = otel.Tracer("personaswap")

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Result is one completed transformation.
type Result struct {
	Original    string `json:"original"`
	Transformed string `json:"transformed"`
	Persona     string `json:"persona"`
}

// Service ties the persona registry to a history store.
type Service struct {
	registry *persona.Registry
	history  history.Store
	log      *slog.Logger
}

// New creates a Service. A nil store keeps no history.
func New(registry *persona.Registry, store history.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: registry, history: store, log: logger}
}

// ListPersonas returns the metadata of every registered persona.
func (s *Service) ListPersonas() []persona.Info {
	return s.registry.List()
}

// Registry exposes the persona registry.
func (s *Service) Registry() *persona.Registry {
	return s.registry
}

// Transform rewrites message in the voice of the persona named by key.
func (s *Service) Transform(ctx context.Context, message, key string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "transformer.Transform")
	defer span.End()

	if strings.TrimSpace(message) == "" {
		err := &ValidationError{Field: "message", Message: "Message is required"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		err := &ValidationError{Field: "persona", Message: "Persona is required"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("persona.key", key),
		attribute.Int("message.length", len(message)),
	)

	p, err := s.registry.Resolve(key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res := &Result{
		Original:    message,
		Transformed: p.Transform(message),
		Persona:     p.Info().Name,
	}
	span.SetAttributes(attribute.String("persona.name", res.Persona))

	s.record(ctx, res)
	return res, nil
}

// record appends res to history. Failures are logged, never returned.
func (s *Service) record(ctx context.Context, res *Result) {
	if s.history == nil {
		return
	}
	rec, err := history.NewRecord(res.Original, res.Transformed, res.Persona)
	if err == nil {
		err = s.history.Add(ctx, rec)
	}
	if err != nil {
		s.log.WarnContext(ctx, "Failed to record history", "persona", res.Persona, "error", err)
	}
}

// History returns up to limit records, most recent first. A non-positive
// limit means history.DefaultLimit.
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	if s.history == nil {
		return []history.Record{}, nil
	}
	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

// Store exposes the history store.
func (s *Service) Store() history.Store {
	return s.history
}
