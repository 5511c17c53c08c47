// Package assistant is the single entry point for generating replies. It
// dispatches to the selected provider and answers from the offline
// generator whenever the provider is absent or fails.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cosmic/fallback"
	"cosmic/model"
	"cosmic/provider"
)

// HistoryWindow is the number of trailing messages sent to a provider.
const HistoryWindow = 10

// RequestTimeout caps a single provider call.
const RequestTimeout = 30 * time.Second

// ErrValidation is returned when the input has nothing to answer.
var ErrValidation = errors.New("invalid request")

// ValidationError describes why a request was rejected. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Service answers chat turns. Safe for concurrent use.
type Service struct {
	provider model.Provider // nil in fallback-only mode
	reason   string
	fallback *fallback.Generator
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithFallback replaces the offline generator, typically with a seeded one.
func WithFallback(g *fallback.Generator) Option {
	return func(s *Service) { s.fallback = g }
}

// WithLogger sets the logger used for provider failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTimeout overrides RequestTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New builds a Service around the startup selection. The provider cannot be
// changed afterwards.
func New(sel provider.Selection, opts ...Option) *Service {
	s := &Service{
		provider: sel.Provider,
		reason:   sel.Reason,
		timeout:  RequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fallback == nil {
		s.fallback = fallback.NewRandomGenerator()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Respond returns a reply to the conversation in messages.
//
// The only error is a *ValidationError when there is no non-blank user
// message. Provider failures are logged and answered from the fallback
// generator, so callers always receive a usable result otherwise.
func (s *Service) Respond(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	last := model.LastUserMessage(messages)
	if len(messages) == 0 {
		return nil, &ValidationError{Reason: "no messages"}
	}
	if strings.TrimSpace(last) == "" {
		return nil, &ValidationError{Reason: "no user message"}
	}
	if tag == "" {
		tag = model.DefaultContext
	}

	if s.provider == nil {
		s.logger.Debug("[Assistant] no provider selected, answering offline", "tag", tag)
		return fallback.Result(s.fallback.Respond(last, tag)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	window := model.TrailingWindow(messages, HistoryWindow)
	res, err := s.provider.Generate(ctx, window, tag, o)
	if err == nil && (res == nil || strings.TrimSpace(res.Content) == "") {
		err = &provider.ProviderError{Provider: s.provider.Name(), Op: "response", Err: provider.ErrEmptyResponse}
	}
	if err != nil {
		s.logger.Warn("[Assistant] provider failed, answering offline",
			"provider", s.provider.Name(), "tag", tag, "error", err)
		return fallback.Result(s.fallback.Respond(last, tag)), nil
	}

	return res, nil
}

// HealthTimeout caps a provider reachability check.
const HealthTimeout = 5 * time.Second

// Status reports the configured provider, as exposed by the status route.
// Reachable is set only by CheckHealth, and only for providers that can be
// pinged.
type Status struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	FallbackOnly bool   `json:"fallbackOnly"`
	Reason       string `json:"reason,omitempty"`
	Reachable    *bool  `json:"reachable,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Pinger is implemented by providers that can check their backend without
// generating text.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Service) Status() Status {
	if s.provider == nil {
		return Status{
			Provider:     "fallback",
			Model:        model.FallbackModel,
			FallbackOnly: true,
			Reason:       s.reason,
		}
	}
	return Status{
		Provider: s.provider.Name(),
		Model:    s.provider.DefaultModel(),
	}
}

// CheckHealth is Status plus a reachability check for providers that
// implement Pinger. A failed check is reported, never returned.
func (s *Service) CheckHealth(ctx context.Context) Status {
	st := s.Status()
	p, ok := s.provider.(Pinger)
	if !ok {
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	err := p.Ping(ctx)
	reachable := err == nil
	st.Reachable = &reachable
	if err != nil {
		st.Error = err.Error()
		s.logger.Warn("[Assistant] provider health check failed", "provider", st.Provider, "error", err)
	}
	return st
}

// AvailableProviders lists every vendor id this build can talk to.
func (s *Service) AvailableProviders() []string {
	return provider.AvailableProviders()
}

// PlanetFact returns the canned description for a planet name.
func (s *Service) PlanetFact(name string) string {
	return fallback.PlanetFact(name)
}
