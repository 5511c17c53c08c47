package testutil

import (
	"context"
	"sync"

	"cosmic/model"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	GenerateFunc func(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error)

	name         string
	defaultModel string

	mu    sync.Mutex
	calls []Call
}

// Call records the arguments of one Generate invocation.
type Call struct {
	Messages  []model.Message
	Tag       model.ContextTag
	Overrides model.Overrides
}

// NewMockProvider creates a mock provider that answers "Mock response".
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		name:         "mock",
		defaultModel: modelName,
	}
	mock.GenerateFunc = mock.defaultGenerate
	return mock
}

// NewFailingProvider creates a mock whose every call returns err.
func NewFailingProvider(err error) *MockProvider {
	mock := NewMockProvider("mock-model")
	mock.GenerateFunc = func(context.Context, []model.Message, model.ContextTag, model.Overrides) (*model.Result, error) {
		return nil, err
	}
	return mock
}

// NewBlockingProvider creates a mock that waits for ctx to end and returns its error.
func NewBlockingProvider() *MockProvider {
	mock := NewMockProvider("mock-model")
	mock.GenerateFunc = func(ctx context.Context, _ []model.Message, _ model.ContextTag, _ model.Overrides) (*model.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return mock
}

func (m *MockProvider) defaultGenerate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	return &model.Result{
		Content:    "Mock response",
		TokensUsed: 42,
		Model:      o.ModelOr(m.defaultModel),
	}, nil
}

func (m *MockProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{
		Messages:  append([]model.Message(nil), messages...),
		Tag:       tag,
		Overrides: o,
	})
	m.mu.Unlock()

	return m.GenerateFunc(ctx, messages, tag, o)
}

func (m *MockProvider) Name() string {
	return m.name
}

// SetName changes the id reported by Name.
func (m *MockProvider) SetName(name string) {
	m.name = name
}

func (m *MockProvider) DefaultModel() string {
	return m.defaultModel
}

// Calls returns a copy of the recorded Generate calls.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
