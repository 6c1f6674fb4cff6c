package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements Client for testing
type MockClient struct {
	mu       sync.Mutex
	name     string
	requests []Request

	// Respond builds the answer for a request. When nil the mock echoes the
	// prompt prefixed with its name.
	Respond func(req Request) (string, error)

	// Error, when set, fails every call.
	Error error
}

// NewMockClient creates a new MockClient
func NewMockClient(name string) *MockClient {
	return &MockClient{name: name}
}

func (m *MockClient) Name() string { return m.name }

func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	respond := m.Respond
	failure := m.Error
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}

	content := fmt.Sprintf("[%s] %s", m.name, req.Prompt)
	if respond != nil {
		var err error
		content, err = respond(req)
		if err != nil {
			return nil, err
		}
	}
	if content == "" {
		return nil, fmt.Errorf("%s: %w", m.name, ErrEmptyResponse)
	}

	return &Response{Content: content, Model: m.name}, nil
}

// Requests returns a copy of every request received so far.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// MockFactory hands out MockClients keyed by model reference.
type MockFactory struct {
	mu      sync.Mutex
	clients map[string]*MockClient

	// ClientError, when set, fails every Client call.
	ClientError error
}

// NewMockFactory creates a new MockFactory
func NewMockFactory() *MockFactory {
	return &MockFactory{clients: make(map[string]*MockClient)}
}

// Set registers the client returned for model.
func (f *MockFactory) Set(model string, c *MockClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[model] = c
}

// Get returns the client for model, creating an echoing one on first use.
func (f *MockFactory) Get(model string) *MockClient {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.clients[model]
	if !ok {
		c = NewMockClient(model)
		f.clients[model] = c
	}
	return c
}

func (f *MockFactory) Client(ctx context.Context, model string) (Client, error) {
	if f.ClientError != nil {
		return nil, f.ClientError
	}
	return f.Get(model), nil
}
