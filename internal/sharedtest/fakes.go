// Package sharedtest contains fakes and fixtures shared by tests in other packages.
// Nothing in this package is used outside of tests.
package sharedtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gatesync/gatesync/evaluation"
)

// ErrSenderFailure is the error returned by a FakeSender endpoint that has been set to
// fail, standing in for any transport failure.
var ErrSenderFailure = errors.New("simulated transport failure")

// SenderCall records one request made through a FakeSender.
type SenderCall struct {
	Endpoint string
	Payload  json.RawMessage
}

// FakeSender is a scriptable transport.Sender. Each endpoint gets a handler function;
// an endpoint with no handler fails the request. Every call is recorded and also
// published on Calls for tests that need to wait for asynchronous activity.
type FakeSender struct {
	Calls    chan SenderCall
	mu       sync.Mutex
	handlers map[string]func(payload json.RawMessage) (json.RawMessage, error)
	recorded []SenderCall
}

// NewFakeSender creates a FakeSender with no handlers.
func NewFakeSender() *FakeSender {
	return &FakeSender{
		Calls:    make(chan SenderCall, 100),
		handlers: make(map[string]func(payload json.RawMessage) (json.RawMessage, error)),
	}
}

// Handle sets the handler for an endpoint.
func (s *FakeSender) Handle(endpoint string, fn func(payload json.RawMessage) (json.RawMessage, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[endpoint] = fn
}

// HandleSuccess makes an endpoint always return the given body.
func (s *FakeSender) HandleSuccess(endpoint string, body string) {
	s.Handle(endpoint, func(json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	})
}

// HandleFailure makes an endpoint always fail.
func (s *FakeSender) HandleFailure(endpoint string) {
	s.Handle(endpoint, func(json.RawMessage) (json.RawMessage, error) {
		return nil, ErrSenderFailure
	})
}

// Request implements transport.Sender.
func (s *FakeSender) Request(endpoint string, payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	call := SenderCall{Endpoint: endpoint, Payload: data}

	s.mu.Lock()
	s.recorded = append(s.recorded, call)
	handler := s.handlers[endpoint]
	s.mu.Unlock()

	select {
	case s.Calls <- call:
	default:
	}

	if handler == nil {
		return nil, fmt.Errorf("no handler for endpoint %q", endpoint)
	}
	return handler(data)
}

// Recorded returns all calls made to the endpoint, in order.
func (s *FakeSender) Recorded(endpoint string) []SenderCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SenderCall
	for _, call := range s.recorded {
		if call.Endpoint == endpoint {
			out = append(out, call)
		}
	}
	return out
}

// FakeEvaluator is a programmable evaluation.Evaluator. Results are looked up by spec
// name; a name with no scripted result gets the zero result. Definitions passed in are
// recorded for assertions.
type FakeEvaluator struct {
	GateResults   map[string]evaluation.GateResult
	ConfigResults map[string]evaluation.ConfigResult

	mu          sync.Mutex
	definitions map[string]json.RawMessage
}

// NewFakeEvaluator creates an empty FakeEvaluator.
func NewFakeEvaluator() *FakeEvaluator {
	return &FakeEvaluator{
		GateResults:   make(map[string]evaluation.GateResult),
		ConfigResults: make(map[string]evaluation.ConfigResult),
		definitions:   make(map[string]json.RawMessage),
	}
}

// EvaluateGate implements evaluation.Evaluator.
func (e *FakeEvaluator) EvaluateGate(user evaluation.User, name string, definition json.RawMessage) evaluation.GateResult {
	e.recordDefinition(name, definition)
	return e.GateResults[name]
}

// EvaluateConfig implements evaluation.Evaluator.
func (e *FakeEvaluator) EvaluateConfig(user evaluation.User, name string, definition json.RawMessage) evaluation.ConfigResult {
	e.recordDefinition(name, definition)
	return e.ConfigResults[name]
}

// DefinitionSeen returns the definition most recently passed in for the name.
func (e *FakeEvaluator) DefinitionSeen(name string) json.RawMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.definitions[name]
}

func (e *FakeEvaluator) recordDefinition(name string, definition json.RawMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.definitions[name] = definition
}
