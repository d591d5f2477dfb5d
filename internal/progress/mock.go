package progress

import (
	"context"
	"sync"
)

// Compile-time check that MockGateway implements Gateway.
var _ Gateway = (*MockGateway)(nil)

// CompletionCall records one SetTaskCompletion call on a MockGateway.
type CompletionCall struct {
	TaskID      string
	IsCompleted bool
}

// MockGateway is an in-memory Gateway for tests. It serves a fixed snapshot,
// records every call and is safe for concurrent use.
type MockGateway struct {
	mu sync.Mutex

	// Snapshot is returned by LoadAll.
	Snapshot Snapshot
	// LoadErr, when non-nil, is returned by LoadAll.
	LoadErr error
	// SetErr, when non-nil, is returned by SetTaskCompletion.
	SetErr error
	// Message is returned by FetchClosingMessage.
	Message string
	// MessageErr, when non-nil, is returned by FetchClosingMessage.
	MessageErr error

	loads        int
	completions  []CompletionCall
	messageCalls int
}

// NewMockGateway returns a MockGateway serving snap with the closing message
// "well done".
func NewMockGateway(snap Snapshot) *MockGateway {
	return &MockGateway{Snapshot: snap, Message: "well done"}
}

// LoadAll returns a copy of Snapshot or LoadErr.
func (g *MockGateway) LoadAll(_ context.Context) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loads++
	if g.LoadErr != nil {
		return Snapshot{}, g.LoadErr
	}
	return g.Snapshot.clone(), nil
}

// SetTaskCompletion records the call and acknowledges it with the task's
// phase from Snapshot.
func (g *MockGateway) SetTaskCompletion(_ context.Context, taskID string, isCompleted bool) (Ack, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completions = append(g.completions, CompletionCall{TaskID: taskID, IsCompleted: isCompleted})
	if g.SetErr != nil {
		return Ack{}, g.SetErr
	}
	ack := Ack{IsCompleted: isCompleted}
	if idx := taskIndex(g.Snapshot.Tasks, taskID); idx >= 0 {
		ack.PhaseID = g.Snapshot.Tasks[idx].PhaseID
	}
	return ack, nil
}

// FetchClosingMessage returns Message or MessageErr.
func (g *MockGateway) FetchClosingMessage(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messageCalls++
	if g.MessageErr != nil {
		return "", g.MessageErr
	}
	return g.Message, nil
}

// Loads returns the number of LoadAll calls.
func (g *MockGateway) Loads() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loads
}

// Completions returns every SetTaskCompletion call in call order.
func (g *MockGateway) Completions() []CompletionCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]CompletionCall, len(g.completions))
	copy(out, g.completions)
	return out
}

// MessageCalls returns the number of FetchClosingMessage calls.
func (g *MockGateway) MessageCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.messageCalls
}
