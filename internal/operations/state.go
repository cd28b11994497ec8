package operations

import (
	"fmt"
	"sync"
	"time"
)

// OperationStatus is the overall status of an operation
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

// OperationState represents the complete state of an operation execution
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`

	steps map[string]*StepState
	order []string

	// Context carries data between steps
	Context map[string]interface{} `json:"-"`

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		steps:     make(map[string]*StepState),
		Context:   make(map[string]interface{}),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// AddStep registers the state of a step, keeping registration order
func (p *OperationState) AddStep(state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.steps[state.ID]; !exists {
		p.order = append(p.order, state.ID)
	}
	p.steps[state.ID] = state
}

// GetStep returns the state of a specific step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.steps[stepID]
}

// Steps returns the step states in registration order
func (p *OperationState) Steps() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*StepState, len(p.order))
	for i, id := range p.order {
		out[i] = p.steps[id]
	}
	return out
}

// GetContext retrieves a value from the operation context
func (p *OperationState) GetContext(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Context[key]
	return val, ok
}

// SetContext sets a value in the operation context
func (p *OperationState) SetContext(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Context[key] = value
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// contextValue fetches a typed value from the operation context
func contextValue[T any](state *OperationState, key string) (T, error) {
	var zero T
	raw, ok := state.GetContext(key)
	if !ok {
		return zero, fmt.Errorf("%s not available", key)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%s has unexpected type %T", key, raw)
	}
	return v, nil
}
