package operations

import (
	"sync"
	"time"
)

// OperationStatus is the overall status of a run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

// OperationState is the state of one pipeline run
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Status    OperationStatus
	StartTime time.Time
	EndTime   *time.Time

	// Steps in execution order
	Steps []*StepState

	// results passed between steps, keyed by step ID
	results map[string]interface{}

	Error error
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		results:   make(map[string]interface{}),
	}
}

// SetResult stores the output of a step
func (p *OperationState) SetResult(stepID string, result interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[stepID] = result
}

// GetResult returns the output of a step
func (p *OperationState) GetResult(stepID string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.results[stepID]
	return v, ok
}

// Step returns the state of the step with the given ID
func (p *OperationState) Step(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.Steps {
		if s.ID == stepID {
			return s
		}
	}
	return nil
}

func (p *OperationState) addStep(s *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps = append(p.Steps, s)
}

func (p *OperationState) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Error = err
	if err != nil {
		p.Status = OperationStatusFailed
	} else {
		p.Status = OperationStatusCompleted
	}
}
