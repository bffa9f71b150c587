package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
)

// OutcomeRecorder collects aggregate hook signals per operation, so a test can ask
// how a checkout or status transition ended without caring about call order.
type OutcomeRecorder struct {
	mu        sync.Mutex
	outcomes  map[string][]string
	conflicts map[string]int
	retries   map[string]int
	elapsed   time.Duration
}

var _ aggregates.Hooks = (*OutcomeRecorder)(nil)

func NewOutcomeRecorder() *OutcomeRecorder {
	return &OutcomeRecorder{
		outcomes:  map[string][]string{},
		conflicts: map[string]int{},
		retries:   map[string]int{},
	}
}

func (r *OutcomeRecorder) ObserveOperation(name, status string, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[name] = append(r.outcomes[name], status)
	r.elapsed += dur
}

func (r *OutcomeRecorder) IncConflict(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts[name]++
}

func (r *OutcomeRecorder) IncRetry(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries[name]++
}

// Outcomes lists the recorded statuses of op in order ("success" or an error code).
func (r *OutcomeRecorder) Outcomes(op string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes[op]...)
}

// Last is the most recent status of op, or "" when op never ran.
func (r *OutcomeRecorder) Last(op string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.outcomes[op]
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1]
}

func (r *OutcomeRecorder) Conflicts(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conflicts[op]
}

func (r *OutcomeRecorder) Retries(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retries[op]
}
