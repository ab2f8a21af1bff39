package enrichment

import (
	"fmt"
	"time"
)

type RunStatus string

const (
	StatusRunning         RunStatus = "running"
	StatusCompleted       RunStatus = "completed"
	StatusBudgetExhausted RunStatus = "budget_exhausted"
	StatusFailed          RunStatus = "failed"
)

// Counters accumulates per-run outcomes. Per-item failures land in Errors
// without stopping the run.
type Counters struct {
	Processed       int
	Matched         int
	Created         int
	QueuedForReview int
	Merged          int
	Errors          int
	RequestsUsed    int
}

// Run is one orchestration pass against one source. LastPlayerID is the
// resume cursor: a follow-up run continues strictly after it.
type Run struct {
	ID              string
	Source          string
	Status          RunStatus
	Counters        Counters
	BudgetExhausted bool
	LastPlayerID    string
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

func (r Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if r.Source == "" {
		return fmt.Errorf("run source is required")
	}
	switch r.Status {
	case StatusRunning, StatusCompleted, StatusBudgetExhausted, StatusFailed:
	default:
		return fmt.Errorf("invalid run status: %s", r.Status)
	}
	return nil
}

// Budget is a mutable request counter with a fixed ceiling, shared by every
// external call within one run. Runs are single-threaded per source, so no
// locking is needed.
type Budget struct {
	ceiling int
	used    int
}

func NewBudget(ceiling int) *Budget {
	if ceiling < 0 {
		ceiling = 0
	}
	return &Budget{ceiling: ceiling}
}

// TrySpend reserves one request. It returns false once the ceiling is
// reached; callers must check before every external call.
func (b *Budget) TrySpend() bool {
	if b.used >= b.ceiling {
		return false
	}
	b.used++
	return true
}

func (b *Budget) Used() int    { return b.used }
func (b *Budget) Ceiling() int { return b.ceiling }
func (b *Budget) Exhausted() bool {
	return b.used >= b.ceiling
}
