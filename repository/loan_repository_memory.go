package repository

import (
	"context"
	"sync"
	"time"

	"loan-calculator/domain"
)

// LoanRepositoryMemory is a bounded in-memory implementation of LoanRepository.
// The oldest records are dropped once capacity is reached.
type LoanRepositoryMemory struct {
	mu       sync.RWMutex
	data     []LoanRecord
	capacity int
	now      func() time.Time
}

// NewLoanRepositoryMemory creates a new in-memory loan repository.
// A non-positive capacity keeps the last 1000 records.
func NewLoanRepositoryMemory(capacity int) *LoanRepositoryMemory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &LoanRepositoryMemory{
		data:     []LoanRecord{},
		capacity: capacity,
		now:      time.Now,
	}
}

// Save stores the loan result in memory.
func (r *LoanRepositoryMemory) Save(
	ctx context.Context,
	input domain.LoanInputs,
	result domain.LoanResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, LoanRecord{Inputs: input, Result: result, CalculatedAt: r.now()})
	if over := len(r.data) - r.capacity; over > 0 {
		r.data = append([]LoanRecord(nil), r.data[over:]...)
	}
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (r *LoanRepositoryMemory) List(ctx context.Context, limit int) ([]LoanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.data)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]LoanRecord, 0, n)
	for i := len(r.data) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
