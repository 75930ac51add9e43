package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"loan-calculator/control"
	"loan-calculator/domain"
	"loan-calculator/metrics"
)

var (
	ErrCalculatorNotFound = errors.New("calculator not found")
	ErrRegistryFull       = errors.New("too many live calculators")
)

type registryEntry struct {
	calc     *control.Calculator
	lastSeen time.Time
}

// CalculatorRegistry owns live calculator sessions. Sessions idle for longer
// than the configured TTL are closed by Sweep.
type CalculatorRegistry struct {
	mu       sync.Mutex
	entries  map[string]*registryEntry
	capacity int
	idleTTL  time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
}

func NewCalculatorRegistry(capacity int, idleTTL time.Duration, m *metrics.Metrics) *CalculatorRegistry {
	return &CalculatorRegistry{
		entries:  make(map[string]*registryEntry),
		capacity: capacity,
		idleTTL:  idleTTL,
		now:      time.Now,
		metrics:  m,
	}
}

// Create builds a calculator with a fresh id and registers it.
func (r *CalculatorRegistry) Create(
	cfg domain.CalculatorConfig,
	engine control.Engine,
	opts ...control.Option,
) (*control.Calculator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && len(r.entries) >= r.capacity {
		return nil, ErrRegistryFull
	}

	id := uuid.NewString()
	calc := control.NewCalculator(id, cfg, engine, opts...)
	r.entries[id] = &registryEntry{calc: calc, lastSeen: r.now()}
	r.metrics.SetActiveCalculators(len(r.entries))
	return calc, nil
}

// Get returns the calculator and marks it as used.
func (r *CalculatorRegistry) Get(id string) (*control.Calculator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, ErrCalculatorNotFound
	}
	entry.lastSeen = r.now()
	return entry.calc, nil
}

// Delete closes and forgets the calculator.
func (r *CalculatorRegistry) Delete(id string) error {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
		r.metrics.SetActiveCalculators(len(r.entries))
	}
	r.mu.Unlock()

	if !ok {
		return ErrCalculatorNotFound
	}
	entry.calc.Close()
	return nil
}

func (r *CalculatorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *CalculatorRegistry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTTL)
	var expired []*control.Calculator
	for id, entry := range r.entries {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.calc)
			delete(r.entries, id)
		}
	}
	r.metrics.SetActiveCalculators(len(r.entries))
	r.mu.Unlock()

	for _, calc := range expired {
		calc.Close()
	}
	return len(expired)
}

// Close closes every session.
func (r *CalculatorRegistry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.metrics.SetActiveCalculators(0)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.calc.Close()
	}
}
