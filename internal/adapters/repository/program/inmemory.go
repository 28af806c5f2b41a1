package programrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blockflow/blockflow/internal/core/program"
	"github.com/blockflow/blockflow/pkg/validation"
)

// InMemoryProgramRepository provides an in-memory implementation of a program repository
// PRINCIPLES:
// - KISS: Simple map-based storage
// - SRP: Only responsible for program persistence
// - Thread-safe

type InMemoryProgramRepository struct {
	mu       sync.RWMutex
	programs map[string]*program.Program
}

func NewInMemoryProgramRepository() *InMemoryProgramRepository {
	return &InMemoryProgramRepository{
		programs: make(map[string]*program.Program),
	}
}

func (r *InMemoryProgramRepository) Save(ctx context.Context, p *program.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Validate program structure before saving (cycles are allowed; the
	// engine's processed set handles them at run time)
	if err := validation.ValidateProgram(p); err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	r.programs[p.ID] = p
	return nil
}

func (r *InMemoryProgramRepository) Get(ctx context.Context, id string) (*program.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, program.ErrProgramNotFound
	}
	return p, nil
}

func (r *InMemoryProgramRepository) List(ctx context.Context) ([]*program.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*program.Program, 0, len(r.programs))
	for _, p := range r.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
