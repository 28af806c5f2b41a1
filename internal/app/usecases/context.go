package usecases

import (
	"context"

	"github.com/blockflow/blockflow/internal/infrastructure/metrics"
)

// emission is one (port, value) pair a block produced during its invocation.
type emission struct {
	Port  string
	Value interface{}
}

// blockContext is the engine's implementation of block.Context for a single
// node invocation. Emit records the value into the element's state slot
// immediately (so downstream reads observe it) and queues the emission; the
// engine drains the queue after the block returns and owns all traversal.
type blockContext struct {
	engine    *Engine
	ctx       context.Context
	elementID string
	inputs    map[string]interface{}
	emissions []emission
}

func newBlockContext(e *Engine, ctx context.Context, elementID string, inputs map[string]interface{}) *blockContext {
	return &blockContext{
		engine:    e,
		ctx:       ctx,
		elementID: elementID,
		inputs:    inputs,
	}
}

func (c *blockContext) Context() context.Context {
	return c.ctx
}

func (c *blockContext) Inputs() map[string]interface{} {
	return c.inputs
}

func (c *blockContext) Get(key string) interface{} {
	c.engine.mu.RLock()
	defer c.engine.mu.RUnlock()
	return c.engine.store.Get(c.elementID, key)
}

func (c *blockContext) Set(key string, value interface{}) {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	c.engine.store.Set(c.elementID, key, value)
}

func (c *blockContext) Emit(port string, value interface{}) {
	c.engine.mu.Lock()
	c.engine.store.RecordEmission(c.elementID, port, value)
	c.engine.mu.Unlock()
	c.emissions = append(c.emissions, emission{Port: port, Value: value})
	metrics.IncEmits()
	c.engine.logf("Element %s emitted on port %q", c.elementID, port)
}

func (c *blockContext) Logf(format string, args ...interface{}) {
	c.engine.logf(format, args...)
}

// drain returns the queued emissions and clears the queue.
func (c *blockContext) drain() []emission {
	out := c.emissions
	c.emissions = nil
	return out
}
