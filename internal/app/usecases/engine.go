package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/internal/core/block"
	"github.com/blockflow/blockflow/internal/core/program"
	"github.com/blockflow/blockflow/internal/core/state"
	"github.com/blockflow/blockflow/internal/infrastructure/metrics"
	"github.com/blockflow/blockflow/pkg/validation"
)

// Engine drives a single run over a snapshot of elements and connections,
// resolving each element's behavior through the injected registry.
//
// Traversal is strictly sequential depth-first: no two node invocations ever
// run concurrently, and a node fully resolves (including all downstream
// emissions) before its caller's next sibling connection is considered.
// Propagation is explicit: the engine never auto-follows edges; a block's
// Emit calls decide how many times downstream traversal fans out, and the
// per-run processed set enforces at-most-once execution regardless.
//
// State transitions: Idle -> Running -> {Completed | Failed | Stopped},
// back to Idle via Reset. At most one run per engine instance at a time.
type Engine struct {
	elements    map[string]*program.Element
	connections map[string]*program.Connection
	registry    BlockResolver

	elementOrder []string
	outgoing     map[string][]*program.Connection
	incoming     map[string][]*program.Connection

	mu        sync.RWMutex
	opts      dto.ExecutionOptions
	store     *state.Store
	processed map[string]struct{}
	order     []string // processed ids in execution order
	steps     int
	running   bool
	stopFlag  bool
	status    dto.RunStatus
	runID     string
	lastErr   string
	startTime time.Time
	endTime   time.Time
}

// NewEngine creates an engine over the given collections and registry. The
// collections are the graph provider's snapshot: the engine reads them and
// never mutates them.
func NewEngine(elements map[string]*program.Element, connections map[string]*program.Connection, registry BlockResolver) (*Engine, error) {
	if elements == nil {
		return nil, dto.ErrNilElements
	}
	if connections == nil {
		return nil, dto.ErrNilConnections
	}
	if registry == nil {
		return nil, dto.ErrNilRegistry
	}

	e := &Engine{
		elements:    elements,
		connections: connections,
		registry:    registry,
		store:       state.NewStore(),
		processed:   make(map[string]struct{}),
		status:      dto.RunStatusIdle,
	}
	e.index()
	return e, nil
}

// index pins map iteration to ascending-id order and precomputes per-element
// connection lists so traversal order is deterministic and testable.
func (e *Engine) index() {
	p := &program.Program{Elements: e.elements, Connections: e.connections}
	e.elementOrder = p.ElementIDs()
	e.outgoing = make(map[string][]*program.Connection)
	e.incoming = make(map[string][]*program.Connection)
	for _, cid := range p.ConnectionIDs() {
		c := e.connections[cid]
		e.outgoing[c.From] = append(e.outgoing[c.From], c)
		e.incoming[c.To] = append(e.incoming[c.To], c)
	}
}

// Execute drives one run to completion, failure, timeout, or external stop,
// and returns the final execution state. It fails fast with ErrAlreadyRunning
// if a run is in flight.
func (e *Engine) Execute(ctx context.Context, opts dto.ExecutionOptions) (*dto.ExecutionState, error) {
	opts.ApplyDefaults()

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, dto.ErrAlreadyRunning
	}
	e.resetLocked()
	e.opts = opts
	e.running = true
	e.stopFlag = false
	e.status = dto.RunStatusRunning
	e.runID = uuid.NewString()
	e.startTime = time.Now()
	e.mu.Unlock()

	metrics.IncRuns()

	// The time budget is a real cancellation token observed before every
	// visit and before every connection traversal, not a detached race: no
	// traversal survives the run in the background.
	runCtx, cancel := context.WithTimeout(ctx, opts.MaxExecutionTime)
	defer cancel()

	err := e.run(runCtx)

	e.mu.Lock()
	e.endTime = time.Now()
	e.running = false
	switch {
	case err != nil:
		e.status = dto.RunStatusFailed
		e.lastErr = err.Error()
	case e.stopFlag:
		e.status = dto.RunStatusStopped
	default:
		e.status = dto.RunStatusCompleted
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err != nil {
		metrics.IncRunFailures()
	}
	return snap, err
}

// run performs the validation gate, pre-run diagnostics, entry-point
// discovery, and traversal.
func (e *Engine) run(ctx context.Context) error {
	if err := e.validateGraph(); err != nil {
		return err
	}
	e.diagnostics()

	entries := validation.EntryPoints(e.elements, e.connections)
	if len(entries) == 0 && len(e.elementOrder) > 0 {
		fallback := e.elementOrder[0]
		e.logf("No entry points found; falling back to element %q as sole entry", fallback)
		entries = []string{fallback}
	}
	e.logf("Starting execution with %d entry point(s)", len(entries))

	for _, id := range entries {
		if e.stopRequested() {
			break
		}
		if err := e.visit(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// validateGraph is the pre-traversal gate: every element must resolve to a
// registered type and pass that type's validate logic. It runs in full before
// any node executes; a single bad element aborts the whole run.
func (e *Engine) validateGraph() error {
	for _, id := range e.elementOrder {
		el := e.elements[id]
		def, ok := e.registry.Get(el.Type)
		if !ok {
			err := fmt.Errorf("%w: element %q references type %q", dto.ErrUnknownBlockType, id, el.Type)
			e.logf("Validation failed: %v", err)
			e.fireError(err, id)
			return err
		}
		if def.Validate == nil {
			continue
		}
		if verr := def.Validate(el.Props); verr != nil {
			err := fmt.Errorf("%w: element %q: %v", dto.ErrBlockValidation, id, verr)
			e.logf("Validation failed: %v", err)
			e.fireError(err, id)
			return err
		}
	}
	return nil
}

// diagnostics logs cycle and orphan scans. Both are non-fatal: cycles are
// harmless because of the processed-set dedup, and orphans simply only run
// when chosen as entry points.
func (e *Engine) diagnostics() {
	cycles := validation.FindCycles(e.elements, e.connections)
	e.logf("Found %d cycles", len(cycles))
	for _, c := range cycles {
		e.logf("Cycle: %v", c)
	}
	if orphans := validation.FindOrphans(e.elements, e.connections); len(orphans) > 0 {
		e.logf("Found %d orphan element(s): %v", len(orphans), orphans)
	}
}

// visit is one node-visit attempt. Every attempt counts against the step
// budget, including ones that no-op due to dedup or an observed stop.
func (e *Engine) visit(ctx context.Context, id string) error {
	metrics.IncVisits()

	e.mu.Lock()
	e.steps++
	steps, max := e.steps, e.opts.MaxSteps
	e.mu.Unlock()

	if steps > max {
		err := fmt.Errorf("%w: limit %d", dto.ErrStepBudgetExceeded, max)
		e.logf("Aborting: %v", err)
		e.fireError(err, "")
		return err
	}
	if e.stopRequested() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return e.timeout()
	}
	if e.isProcessed(id) {
		return nil
	}

	el, ok := e.elements[id]
	if !ok {
		err := fmt.Errorf("%w: element %q not found", dto.ErrUnknownBlockType, id)
		e.fireError(err, id)
		return err
	}
	// Already validated by the gate; re-checked defensively.
	def, ok := e.registry.Get(el.Type)
	if !ok {
		err := fmt.Errorf("%w: element %q references type %q", dto.ErrUnknownBlockType, id, el.Type)
		e.fireError(err, id)
		return err
	}

	e.markProcessed(id)
	e.logf("Executing element %s (%s)", id, el.Type)
	e.fire(e.opts.OnElementStart, id)

	bctx := newBlockContext(e, ctx, id, e.collectInputs(id, el))
	if def.Execute != nil {
		if err := safeExecute(def.Execute, bctx); err != nil {
			e.logf("Element %s failed: %v", id, err)
			e.fireError(err, id)
			return fmt.Errorf("%w: element %q: %v", dto.ErrBlockExecution, id, err)
		}
	}

	// Fan out queued emissions depth-first. Emit recorded the values already;
	// here the engine, as sole owner of the call stack, traverses every
	// outgoing connection once per emission in connection order.
	for range bctx.drain() {
		for _, conn := range e.outgoing[id] {
			if e.stopRequested() {
				return nil
			}
			if ctx.Err() != nil {
				return e.timeout()
			}
			e.fire(e.opts.OnConnectionTraversed, conn.ID)
			if err := e.visit(ctx, conn.To); err != nil {
				return err
			}
		}
	}

	if e.opts.StepDelay > 0 {
		select {
		case <-ctx.Done():
			return e.timeout()
		case <-time.After(e.opts.StepDelay):
		}
	}

	e.logf("Element %s completed", id)
	e.fire(e.opts.OnElementComplete, id)
	return nil
}

// collectInputs gathers the last-known upstream output per incoming
// connection, keyed by the connection's declared input port (or "input"),
// then merges the element's own props on top: props win on key collision.
func (e *Engine) collectInputs(id string, el *program.Element) map[string]interface{} {
	inputs := make(map[string]interface{})
	e.mu.RLock()
	for _, conn := range e.incoming[id] {
		if v, ok := e.store.PortValue(conn.From, conn.FromOutput); ok {
			inputs[conn.InputKey()] = v
		}
	}
	e.mu.RUnlock()
	for k, v := range el.Props {
		inputs[k] = v
	}
	return inputs
}

func (e *Engine) timeout() error {
	err := fmt.Errorf("%w (%s)", dto.ErrExecutionTimeout, e.opts.MaxExecutionTime)
	e.logf("Aborting: %v", err)
	e.fireError(err, "")
	return err
}

// Stop requests cooperative cancellation: no new visit begins once the flag
// is observed, but an in-flight node invocation is never forcibly
// interrupted and may complete first.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.running && !e.stopFlag {
		e.stopFlag = true
	}
	e.mu.Unlock()
	e.logf("Stop requested")
}

// Reset discards the previous run's state and returns the engine to Idle.
// It fails if a run is in flight.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return dto.ErrAlreadyRunning
	}
	e.resetLocked()
	return nil
}

func (e *Engine) resetLocked() {
	e.store = state.NewStore()
	e.processed = make(map[string]struct{})
	e.order = nil
	e.steps = 0
	e.stopFlag = false
	e.status = dto.RunStatusIdle
	e.runID = ""
	e.lastErr = ""
	e.startTime = time.Time{}
	e.endTime = time.Time{}
}

// IsRunning reports whether a run is in flight.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// GetExecutionState returns a defensive copy of the current run state.
func (e *Engine) GetExecutionState() *dto.ExecutionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// GetExecutionStats summarizes the current run for monitoring.
func (e *Engine) GetExecutionStats() dto.ExecutionStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stats := dto.ExecutionStats{
		Status:     e.status,
		Elements:   len(e.elements),
		Processed:  len(e.processed),
		Steps:      e.steps,
		LogEntries: len(e.store.Log()),
	}
	if !e.startTime.IsZero() {
		end := e.endTime
		if end.IsZero() {
			end = time.Now()
		}
		stats.Elapsed = end.Sub(e.startTime)
	}
	return stats
}

// GetElementStates returns a copy of every element's state slot.
func (e *Engine) GetElementStates() map[string]map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Snapshot()
}

// GetProcessedElements returns the processed ids in execution order.
func (e *Engine) GetProcessedElements() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

func (e *Engine) snapshotLocked() *dto.ExecutionState {
	return &dto.ExecutionState{
		RunID:         e.runID,
		Status:        e.status,
		IsRunning:     e.running,
		ElementStates: e.store.Snapshot(),
		Log:           e.store.Log(),
		Processed:     append([]string(nil), e.order...),
		Steps:         e.steps,
		StartTime:     e.startTime,
		EndTime:       e.endTime,
		Error:         e.lastErr,
	}
}

func (e *Engine) stopRequested() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stopFlag
}

func (e *Engine) isProcessed(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.processed[id]
	return ok
}

func (e *Engine) markProcessed(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processed[id] = struct{}{}
	e.order = append(e.order, id)
}

// logf appends to the run log and notifies the OnLog callback. The callback
// fires outside the lock so it may safely call the engine's accessors.
func (e *Engine) logf(format string, args ...interface{}) {
	e.mu.Lock()
	entry := e.store.Logf(format, args...)
	cb := e.opts.OnLog
	e.mu.Unlock()
	if cb != nil {
		safeCall(func() { cb(entry) })
	}
}

// fire invokes a best-effort element/connection callback.
func (e *Engine) fire(cb func(string), id string) {
	if cb != nil {
		safeCall(func() { cb(id) })
	}
}

func (e *Engine) fireError(err error, elementID string) {
	cb := e.opts.OnError
	if cb != nil {
		safeCall(func() { cb(err, elementID) })
	}
}

// safeCall shields the engine from panicking user callbacks.
func safeCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// safeExecute runs block logic, converting a panic into an error so one bad
// block cannot take the process down.
func safeExecute(exec block.ExecuteFunc, bctx *blockContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return exec(bctx)
}
