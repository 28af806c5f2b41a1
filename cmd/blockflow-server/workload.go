package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/blockflow/blockflow/internal/core/block"
	"github.com/blockflow/blockflow/internal/core/program"
	"github.com/blockflow/blockflow/internal/infrastructure/metrics"
	"github.com/blockflow/blockflow/pkg/blockflow"
)

type workloadManager struct {
	mu        sync.Mutex
	engCancel context.CancelFunc
}

var wm workloadManager

func (m *workloadManager) startEngine(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engCancel != nil {
		http.Error(w, "engine workload already running", http.StatusConflict)
		return
	}
	rate := 200 * time.Millisecond
	if v := r.URL.Query().Get("rate_ms"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			rate = ms
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.engCancel = cancel
	go func() { runEngineLoop(ctx, rate) }()
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "engine workload started at %v\n", rate)
}

func (m *workloadManager) stopEngine(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engCancel != nil {
		m.engCancel()
		m.engCancel = nil
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "engine workload stopped\n")
}

// runEngineLoop repeatedly executes a small chain program so the engine
// counters and registry gauges move.
func runEngineLoop(ctx context.Context, hz time.Duration) {
	rt, err := blockflow.NewRuntime()
	if err != nil {
		log.Printf("workload runtime error: %v", err)
		return
	}
	publishRegistryGauges(rt.Registry())

	p := benchProgram()
	if err := rt.SaveProgram(ctx, p); err != nil {
		log.Printf("workload program error: %v", err)
		return
	}

	ticker := time.NewTicker(hz)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rt.Execute(ctx, p.ID, blockflow.ExecutionOptions{MaxSteps: 100, MaxExecutionTime: time.Second}); err != nil {
				log.Printf("workload run error: %v", err)
			}
		}
	}
}

func publishRegistryGauges(r *block.Registry) {
	stats := r.Stats()
	for category, n := range stats.PerCategory {
		metrics.SetRegistryBlocks(string(category), int64(n))
	}
}

// benchProgram is a three-element chain: const -> add -> print.
func benchProgram() *program.Program {
	p := program.New("bench", "Workload Bench")
	_ = p.AddElement(&program.Element{ID: "src", Type: "const", Props: map[string]interface{}{"value": 21}})
	_ = p.AddElement(&program.Element{ID: "sum", Type: "add"})
	_ = p.AddElement(&program.Element{ID: "out", Type: "print"})
	_ = p.AddConnection(&program.Connection{ID: "c1", From: "src", To: "sum", ToInput: "a"})
	_ = p.AddConnection(&program.Connection{ID: "c2", From: "sum", To: "out", ToInput: "input"})
	return p
}
