package metrics

import (
	"expvar"
)

// Engine metrics.
var (
	runsTotal        = new(expvar.Int)
	runFailuresTotal = new(expvar.Int)
	visitsTotal      = new(expvar.Int)
	emitsTotal       = new(expvar.Int)
)

// Registry metrics (gauges) keyed by block category.
var (
	registryBlocks = expvar.NewMap("blockflow_registry_blocks")
)

func init() {
	expvar.Publish("blockflow_runs_total", runsTotal)
	expvar.Publish("blockflow_run_failures_total", runFailuresTotal)
	expvar.Publish("blockflow_visits_total", visitsTotal)
	expvar.Publish("blockflow_emits_total", emitsTotal)
}

// Engine helpers
func IncRuns()        { runsTotal.Add(1) }
func IncRunFailures() { runFailuresTotal.Add(1) }
func IncVisits()      { visitsTotal.Add(1) }
func IncEmits()       { emitsTotal.Add(1) }

// Registry helpers
func SetRegistryBlocks(category string, n int64) { setMapInt(registryBlocks, category, n) }

// setMapInt replaces value for a key in an expvar.Map with an *expvar.Int set to v.
func setMapInt(m *expvar.Map, key string, v int64) {
	x := new(expvar.Int)
	x.Set(v)
	m.Set(key, x)
}
