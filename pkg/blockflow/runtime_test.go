package blockflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/internal/core/block"
)

func demoProgram() *Program {
	return &Program{
		ID:   "rt-demo",
		Name: "Runtime Demo",
		Elements: map[string]*Element{
			"src":  {ID: "src", Type: "const", Props: map[string]interface{}{"value": 20}},
			"sum":  {ID: "sum", Type: "add", Props: map[string]interface{}{"b": 22}},
			"sink": {ID: "sink", Type: "print"},
		},
		Connections: map[string]*Connection{
			"c1": {ID: "c1", From: "src", To: "sum", ToInput: "a"},
			"c2": {ID: "c2", From: "sum", To: "sink", FromOutput: "sum", ToInput: "input"},
		},
	}
}

func TestRuntime_RunSimple(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	ctx := context.Background()

	st, err := rt.RunSimple(ctx, demoProgram())
	require.NoError(t, err)
	require.NotNil(t, st)

	assert.Equal(t, "rt-demo", st.ProgramID)
	assert.Equal(t, dto.RunStatusCompleted, st.Status)
	assert.Equal(t, []string{"src", "sum", "sink"}, st.Processed)
	assert.Equal(t, 42.0, st.ElementStates["sum"]["sum"])
}

func TestRuntime_RunBookkeeping(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	ctx := context.Background()

	st, err := rt.RunSimple(ctx, demoProgram())
	require.NoError(t, err)

	t.Run("run state retrievable", func(t *testing.T) {
		got, err := rt.LoadRun(ctx, st.RunID)
		require.NoError(t, err)
		assert.Equal(t, st.Steps, got.Steps)
	})

	t.Run("snapshot recorded", func(t *testing.T) {
		ids, err := rt.ListSnapshots(ctx, "rt-demo")
		require.NoError(t, err)
		require.Len(t, ids, 1)

		snap, err := rt.LoadSnapshot(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, st.RunID, snap.RunID)
		assert.Equal(t, "completed", snap.Metadata.Status)
	})
}

func TestRuntime_CustomBlock(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, rt.Registry().Register("shout", Definition{
		DisplayName: "Shout",
		Category:    block.CategoryData,
		Inputs:      []string{"input"},
		Outputs:     []string{"out"},
		Execute: func(bctx Context) error {
			s, _ := bctx.Inputs()["input"].(string)
			bctx.Emit("out", s+"!")
			return nil
		},
	}))

	p := &Program{
		ID:   "custom",
		Name: "Custom Block",
		Elements: map[string]*Element{
			"src":   {ID: "src", Type: "const", Props: map[string]interface{}{"value": "hey"}},
			"shout": {ID: "shout", Type: "shout"},
		},
		Connections: map[string]*Connection{
			"c1": {ID: "c1", From: "src", To: "shout", ToInput: "input"},
		},
	}

	st, err := rt.RunSimple(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "hey!", st.ElementStates["shout"]["out"])
}

func TestRuntime_ExecuteUnknownProgram(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)

	_, err = rt.Execute(context.Background(), "ghost", ExecutionOptions{})
	assert.Error(t, err)
}

func TestRuntime_FailedRunStateKept(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	ctx := context.Background()

	p := demoProgram()
	p.Elements["sink"].Type = "bogus"

	st, runErr := rt.RunSimple(ctx, p)
	require.Error(t, runErr)
	require.NotNil(t, st, "the failed run's state is still returned")
	assert.Equal(t, dto.RunStatusFailed, st.Status)

	got, err := rt.LoadRun(ctx, st.RunID)
	require.NoError(t, err)
	assert.Equal(t, dto.RunStatusFailed, got.Status)
}
