// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func model(name string) string {
	return filepath.Join("..", "..", "planner", "testdata", name)
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "zplan", cmd.Use)

	for _, name := range []string{"validate", "plan", "solve"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
			assert.NotNil(t, sub.InheritedFlags().Lookup("verbose"))
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", model("two_parts.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", model("two_parts.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ model valid: 2 jobs, 2 parts, 1 machine types (1 instances), horizon 2")

	out, err = execute(t, "--format", "json", "validate", model("workshop.yaml"))
	require.NoError(t, err)
	var resp struct {
		Status string       `json:"status"`
		Data   ModelSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Parts)
	assert.Equal(t, 2, resp.Data.Jobs)
	assert.Equal(t, 4, resp.Data.Instances)
}

func TestValidateErrors(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error: cannot load model")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("operations: [cut]\nparts: []\n"), 0o644))
	out, err = execute(t, "--format", "json", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ExitCommandError, resp.Error.Code)
}

func TestPlan(t *testing.T) {
	dot := filepath.Join(t.TempDir(), "plans.dot")
	out, err := execute(t, "plan", "--list", "--dot", dot, model("two_parts.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "feasible plans: 1 ")
	assert.Contains(t, out, "configurations: 1\n")
	assert.Contains(t, out, "  FS[1] MX[0,0]\n")

	data, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph G {")

	// the representation flag overrides the model file
	out, err = execute(t, "--format", "json", "plan", "-r", "obdd", "-c", "0", model("two_parts.yaml"))
	require.NoError(t, err)
	var resp struct {
		Status string     `json:"status"`
		Data   PlanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "0", resp.Data.Plans)
}

func TestSolve(t *testing.T) {
	out, err := execute(t, "solve", "--gantt", "-", model("two_parts.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "first solution at step 2")
	assert.Contains(t, out, "  makespan 2: 2 solutions\n")
	assert.Contains(t, out, "schedule: makespan 2, 1 machines")
	assert.Contains(t, out, "# Schedule")
	assert.Contains(t, out, "```mermaid")

	gantt := filepath.Join(t.TempDir(), "schedule.md")
	out, err = execute(t, "--format", "json", "solve", "-r", "obdd", "-g", gantt, model("two_parts.yaml"))
	require.NoError(t, err)
	var resp struct {
		Status string      `json:"status"`
		Data   SolveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.First)
	assert.Equal(t, map[int]string{2: "2"}, resp.Data.Counts)
	require.NotNil(t, resp.Data.Schedule)
	assert.Len(t, resp.Data.Schedule.Items, 2)
	data, err := os.ReadFile(gantt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- makespan: 2\n")
}

func TestSolveNoSolution(t *testing.T) {
	out, err := execute(t, "solve", "--capacity", "0", model("two_parts.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no solution after 0 steps")

	_, err = execute(t, "solve", "--step-limit", "1", model("permutation.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step limit reached")
}

func TestSolveShortMakespan(t *testing.T) {
	// a makespan below the optimum only prunes while some state survives
	out, err := execute(t, "solve", "--makespan", "1", "--no-dynamic-bound", model("permutation.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "first solution at step 3")
}

func TestExitError(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	cause := errors.New("cause")
	err := WrapExitError(ExitCommandError, "wrapped", cause)
	assert.Equal(t, "wrapped: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "message", NewExitError(ExitFailure, "message").Error())
}
