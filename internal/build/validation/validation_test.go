package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOutput(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func skippableContext(t *testing.T) Context {
	t.Helper()
	return Context{
		OutputFile: writeOutput(t, "<html></html>"),
		SetHash:    "set-1",
		ConfigHash: "cfg-1",
		Previous:   &PreviousBuild{BuildID: "b1", SetHash: "set-1", ConfigHash: "cfg-1"},
	}
}

func TestSkipEvaluator_AllRulesPass(t *testing.T) {
	res := NewSkipEvaluator().Evaluate(context.Background(), skippableContext(t))
	assert.True(t, res.Passed)
	assert.Empty(t, res.Reason)
}

func TestSkipEvaluator_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, c *Context)
		reason string
	}{
		{"no previous build", func(_ *testing.T, c *Context) { c.Previous = nil }, "no previous successful build"},
		{"config changed", func(_ *testing.T, c *Context) { c.ConfigHash = "cfg-2" }, "config hash mismatch"},
		{"empty config hash", func(_ *testing.T, c *Context) { c.ConfigHash = "" }, "current config hash is empty"},
		{"document set changed", func(_ *testing.T, c *Context) { c.SetHash = "set-2" }, "document set changed"},
		{"empty set hash", func(_ *testing.T, c *Context) { c.SetHash = "" }, "current document set hash is empty"},
		{"output missing", func(t *testing.T, c *Context) { c.OutputFile = filepath.Join(t.TempDir(), "gone.html") }, "output file missing"},
		{"output is a directory", func(t *testing.T, c *Context) { c.OutputFile = t.TempDir() }, "output path is not a regular file"},
		{"output empty", func(t *testing.T, c *Context) { c.OutputFile = writeOutput(t, "") }, "output file is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vctx := skippableContext(t)
			tt.mutate(t, &vctx)
			res := NewSkipEvaluator().Evaluate(context.Background(), vctx)
			assert.False(t, res.Passed)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

type countingRule struct {
	name   string
	result Result
	calls  *int
}

func (r countingRule) Name() string { return r.name }

func (r countingRule) Validate(context.Context, Context) Result {
	*r.calls++
	return r.result
}

func TestRuleChain_StopsAtFirstFailure(t *testing.T) {
	var first, second, third int
	chain := NewRuleChain(
		countingRule{name: "a", result: Success(), calls: &first},
		countingRule{name: "b", result: Failure("nope"), calls: &second},
		countingRule{name: "c", result: Success(), calls: &third},
	)

	res := chain.Validate(context.Background(), Context{})
	assert.False(t, res.Passed)
	assert.Equal(t, "nope", res.Reason)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, third)
}

func TestRuleChain_Empty(t *testing.T) {
	assert.True(t, NewRuleChain().Validate(context.Background(), Context{}).Passed)
}
