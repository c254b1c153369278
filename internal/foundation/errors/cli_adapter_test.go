package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "unclassified", err: stderrors.New("boom"), expected: 1},
		{name: "validation", err: ValidationError("bad").Build(), expected: 2},
		{name: "not found", err: NewError(CategoryNotFound, "missing").Build(), expected: 4},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "git", err: GitError("clone").Build(), expected: 8},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "render", err: RenderError("template").Build(), expected: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)
	err := WrapError(stderrors.New("eof"), CategoryConfig, "failed to parse config").Build()

	assert.Equal(t, "Error: failed to parse config", quiet.FormatError(err))
	assert.Equal(t, err.Error(), verbose.FormatError(err))
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("x").Build()))
	assert.Equal(t, "Error: boom", quiet.FormatError(stderrors.New("boom")))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))

	code := adapter.Report(&out, RenderError("template failed").WithContext("template", "page").Build())

	assert.Equal(t, 11, code)
	assert.Equal(t, "Error: template failed\n", out.String())
	assert.Contains(t, logs.String(), "category=render")
	assert.Contains(t, logs.String(), "template=page")
}
