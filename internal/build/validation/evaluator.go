// Package validation decides whether a build can be skipped because nothing
// that affects the rendered page has changed since the last successful build.
package validation

import (
	"context"
	"log/slog"
)

// SkipEvaluator runs the standard skip rules.
type SkipEvaluator struct {
	rules *RuleChain
}

// NewSkipEvaluator constructs an evaluator with the standard validation rules.
func NewSkipEvaluator() *SkipEvaluator {
	return &SkipEvaluator{
		rules: NewRuleChain(
			PreviousBuildRule{},
			ConfigHashRule{},
			SetHashRule{},
			OutputFileRule{},
		),
	}
}

// Evaluate reports whether the build can be skipped. It never returns an
// error; missing data simply disables the skip and a full build proceeds.
func (se *SkipEvaluator) Evaluate(ctx context.Context, vctx Context) Result {
	if vctx.Logger == nil {
		vctx.Logger = slog.Default()
	}
	return se.rules.Validate(ctx, vctx)
}
