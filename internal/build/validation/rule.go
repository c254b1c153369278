package validation

import (
	"context"
	"log/slog"
)

// PreviousBuild is what the last successful build left behind.
type PreviousBuild struct {
	BuildID    string
	SetHash    string
	ConfigHash string
	Documents  int
	NavEntries int
}

// Context contains all the data needed by validation rules.
type Context struct {
	OutputFile string
	SetHash    string
	ConfigHash string
	Previous   *PreviousBuild
	Logger     *slog.Logger
}

// Result indicates whether validation passed and provides context.
type Result struct {
	Passed bool
	Reason string // human-readable reason for failure
}

// Success returns a successful validation result.
func Success() Result {
	return Result{Passed: true}
}

// Failure returns a failed validation result with a reason.
func Failure(reason string) Result {
	return Result{Passed: false, Reason: reason}
}

// SkipValidationRule represents a single validation rule for skip evaluation.
type SkipValidationRule interface {
	// Name returns a short identifier for this rule (for logging/debugging).
	Name() string

	// Validate checks if this rule allows skipping the build.
	Validate(ctx context.Context, vctx Context) Result
}

// RuleChain executes validation rules in sequence, stopping at the first failure.
type RuleChain struct {
	rules []SkipValidationRule
}

// NewRuleChain creates a new rule chain with the given rules.
func NewRuleChain(rules ...SkipValidationRule) *RuleChain {
	return &RuleChain{rules: rules}
}

// Validate executes all rules in order, returning the first failure or success if all pass.
func (rc *RuleChain) Validate(ctx context.Context, vctx Context) Result {
	for _, rule := range rc.rules {
		result := rule.Validate(ctx, vctx)
		if !result.Passed {
			if vctx.Logger != nil {
				vctx.Logger.Debug("Skip validation failed",
					"rule", rule.Name(),
					"reason", result.Reason)
			}
			return result
		}
	}
	return Success()
}
