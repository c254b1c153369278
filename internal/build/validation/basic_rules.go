package validation

import (
	"context"
	"os"
)

// PreviousBuildRule requires a recorded successful build.
type PreviousBuildRule struct{}

func (r PreviousBuildRule) Name() string { return "previous_build" }

func (r PreviousBuildRule) Validate(_ context.Context, vctx Context) Result {
	if vctx.Previous == nil {
		return Failure("no previous successful build")
	}
	return Success()
}

// ConfigHashRule requires the render-affecting configuration to be unchanged.
type ConfigHashRule struct{}

func (r ConfigHashRule) Name() string { return "config_hash" }

func (r ConfigHashRule) Validate(_ context.Context, vctx Context) Result {
	if vctx.ConfigHash == "" {
		return Failure("current config hash is empty")
	}
	if vctx.Previous == nil || vctx.Previous.ConfigHash != vctx.ConfigHash {
		return Failure("config hash mismatch")
	}
	return Success()
}

// OutputFileRule requires the previously written page to still be on disk.
type OutputFileRule struct{}

func (r OutputFileRule) Name() string { return "output_file" }

func (r OutputFileRule) Validate(_ context.Context, vctx Context) Result {
	fi, err := os.Stat(vctx.OutputFile)
	if err != nil {
		return Failure("output file missing")
	}
	if !fi.Mode().IsRegular() {
		return Failure("output path is not a regular file")
	}
	if fi.Size() == 0 {
		return Failure("output file is empty")
	}
	return Success()
}
