package build

import "errors"

// Sentinel errors naming the stage a build failed in. They are joined with
// the classified cause, so both errors.Is and the CLI exit-code mapping work.
var (
	ErrSync      = errors.New("apiref: sync error")
	ErrDiscovery = errors.New("apiref: discovery error")
	ErrRender    = errors.New("apiref: render error")
	ErrWrite     = errors.New("apiref: write error")
)
