package validation

import "context"

// SetHashRule requires the selected document set to be unchanged: same
// paths, ids and fingerprints in the same order.
type SetHashRule struct{}

func (r SetHashRule) Name() string { return "set_hash" }

func (r SetHashRule) Validate(_ context.Context, vctx Context) Result {
	if vctx.SetHash == "" {
		return Failure("current document set hash is empty")
	}
	if vctx.Previous == nil || vctx.Previous.SetHash != vctx.SetHash {
		return Failure("document set changed")
	}
	return Success()
}
