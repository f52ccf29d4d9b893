package marketdata

import (
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// Result is the outcome of Pipeline.Resolve: either Ok with a canonical
// candle sequence, or Empty with a human readable reason.
type Result struct {
	ok      bool
	candles types.CandleSequence
	reason  string
	err     error
}

// Ok wraps a non-empty canonical sequence.
func Ok(candles types.CandleSequence) Result {
	return Result{ok: true, candles: candles}
}

// Empty wraps a failure. The reason names the failure kind.
func Empty(cause error) Result {
	return Result{ok: false, reason: Reason(cause), err: cause}
}

// OK reports whether the result carries candles.
func (r Result) OK() bool {
	return r.ok
}

// Candles returns the sequence, nil for an Empty result.
func (r Result) Candles() types.CandleSequence {
	return r.candles
}

// Reason explains an Empty result, "" for Ok.
func (r Result) Reason() string {
	return r.reason
}

// Err returns the cause of an Empty result.
func (r Result) Err() error {
	return r.err
}

// Reason renders err as "<kind>: <message>".
func Reason(err error) string {
	return errors.Describe(err)
}
