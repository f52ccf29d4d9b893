package types

import "github.com/moznion/go-optional"

// Signal is the detector output for one candle index.
type Signal struct {
	// OrderBlock is true when the bullish-then-bearish reversal pair completed on the previous two candles.
	OrderBlock bool `json:"orderBlock"`
	// Entry is true when a trade should be considered at this index. Currently always equal to OrderBlock.
	Entry bool `json:"entry"`
	// Exit is reserved for a symmetric exit pattern and is always false.
	Exit bool `json:"exit"`
	// StopLoss is present iff Entry is true.
	StopLoss optional.Option[float64] `json:"stopLoss"`
}

// SignalSequence is aligned by index with the CandleSequence it was detected on.
type SignalSequence []Signal

// NewSignalSequence returns n default signals.
func NewSignalSequence(n int) SignalSequence {
	signals := make(SignalSequence, n)
	for i := range signals {
		signals[i] = Signal{
			OrderBlock: false,
			Entry:      false,
			Exit:       false,
			StopLoss:   optional.None[float64](),
		}
	}

	return signals
}

// EntryIndices returns the indices whose Entry flag is set, in order.
func (s SignalSequence) EntryIndices() []int {
	var indices []int

	for i, sig := range s {
		if sig.Entry {
			indices = append(indices, i)
		}
	}

	return indices
}
