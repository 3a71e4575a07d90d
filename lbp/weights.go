package lbp

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// Block constrains the block-number width the weight interpolator works in.
type Block interface {
	~uint32 | ~uint64
}

// LinearWeight interpolates a pool weight at block at, on the straight line
// from startWeight at startBlock to endWeight at endBlock:
//
//	startWeight + (endWeight - startWeight) * (at - startBlock) / (endBlock - startBlock)
//
// The delta is signed and the division truncates toward zero, so descending
// ramps mirror ascending ones. Both endpoints evaluate exactly to their
// weight. A block outside [startBlock, endBlock], an inverted range, or a
// ramp longer than 32 bits of blocks is ErrOverflow; a ramp with zero
// duration is ErrZeroDuration.
func LinearWeight[B Block](startBlock, endBlock B, startWeight, endWeight *uint256.Int, at B) (*uint256.Int, error) {
	if err := checkBalances(startWeight, endWeight); err != nil {
		return nil, err
	}
	if at < startBlock || at > endBlock {
		return nil, ErrOverflow
	}
	// at in range forces startBlock <= endBlock, so these cannot underflow
	duration := uint64(endBlock - startBlock)
	elapsed := uint64(at - startBlock)
	if duration == 0 {
		return nil, ErrZeroDuration
	}
	if duration > math.MaxUint32 {
		return nil, ErrOverflow
	}

	w0 := startWeight.ToBig()
	delta := new(big.Int).Sub(endWeight.ToBig(), w0)
	delta.Mul(delta, new(big.Int).SetUint64(elapsed))
	delta.Quo(delta, new(big.Int).SetUint64(duration))
	delta.Add(delta, w0)

	if delta.Sign() < 0 {
		return nil, ErrOverflow
	}
	out, overflow := uint256.FromBig(delta)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}
