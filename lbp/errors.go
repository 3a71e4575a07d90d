package lbp

import "errors"

var (
	// ErrZeroInReserve is returned by SpotPrice when the sell-side reserve is zero.
	ErrZeroInReserve = errors.New("sell reserve is zero")
	// ErrZeroOutWeight is returned by OutGivenIn when the buy-side weight is zero.
	ErrZeroOutWeight = errors.New("buy weight is zero")
	// ErrZeroDuration is returned by LinearWeight when the ramp starts and ends on the same block.
	ErrZeroDuration = errors.New("weight ramp has zero duration")
	// ErrOverflow is returned for every other failure: inputs wider than 128
	// bits, intermediate values that no longer fit, insufficient liquidity,
	// and block numbers outside the ramp.
	ErrOverflow = errors.New("arithmetic overflow")
)
