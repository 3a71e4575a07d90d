package lbp

import (
	"github.com/holiman/uint256"

	"github.com/defistate/lbpmath-go/fixedpoint"
	"github.com/defistate/lbpmath-go/transcendental"
)

// Pricing runs in 64.64 fixed point: weight and reserve ratios fit its 128
// bits, and products against 128-bit balances fit uint256 exactly.
type quoteFormat = fixedpoint.UQ64x64

// balanceBits is the width of every reserve, weight and amount argument.
const balanceBits = 128

var (
	fracShift = fixedpoint.UQ64x64{}.FracBits()

	// halfUnit is half of one raw fixed-point unit, added before the final
	// right shift so balance conversions round half-up instead of truncating.
	halfUnit = new(uint256.Int).Lsh(uint256.NewInt(1), fracShift-1)
)

// SpotPrice returns how much of the buy asset amount units of the sell asset
// are worth at the current reserves and weights:
//
//	amount * buyReserve * sellWeight / (sellReserve * buyWeight)
//
// in checked 128-bit integer arithmetic with truncating division. A zero
// sell reserve is ErrZeroInReserve. A zero amount, buy reserve or sell
// weight prices to 0; a zero buy weight under a nonzero numerator cannot be
// priced and is ErrOverflow, as is any intermediate product wider than 128
// bits. Arguments are never mutated.
func SpotPrice(sellReserve, buyReserve, sellWeight, buyWeight, amount *uint256.Int) (*uint256.Int, error) {
	if err := checkBalances(sellReserve, buyReserve, sellWeight, buyWeight, amount); err != nil {
		return nil, err
	}
	if sellReserve.IsZero() {
		return nil, ErrZeroInReserve
	}
	if amount.IsZero() || buyReserve.IsZero() || sellWeight.IsZero() {
		return uint256.NewInt(0), nil
	}

	num, err := mul128(amount, buyReserve)
	if err != nil {
		return nil, err
	}
	num, err = mul128(num, sellWeight)
	if err != nil {
		return nil, err
	}
	den, err := mul128(sellReserve, buyWeight)
	if err != nil {
		return nil, err
	}
	if den.IsZero() {
		return nil, ErrOverflow
	}
	return num.Div(num, den), nil
}

// OutGivenIn quotes the amount of the buy asset received for selling
// amountIn into the pool:
//
//	buyReserve * (1 - (sellReserve / (sellReserve + amountIn))^(sellWeight/buyWeight))
//
// The final conversion back to a balance rounds half-up. A zero buy weight
// is ErrZeroOutWeight; every other failure is ErrOverflow.
func OutGivenIn(sellReserve, buyReserve, sellWeight, buyWeight, amountIn *uint256.Int) (*uint256.Int, error) {
	if err := checkBalances(sellReserve, buyReserve, sellWeight, buyWeight, amountIn); err != nil {
		return nil, err
	}
	if buyWeight.IsZero() {
		return nil, ErrZeroOutWeight
	}

	weightRatio, err := fixedpoint.FromRatio[quoteFormat](sellWeight, buyWeight)
	if err != nil {
		return nil, ErrOverflow
	}
	grown := new(uint256.Int).Add(sellReserve, amountIn)
	base, err := fixedpoint.FromRatio[quoteFormat](sellReserve, grown)
	if err != nil {
		return nil, ErrOverflow
	}
	power, err := transcendental.Pow[quoteFormat, quoteFormat](base, weightRatio)
	if err != nil {
		return nil, ErrOverflow
	}
	factor, err := fixedpoint.One[quoteFormat]().Sub(power)
	if err != nil {
		return nil, ErrOverflow
	}
	return scaleBalance(buyReserve, factor)
}

// InGivenOut quotes the amount of the sell asset that must be paid to take
// amountOut of the buy asset from the pool:
//
//	sellReserve * ((buyReserve / (buyReserve - amountOut))^(buyWeight/sellWeight) - 1)
//
// The final conversion back to a balance rounds half-up. Draining the buy
// reserve (amountOut >= buyReserve), zero weights and every arithmetic
// failure are all ErrOverflow.
func InGivenOut(sellReserve, buyReserve, sellWeight, buyWeight, amountOut *uint256.Int) (*uint256.Int, error) {
	if err := checkBalances(sellReserve, buyReserve, sellWeight, buyWeight, amountOut); err != nil {
		return nil, err
	}
	if buyReserve.Cmp(amountOut) <= 0 {
		return nil, ErrOverflow
	}

	weightRatio, err := fixedpoint.FromRatio[quoteFormat](buyWeight, sellWeight)
	if err != nil {
		return nil, ErrOverflow
	}
	remaining := new(uint256.Int).Sub(buyReserve, amountOut)
	base, err := fixedpoint.FromRatio[quoteFormat](buyReserve, remaining)
	if err != nil {
		return nil, ErrOverflow
	}
	power, err := transcendental.Pow[quoteFormat, quoteFormat](base, weightRatio)
	if err != nil {
		return nil, ErrOverflow
	}
	factor, err := power.Sub(fixedpoint.One[quoteFormat]())
	if err != nil {
		return nil, ErrOverflow
	}
	return scaleBalance(sellReserve, factor)
}

// checkBalances rejects nil arguments and values wider than 128 bits.
func checkBalances(vals ...*uint256.Int) error {
	for _, v := range vals {
		if v == nil || v.BitLen() > balanceBits {
			return ErrOverflow
		}
	}
	return nil
}

// mul128 multiplies two 128-bit quantities, failing when the product no
// longer fits 128 bits.
func mul128(x, y *uint256.Int) (*uint256.Int, error) {
	p := new(uint256.Int).Mul(x, y)
	if p.BitLen() > balanceBits {
		return nil, ErrOverflow
	}
	return p, nil
}

// scaleBalance multiplies a 128-bit balance by a fixed-point factor and
// rounds the product half-up back to an integer balance.
func scaleBalance(balance *uint256.Int, factor fixedpoint.Number[quoteFormat]) (*uint256.Int, error) {
	p := new(uint256.Int).Mul(balance, factor.Bits())
	p.Add(p, halfUnit)
	p.Rsh(p, fracShift)
	if p.BitLen() > balanceBits {
		return nil, ErrOverflow
	}
	return p, nil
}
