package transcendental

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/defistate/lbpmath-go/fixedpoint"
)

var (
	// ErrLogZero is returned when the logarithm of zero is requested.
	ErrLogZero = errors.New("logarithm of zero is undefined")
)

const (
	// log2E divides base-2 logarithms down to natural ones. Six decimal
	// digits fixes the precision of Ln and Pow; widening it would change
	// every downstream result, so it stays as is.
	log2E = "1.442695"
	// eString is e to more digits than any 128-bit format can hold.
	eString = "2.718281828459045235360287471352662497757"
)

// Log2 returns the base-2 logarithm of operand as a magnitude in format D
// plus a sign flag, true when operand is below one and the logarithm is
// therefore negative. Inputs below one are inverted first, so the magnitude
// stays representable in an unsigned format. A zero operand is ErrLogZero.
func Log2[S, D fixedpoint.Format](operand fixedpoint.Number[S]) (fixedpoint.Number[D], bool, error) {
	if operand.IsZero() {
		return fixedpoint.Zero[D](), false, ErrLogZero
	}
	x, err := fixedpoint.Convert[S, D](operand)
	if err != nil {
		return fixedpoint.Zero[D](), false, err
	}
	one := fixedpoint.One[D]()
	if x.Cmp(one) < 0 {
		inv, err := one.Div(x)
		if err != nil {
			return fixedpoint.Zero[D](), false, err
		}
		mag, err := log2Inner(inv)
		return mag, true, err
	}
	mag, err := log2Inner(x)
	return mag, false, err
}

// log2Inner computes log2 for x >= 1. The integer part counts rounding
// halvings down to [1, 2); if that lands exactly on 1 the input was a power
// of two and the count is the whole answer. Otherwise fractional bits are
// extracted most significant first: squaring a value in [1, 2) doubles its
// logarithm, and crossing 2 means the next bit is set.
func log2Inner[D fixedpoint.Format](x fixedpoint.Number[D]) (fixedpoint.Number[D], error) {
	var d D
	one := fixedpoint.One[D]()
	two, err := fixedpoint.FromInt[D](2)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}

	var halvings uint64
	for x.Cmp(two) >= 0 {
		halvings++
		x = x.HalveRounded()
	}
	if x.Cmp(one) == 0 {
		return fixedpoint.FromInt[D](halvings)
	}

	acc := uint256.NewInt(halvings)
	for i := uint(0); i < d.FracBits(); i++ {
		x, err = x.Mul(x)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
		acc.Lsh(acc, 1)
		if x.Cmp(two) >= 0 {
			acc[0] |= 1
			x = x.HalveRounded()
		}
	}
	return fixedpoint.FromBits[D](acc)
}

// Ln returns the natural logarithm of operand as a magnitude plus a sign
// flag, by dividing Log2 through log2(e).
func Ln[S, D fixedpoint.Format](operand fixedpoint.Number[S]) (fixedpoint.Number[D], bool, error) {
	divisor, err := fixedpoint.Parse[S](log2E)
	if err != nil {
		return fixedpoint.Zero[D](), false, err
	}
	mag, negative, err := Log2[S, D](operand)
	if err != nil {
		return fixedpoint.Zero[D](), false, err
	}
	wide, err := fixedpoint.Convert[S, D](divisor)
	if err != nil {
		return fixedpoint.Zero[D](), false, err
	}
	mag, err = mag.Div(wide)
	return mag, negative, err
}

// Exp returns e^operand, or e^(-operand) when negative is set, as a Taylor
// series 1 + x + x^2/2! + ... with one term per fractional bit of D. The
// negative case computes the positive series and inverts it, including for
// operand one, so Exp(1, true) lands on 1/e rather than on the tabulated e.
func Exp[S, D fixedpoint.Format](operand fixedpoint.Number[S], negative bool) (fixedpoint.Number[D], error) {
	var d D
	if operand.IsZero() {
		return fixedpoint.One[D](), nil
	}
	if !negative && operand.Cmp(fixedpoint.One[S]()) == 0 {
		e, err := fixedpoint.Parse[S](eString)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
		return fixedpoint.Convert[S, D](e)
	}

	x, err := fixedpoint.Convert[S, D](operand)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}
	one := fixedpoint.One[D]()
	sum, err := one.Add(x)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}
	term := x
	for i := uint64(2); i < uint64(d.FracBits()); i++ {
		term, err = term.Mul(x)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
		factor, err := fixedpoint.FromInt[D](i)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
		term, err = term.Div(factor)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
		sum, err = sum.Add(term)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
	}

	if negative {
		return one.Div(sum)
	}
	return sum, nil
}

// Pow returns operand raised to exponent via exp(exponent * ln(operand)),
// with the logarithm's sign flag carried into the exponential. Shortcuts in
// order: a zero operand returns 0 (so Pow(0, 0) is 0, the zero base wins),
// a zero exponent returns 1, and an exponent of exactly one returns the
// operand converted to D.
func Pow[S, D fixedpoint.Format](operand, exponent fixedpoint.Number[S]) (fixedpoint.Number[D], error) {
	if operand.IsZero() {
		return fixedpoint.Zero[D](), nil
	}
	if exponent.IsZero() {
		return fixedpoint.One[D](), nil
	}
	if exponent.Cmp(fixedpoint.One[S]()) == 0 {
		return fixedpoint.Convert[S, D](operand)
	}

	lnOp, negative, err := Ln[S, D](operand)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}
	wideExp, err := fixedpoint.Convert[S, D](exponent)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}
	scaled, err := lnOp.Mul(wideExp)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}
	return Exp[D, D](scaled, negative)
}

// PowI raises operand to a small integer exponent with exponent-1 checked
// multiplications. Shortcut order matches Pow.
func PowI[S, D fixedpoint.Format](operand fixedpoint.Number[S], exponent uint32) (fixedpoint.Number[D], error) {
	if operand.IsZero() {
		return fixedpoint.Zero[D](), nil
	}
	if exponent == 0 {
		return fixedpoint.One[D](), nil
	}
	wide, err := fixedpoint.Convert[S, D](operand)
	if err != nil {
		return fixedpoint.Zero[D](), err
	}
	acc := wide
	for i := uint32(1); i < exponent; i++ {
		acc, err = acc.Mul(wide)
		if err != nil {
			return fixedpoint.Zero[D](), err
		}
	}
	return acc, nil
}
