package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// ErrOverflow is returned when a value does not fit the format width,
	// including subtraction below zero.
	ErrOverflow = errors.New("value exceeds format range")
	// ErrDivisionByZero is returned when a divisor or denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")

	bigTen  = big.NewInt(10)
	bigFive = big.NewInt(5)
)

// Number is an unsigned binary fixed-point value in format F. The raw bits
// live in a uint256.Int and always fit the format width, so every 256-bit
// intermediate product below is exact. The zero value is 0 and ready to use.
//
// All operations are checked: they return ErrOverflow instead of wrapping
// and never mutate their operands. Values are safe to copy and to share
// between goroutines.
type Number[F Format] struct {
	bits uint256.Int
}

// Zero returns 0 in format F.
func Zero[F Format]() Number[F] {
	return Number[F]{}
}

// One returns 1 in format F.
func One[F Format]() Number[F] {
	var out Number[F]
	out.bits.SetUint64(1)
	out.bits.Lsh(&out.bits, fracBits[F]())
	return out
}

// FromInt converts an integer to format F, failing when it does not fit.
func FromInt[F Format](v uint64) (Number[F], error) {
	var out Number[F]
	out.bits.SetUint64(v)
	out.bits.Lsh(&out.bits, fracBits[F]())
	if !fits[F](&out.bits) {
		return Number[F]{}, ErrOverflow
	}
	return out, nil
}

// FromBits builds a Number from raw fixed-point bits. The bits are copied;
// raw is not retained.
func FromBits[F Format](raw *uint256.Int) (Number[F], error) {
	if raw == nil || !fits[F](raw) {
		return Number[F]{}, ErrOverflow
	}
	return Number[F]{bits: *raw}, nil
}

// FromRatio returns floor((num << frac) / den) in format F. num and den are
// plain integers, not fixed-point values; they may be up to 256-frac bits
// wide, which comfortably covers 128-bit balances and sums of two of them.
func FromRatio[F Format](num, den *uint256.Int) (Number[F], error) {
	if num == nil || den == nil {
		return Number[F]{}, ErrOverflow
	}
	if den.IsZero() {
		return Number[F]{}, ErrDivisionByZero
	}
	frac := fracBits[F]()
	if uint(num.BitLen())+frac > 256 {
		return Number[F]{}, ErrOverflow
	}
	var q uint256.Int
	q.Lsh(num, frac)
	q.Div(&q, den)
	if !fits[F](&q) {
		return Number[F]{}, ErrOverflow
	}
	return Number[F]{bits: q}, nil
}

// Parse reads a non-negative decimal string such as "1.442695" and rounds
// it half-up to the nearest representable value in format F.
func Parse[F Format](s string) (Number[F], error) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(intPart)+len(fracPart) == 0 || !allDigits(intPart) || !allDigits(fracPart) {
		return Number[F]{}, fmt.Errorf("invalid decimal %q", s)
	}
	v, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Number[F]{}, fmt.Errorf("invalid decimal %q", s)
	}
	scale := new(big.Int).Exp(bigTen, big.NewInt(int64(len(fracPart))), nil)
	v.Lsh(v, fracBits[F]())
	q, r := v.QuoRem(v, scale, new(big.Int))
	if r.Lsh(r, 1).Cmp(scale) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	bits, overflow := uint256.FromBig(q)
	if overflow || !fits[F](bits) {
		return Number[F]{}, ErrOverflow
	}
	return Number[F]{bits: *bits}, nil
}

// Add returns x + y, checked.
func (x Number[F]) Add(y Number[F]) (Number[F], error) {
	var out Number[F]
	out.bits.Add(&x.bits, &y.bits)
	if !fits[F](&out.bits) {
		return Number[F]{}, ErrOverflow
	}
	return out, nil
}

// Sub returns x - y. Going below zero is ErrOverflow, never a wrap.
func (x Number[F]) Sub(y Number[F]) (Number[F], error) {
	var out Number[F]
	if _, borrow := out.bits.SubOverflow(&x.bits, &y.bits); borrow {
		return Number[F]{}, ErrOverflow
	}
	return out, nil
}

// Mul returns x * y with the full 256-bit product floored to the format's
// fractional width.
func (x Number[F]) Mul(y Number[F]) (Number[F], error) {
	var out Number[F]
	out.bits.Mul(&x.bits, &y.bits)
	out.bits.Rsh(&out.bits, fracBits[F]())
	if !fits[F](&out.bits) {
		return Number[F]{}, ErrOverflow
	}
	return out, nil
}

// Div returns floor(x / y).
func (x Number[F]) Div(y Number[F]) (Number[F], error) {
	if y.bits.IsZero() {
		return Number[F]{}, ErrDivisionByZero
	}
	var out Number[F]
	out.bits.Lsh(&x.bits, fracBits[F]())
	out.bits.Div(&out.bits, &y.bits)
	if !fits[F](&out.bits) {
		return Number[F]{}, ErrOverflow
	}
	return out, nil
}

// HalveRounded returns x/2 rounded to nearest: the shifted-out low bit is
// added back, so 3/2 halves to 2 rather than 1. Cannot overflow.
func (x Number[F]) HalveRounded() Number[F] {
	var out Number[F]
	lost := x.bits[0] & 1
	out.bits.Rsh(&x.bits, 1)
	if lost != 0 {
		out.bits.AddUint64(&out.bits, 1)
	}
	return out
}

// Bits returns a copy of the raw fixed-point bits.
func (x Number[F]) Bits() *uint256.Int {
	return x.bits.Clone()
}

// IsZero reports whether x == 0.
func (x Number[F]) IsZero() bool {
	return x.bits.IsZero()
}

// Cmp compares x and y, returning -1, 0 or +1.
func (x Number[F]) Cmp(y Number[F]) int {
	return x.bits.Cmp(&y.bits)
}

// Floor returns the integer part of x.
func (x Number[F]) Floor() *uint256.Int {
	return new(uint256.Int).Rsh(&x.bits, fracBits[F]())
}

// Decimal renders x exactly: bits/2^frac == bits*5^frac * 10^-frac, so the
// expansion is always finite.
func (x Number[F]) Decimal() decimal.Decimal {
	frac := fracBits[F]()
	coeff := new(big.Int).Exp(bigFive, big.NewInt(int64(frac)), nil)
	coeff.Mul(coeff, x.bits.ToBig())
	return decimal.NewFromBigInt(coeff, -int32(frac))
}

// String renders x as an exact decimal with trailing zeros trimmed.
func (x Number[F]) String() string {
	return x.Decimal().String()
}

// fits reports whether raw bits stay within format F's total width.
func fits[F Format](bits *uint256.Int) bool {
	return uint(bits.BitLen()) <= width[F]()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
