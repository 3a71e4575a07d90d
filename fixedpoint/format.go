package fixedpoint

// Format fixes the bit layout of a Number: how many bits hold the integer
// part and how many hold the fraction. Implementations must be stateless
// value types so the zero value is usable, and the total width must not
// exceed 128 bits so that any product of two values fits in 256 bits.
type Format interface {
	IntBits() uint
	FracBits() uint
}

// UQ64x64 is the unsigned 64.64 binary format, the workhorse layout of the
// pricing engine: 64 integer bits, 64 fractional bits, 128 bits total.
type UQ64x64 struct{}

func (UQ64x64) IntBits() uint  { return 64 }
func (UQ64x64) FracBits() uint { return 64 }

// UQ32x32 is the unsigned 32.32 binary format. Half the width of UQ64x64,
// it mainly serves as the narrow source side of widening conversions.
type UQ32x32 struct{}

func (UQ32x32) IntBits() uint  { return 32 }
func (UQ32x32) FracBits() uint { return 32 }

// width returns the total bit width of format F.
func width[F Format]() uint {
	var f F
	return f.IntBits() + f.FracBits()
}

// fracBits returns the fractional bit count of format F.
func fracBits[F Format]() uint {
	var f F
	return f.FracBits()
}
