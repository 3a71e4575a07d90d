package fixedpoint

// Convert rebases x from format S to format D. Widening is exact and never
// fails. Narrowing floors away fractional bits below D's resolution and
// returns ErrOverflow when the remaining value exceeds D's width.
func Convert[S, D Format](x Number[S]) (Number[D], error) {
	sf, df := fracBits[S](), fracBits[D]()
	var out Number[D]
	switch {
	case df >= sf:
		if uint(x.bits.BitLen())+(df-sf) > 256 {
			return Number[D]{}, ErrOverflow
		}
		out.bits.Lsh(&x.bits, df-sf)
	default:
		out.bits.Rsh(&x.bits, sf-df)
	}
	if !fits[D](&out.bits) {
		return Number[D]{}, ErrOverflow
	}
	return out, nil
}
