package fixedpoint

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUint256FromString is a helper to build a uint256.Int from a decimal
// string, needed for values beyond uint64.
func newUint256FromString(s string) *uint256.Int {
	n, err := uint256.FromDecimal(s)
	if err != nil {
		panic("failed to parse uint256 from string: " + s)
	}
	return n
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedBits *uint256.Int
		expectError  bool
		expectedErr  error
	}{
		{
			name:         "Integer",
			input:        "3",
			expectedBits: newUint256FromString("55340232221128654848"), // 3 << 64
		},
		{
			name:         "Exact Binary Fraction",
			input:        "0.5",
			expectedBits: newUint256FromString("9223372036854775808"), // 1 << 63
		},
		{
			name:         "Mixed",
			input:        "2.5",
			expectedBits: newUint256FromString("46116860184273879040"), // 5 << 63
		},
		{
			name:         "Rounds Half Up",
			input:        "0.1", // (1 << 64)/10 has remainder 6/10, rounds up
			expectedBits: newUint256FromString("1844674407370955162"),
		},
		{
			name:         "Log2 E Constant",
			input:        "1.442695",
			expectedBits: newUint256FromString("26613025441420401569"),
		},
		{
			name:         "Largest Integer",
			input:        "18446744073709551615",
			expectedBits: newUint256FromString("340282366920938463444927863358058659840"),
		},
		{
			name:        "Integer Out Of Range",
			input:       "18446744073709551616",
			expectError: true,
			expectedErr: ErrOverflow,
		},
		{
			name:        "Empty String",
			input:       "",
			expectError: true,
		},
		{
			name:        "Negative Rejected",
			input:       "-1",
			expectError: true,
		},
		{
			name:        "Garbage Rejected",
			input:       "1.2.3",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse[UQ64x64](tc.input)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedErr != nil {
					assert.ErrorIs(t, err, tc.expectedErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expectedBits.Cmp(got.Bits()), "Expected bits %s, but got %s", tc.expectedBits.String(), got.Bits().String())
		})
	}
}

// A fraction equal to exactly half of the narrow format's last bit must
// round up to one raw unit, not truncate to zero.
func TestParse_TieRoundsUpInNarrowFormat(t *testing.T) {
	got, err := Parse[UQ32x32]("0.000000000116415321826934814453125") // 2^-33
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Bits().Uint64())
}

func TestFromInt(t *testing.T) {
	testCases := []struct {
		name         string
		input        uint64
		expectedBits *uint256.Int
		expectError  bool
	}{
		{
			name:         "Zero",
			input:        0,
			expectedBits: uint256.NewInt(0),
		},
		{
			name:         "Max Integer Part",
			input:        ^uint64(0),
			expectedBits: newUint256FromString("340282366920938463444927863358058659840"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromInt[UQ64x64](tc.input)
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expectedBits.Cmp(got.Bits()))
		})
	}

	t.Run("Narrow Format Overflow", func(t *testing.T) {
		_, err := FromInt[UQ32x32](1 << 32)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOverflow)

		got, err := FromInt[UQ32x32](1<<32 - 1)
		require.NoError(t, err)
		assert.Equal(t, "4294967295", got.String())
	})
}

func TestFromBits(t *testing.T) {
	raw := newUint256FromString("340282366920938463463374607431768211455") // 2^128 - 1
	n, err := FromBits[UQ64x64](raw)
	require.NoError(t, err)
	assert.Zero(t, raw.Cmp(n.Bits()))

	wide := new(uint256.Int).AddUint64(raw, 1) // 2^128
	_, err = FromBits[UQ64x64](wide)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromBits[UQ64x64](nil)
	assert.ErrorIs(t, err, ErrOverflow)

	// the source integer must not be retained
	n2, err := FromBits[UQ64x64](uint256.NewInt(7))
	require.NoError(t, err)
	before := n2.Bits()
	before.SetUint64(99)
	assert.Equal(t, uint64(7), n2.Bits().Uint64())
}

func TestFromRatio(t *testing.T) {
	maxBalance := newUint256FromString("340282366920938463463374607431768211455")

	testCases := []struct {
		name         string
		num          *uint256.Int
		den          *uint256.Int
		expectedBits *uint256.Int
		expectError  bool
		expectedErr  error
	}{
		{
			name:         "Floors One Third",
			num:          uint256.NewInt(1),
			den:          uint256.NewInt(3),
			expectedBits: newUint256FromString("6148914691236517205"),
		},
		{
			name:         "Exact Three Halves",
			num:          uint256.NewInt(3),
			den:          uint256.NewInt(2),
			expectedBits: newUint256FromString("27670116110564327424"),
		},
		{
			name: "Sums Of Max Balances",
			// (maxBalance + maxBalance) / (4 * maxBalance) = 0.5 exactly
			num:          new(uint256.Int).Add(maxBalance, maxBalance),
			den:          new(uint256.Int).Mul(maxBalance, uint256.NewInt(4)),
			expectedBits: newUint256FromString("9223372036854775808"),
		},
		{
			name:        "Quotient Out Of Range",
			num:         maxBalance,
			den:         uint256.NewInt(1),
			expectError: true,
			expectedErr: ErrOverflow,
		},
		{
			name:        "Zero Denominator",
			num:         uint256.NewInt(1),
			den:         uint256.NewInt(0),
			expectError: true,
			expectedErr: ErrDivisionByZero,
		},
		{
			name:        "Nil Numerator",
			num:         nil,
			den:         uint256.NewInt(1),
			expectError: true,
			expectedErr: ErrOverflow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromRatio[UQ64x64](tc.num, tc.den)

			if tc.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expectedBits.Cmp(got.Bits()), "Expected bits %s, but got %s", tc.expectedBits.String(), got.Bits().String())
		})
	}
}

func TestAddSub(t *testing.T) {
	half := mustParse[UQ64x64](t, "0.5")
	quarter := mustParse[UQ64x64](t, "0.25")

	sum, err := half.Add(quarter)
	require.NoError(t, err)
	assert.Equal(t, "0.75", sum.String())

	diff, err := sum.Sub(quarter)
	require.NoError(t, err)
	assert.Zero(t, half.Cmp(diff))

	_, err = quarter.Sub(half)
	assert.ErrorIs(t, err, ErrOverflow, "subtraction below zero must not wrap")

	nearMax, err := FromInt[UQ64x64](^uint64(0))
	require.NoError(t, err)
	_, err = nearMax.Add(One[UQ64x64]())
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMul(t *testing.T) {
	testCases := []struct {
		name         string
		x            string
		y            string
		expectedBits *uint256.Int
		expectError  bool
	}{
		{
			name:         "Exact Product",
			x:            "2.5",
			y:            "2",
			expectedBits: newUint256FromString("92233720368547758080"), // 5 << 64
		},
		{
			name: "Product Floors",
			// 0.1 parses to 1844674407370955162 raw; the raw product's low
			// 64 bits are discarded, not rounded
			x:            "0.1",
			y:            "0.1",
			expectedBits: newUint256FromString("184467440737095516"),
		},
		{
			name:        "Overflow",
			x:           "4294967296", // 2^32, squared needs 65 integer bits
			y:           "4294967296",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x := mustParse[UQ64x64](t, tc.x)
			y := mustParse[UQ64x64](t, tc.y)

			got, err := x.Mul(y)
			if tc.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrOverflow)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expectedBits.Cmp(got.Bits()), "Expected bits %s, but got %s", tc.expectedBits.String(), got.Bits().String())
		})
	}
}

func TestDiv(t *testing.T) {
	one := One[UQ64x64]()
	three, err := FromInt[UQ64x64](3)
	require.NoError(t, err)

	q, err := one.Div(three)
	require.NoError(t, err)
	assert.Equal(t, "6148914691236517205", q.Bits().String(), "quotient must floor")

	_, err = one.Div(Zero[UQ64x64]())
	assert.ErrorIs(t, err, ErrDivisionByZero)

	// max/0.5 doubles the value past the format width
	maxVal, err := FromBits[UQ64x64](newUint256FromString("340282366920938463463374607431768211455"))
	require.NoError(t, err)
	_, err = maxVal.Div(mustParse[UQ64x64](t, "0.5"))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestHalveRounded(t *testing.T) {
	odd, err := FromBits[UQ64x64](uint256.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), odd.HalveRounded().Bits().Uint64(), "odd raw value rounds up")

	even, err := FromBits[UQ64x64](uint256.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), even.HalveRounded().Bits().Uint64())

	three, err := FromInt[UQ64x64](3)
	require.NoError(t, err)
	assert.Equal(t, "1.5", three.HalveRounded().String())
}

func TestInspection(t *testing.T) {
	v := mustParse[UQ64x64](t, "2.5")

	assert.False(t, v.IsZero())
	assert.True(t, Zero[UQ64x64]().IsZero())
	assert.Equal(t, uint64(2), v.Floor().Uint64())
	assert.Equal(t, 1, v.Cmp(One[UQ64x64]()))
	assert.Equal(t, -1, One[UQ64x64]().Cmp(v))
	assert.Equal(t, "2.5", v.Decimal().String())

	// Bits hands out a copy
	b := v.Bits()
	b.Clear()
	assert.Equal(t, "2.5", v.String())
}

func mustParse[F Format](t *testing.T, s string) Number[F] {
	t.Helper()
	n, err := Parse[F](s)
	require.NoError(t, err)
	return n
}

var mulSink Number[UQ64x64]

func BenchmarkMul(b *testing.B) {
	x, _ := Parse[UQ64x64]("1.442695")
	y, _ := Parse[UQ64x64]("2.718281828459045235360287471352662497757")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mulSink, _ = x.Mul(y)
	}
}
