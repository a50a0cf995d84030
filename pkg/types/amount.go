package types

import "math/big"

// Amount is a checked, non-negative 128-bit unsigned quantity. All ledger
// arithmetic goes through CheckedAdd/CheckedSub/CheckedMulDiv so that an
// overflow or underflow surfaces as ErrArithmeticError instead of wrapping.
type Amount struct {
	v *big.Int
}

var (
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	zero    = big.NewInt(0)
)

// MaxAmount is the reserved sentinel value (2^128 - 1). Operations reject
// it outright per spec to catch serialization errors masquerading as a
// legitimate transfer amount.
func MaxAmount() Amount { return Amount{v: new(big.Int).Set(maxU128)} }

// ZeroAmount returns the additive identity.
func ZeroAmount() Amount { return Amount{v: new(big.Int)} }

// NewAmount builds an Amount from a uint64, which always fits in 128 bits.
func NewAmount(v uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(v)}
}

// AmountFromBigInt wraps an existing big.Int, validating its range.
func AmountFromBigInt(v *big.Int) (Amount, error) {
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return Amount{}, NewError(ErrArithmeticError, "amount out of u128 range")
	}
	return Amount{v: new(big.Int).Set(v)}, nil
}

// IsMaxSentinel reports whether a is the reserved u128::MAX sentinel.
func (a Amount) IsMaxSentinel() bool { return a.BigInt().Cmp(maxU128) == 0 }

// BigInt returns the underlying value, defaulting to zero for the
// unexported zero-value Amount so callers never need a nil check.
func (a Amount) BigInt() *big.Int {
	if a.v == nil {
		return zero
	}
	return a.v
}

func (a Amount) String() string { return a.BigInt().String() }

// Cmp compares two amounts the way big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int { return a.BigInt().Cmp(b.BigInt()) }

func (a Amount) IsZero() bool { return a.BigInt().Sign() == 0 }

func checkRange(v *big.Int) (Amount, error) {
	if v.Sign() < 0 {
		return Amount{}, NewError(ErrArithmeticError, "result is negative")
	}
	if v.Cmp(maxU128) > 0 {
		return Amount{}, NewError(ErrArithmeticError, "result overflows u128")
	}
	return Amount{v: v}, nil
}

// CheckedAdd returns a+b, failing with ErrArithmeticError on overflow past
// the u128 ceiling.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	return checkRange(new(big.Int).Add(a.BigInt(), b.BigInt()))
}

// CheckedSub returns a-b, failing with ErrArithmeticError if the result
// would be negative.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	return checkRange(new(big.Int).Sub(a.BigInt(), b.BigInt()))
}

// CheckedMulDiv computes floor(a * num / den) with range checking,
// used by the fee split (a * 10 / 100 and a * 70 / 100).
func (a Amount) CheckedMulDiv(num, den uint64) (Amount, error) {
	r := new(big.Int).Mul(a.BigInt(), new(big.Int).SetUint64(num))
	r.Div(r, new(big.Int).SetUint64(den))
	return checkRange(r)
}

// MarshalJSON renders the amount as a decimal string so it round-trips
// exactly through JSON regardless of the 128-bit magnitude.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.BigInt().String() + `"`), nil
}

// UnmarshalJSON parses a decimal string (or bare JSON number for small
// test fixtures) back into an Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return NewError(ErrInvalidInput, "malformed amount")
	}
	parsed, err := AmountFromBigInt(v)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
