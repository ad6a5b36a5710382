package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals JSON and CBOR to a decimal
// string.
type BigInt big.Int

// NewInt returns a BigInt from the int provided.
func NewInt(x int) *BigInt {
	return (*BigInt)(big.NewInt(int64(x)))
}

// NewBigInt wraps the big.Int provided, nil stays nil.
func NewBigInt(x *big.Int) *BigInt {
	return (*BigInt)(x)
}

// MarshalText returns the decimal string representation of the big number.
func (i *BigInt) MarshalText() ([]byte, error) {
	return i.MathBigInt().MarshalText()
}

// UnmarshalText parses the text representation of a big number.
func (i *BigInt) UnmarshalText(data []byte) error {
	if i == nil {
		return fmt.Errorf("cannot unmarshal into nil BigInt")
	}
	return i.MathBigInt().UnmarshalText(data)
}

// MarshalCBOR encodes the number as a CBOR text string.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.String())
}

// UnmarshalCBOR decodes a CBOR text string into the number.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	if _, ok := i.MathBigInt().SetString(s, 10); !ok {
		return fmt.Errorf("invalid big number %q", s)
	}
	return nil
}

// String returns the decimal representation of the number.
func (i *BigInt) String() string {
	return i.MathBigInt().String()
}

// MathBigInt converts the BigInt to a *big.Int sharing its memory.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// Equal reports whether both numbers hold the same value.
func (i *BigInt) Equal(j *BigInt) bool {
	return i.MathBigInt().Cmp(j.MathBigInt()) == 0
}

// BigIntSlice converts a slice of *big.Int into a slice of *BigInt.
func BigIntSlice(in []*big.Int) []*BigInt {
	out := make([]*BigInt, len(in))
	for i, v := range in {
		out[i] = (*BigInt)(v)
	}
	return out
}

// MathBigIntSlice converts a slice of *BigInt into a slice of *big.Int.
func MathBigIntSlice(in []*BigInt) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, v := range in {
		out[i] = v.MathBigInt()
	}
	return out
}
