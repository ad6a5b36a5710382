// Package mimc provides the native MiMC hash over the BN254 scalar field.
// It absorbs field elements in the same way as the gnark std/hash/mimc
// gadget, so native and in-circuit digests are equal.
package mimc

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Hash returns the MiMC digest of the inputs, each one reduced into the
// scalar field and absorbed in order.
func Hash(inputs ...*big.Int) (*big.Int, error) {
	h := gmimc.NewMiMC()
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("mimc: nil input at position %d", i)
		}
		var e fr.Element
		e.SetBigInt(in)
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, fmt.Errorf("mimc: %w", err)
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// Hasher is the MiMC implementation of the hasher used by the proposal
// relations.
type Hasher struct{}

// Hash implements the hasher interface using the Hash function.
func (Hasher) Hash(inputs ...*big.Int) (*big.Int, error) {
	return Hash(inputs...)
}

// Field returns the modulus of the field the digests belong to.
func (Hasher) Field() *big.Int {
	return fr.Modulus()
}
