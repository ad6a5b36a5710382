// Package proposal implements the native side of the proposal input
// gadget: the relations that bind a committed coin to a DAO proposal
// (coin commitment, nullifier, sparse non-membership, value and token
// commitments, coin-set membership and signing key), and the composer
// that turns a witness into the public instance checked by the verifier.
package proposal

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/vocdoni/dao-z-sandbox/config"
	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
	bjj "github.com/vocdoni/dao-z-sandbox/crypto/ecc/bjj_gnark"
	"github.com/vocdoni/dao-z-sandbox/crypto/hash/mimc"
)

// Hasher hashes a tuple of field elements into a field element. Field
// returns the modulus of that field.
type Hasher interface {
	Hash(inputs ...*big.Int) (*big.Int, error)
	Field() *big.Int
}

// Generators are the fixed curve points of a deployment. They are never
// modified once built.
type Generators struct {
	// NullifierBase is used to derive both the coin owner public key and
	// the proposal signing key.
	NullifierBase ecc.Point
	// ValueBaseShort multiplies the 64-bit value in value commitments.
	ValueBaseShort ecc.Point
	// RandomBase multiplies the blinding factor in value commitments.
	RandomBase ecc.Point
}

// Params groups everything the relations depend on. It is immutable and
// safe to share between goroutines.
type Params struct {
	Generators         Generators
	Hasher             Hasher
	CoinTreeDepth      int
	NullifierTreeDepth int

	// emptyNodes[i] is the root of an empty subtree of height i
	emptyNodes []*big.Int
}

// NewParams builds a Params value and precomputes the empty subtree roots
// needed by both trees.
func NewParams(gens Generators, hasher Hasher, coinTreeDepth, nullifierTreeDepth int) (*Params, error) {
	if gens.NullifierBase == nil || gens.ValueBaseShort == nil || gens.RandomBase == nil {
		return nil, fmt.Errorf("missing generators")
	}
	if hasher == nil {
		return nil, fmt.Errorf("missing hasher")
	}
	if coinTreeDepth <= 0 || coinTreeDepth > 64 {
		return nil, fmt.Errorf("invalid coin tree depth %d", coinTreeDepth)
	}
	if nullifierTreeDepth <= 0 || nullifierTreeDepth > hasher.Field().BitLen() {
		return nil, fmt.Errorf("invalid nullifier tree depth %d", nullifierTreeDepth)
	}
	levels := max(coinTreeDepth, nullifierTreeDepth)
	empty := make([]*big.Int, levels+1)
	empty[0] = big.NewInt(0)
	for i := 0; i < levels; i++ {
		h, err := hasher.Hash(empty[i], empty[i])
		if err != nil {
			return nil, fmt.Errorf("empty node %d: %w", i+1, err)
		}
		empty[i+1] = h
	}
	return &Params{
		Generators:         gens,
		Hasher:             hasher,
		CoinTreeDepth:      coinTreeDepth,
		NullifierTreeDepth: nullifierTreeDepth,
		emptyNodes:         empty,
	}, nil
}

// EmptyNode returns the root of an empty subtree of the given height.
// EmptyNode(0) is the empty leaf.
func (p *Params) EmptyNode(height int) *big.Int {
	return new(big.Int).Set(p.emptyNodes[height])
}

// Field returns the modulus of the field all the values live in.
func (p *Params) Field() *big.Int {
	return p.Hasher.Field()
}

// hash is a shortcut to the params hasher.
func (p *Params) hash(inputs ...*big.Int) (*big.Int, error) {
	return p.Hasher.Hash(inputs...)
}

// reduce returns a copy of v reduced into the field. Scalars are always
// reduced before a scalar multiplication, since the subgroup order of the
// curve differs from the field modulus and v and v+modulus would otherwise
// give different points.
func (p *Params) reduce(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, p.Field())
}

// DefaultGenerators derives the deployment generators on BabyJubJub with
// hash-to-curve over the domain tags in the config package.
func DefaultGenerators() (Generators, error) {
	var gens Generators
	var err error
	if gens.NullifierBase, err = bjj.HashToCurve([]byte(config.NullifierBaseDomain)); err != nil {
		return Generators{}, err
	}
	if gens.ValueBaseShort, err = bjj.HashToCurve([]byte(config.ValueBaseShortDomain)); err != nil {
		return Generators{}, err
	}
	if gens.RandomBase, err = bjj.HashToCurve([]byte(config.RandomBaseDomain)); err != nil {
		return Generators{}, err
	}
	return gens, nil
}

var defaultParams = sync.OnceValue(func() *Params {
	gens, err := DefaultGenerators()
	if err != nil {
		panic(fmt.Sprintf("cannot derive generators: %v", err))
	}
	p, err := NewParams(gens, mimc.Hasher{}, config.CoinTreeDepth, config.NullifierTreeDepth)
	if err != nil {
		panic(fmt.Sprintf("cannot build default params: %v", err))
	}
	return p
})

// DefaultParams returns the deployment parameters: BabyJubJub generators,
// MiMC over BN254 and the tree depths of the config package. The value is
// computed once and shared.
func DefaultParams() *Params {
	return defaultParams()
}
