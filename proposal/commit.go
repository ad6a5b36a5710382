package proposal

import (
	"math/big"

	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
)

// CommitValue returns the Pedersen commitment
// value*ValueBaseShort + blind*RandomBase, with blind reduced mod Fr.
func CommitValue(p *Params, value uint64, blind *big.Int) ecc.Point {
	gens := p.Generators
	v := gens.ValueBaseShort.New()
	v.ScalarMult(gens.ValueBaseShort, new(big.Int).SetUint64(value))
	r := gens.RandomBase.New()
	r.ScalarMult(gens.RandomBase, p.reduce(blind))
	commit := gens.ValueBaseShort.New()
	commit.Add(v, r)
	return commit
}

// CommitToken returns H(token, blind).
func CommitToken(p *Params, token, blind *big.Int) (*big.Int, error) {
	return p.hash(token, blind)
}

// DeriveSigningKey returns signatureSecret*NullifierBase. The signature
// secret is not required to be the coin secret.
func DeriveSigningKey(p *Params, signatureSecret *big.Int) ecc.Point {
	return DerivePublicKey(p, signatureSecret)
}

// SumValueCommits adds the value commitments provided. Because of the
// homomorphic property the result commits to the sum of the values under
// the blind returned by SumValueBlinds.
func SumValueCommits(p *Params, commits ...ecc.Point) ecc.Point {
	sum := p.Generators.ValueBaseShort.New()
	for _, c := range commits {
		sum.Add(sum, c)
	}
	return sum
}

// SumValueBlinds returns the blind that opens the sum of the value
// commitments made with blinds. Each blind is reduced mod Fr as CommitValue
// does, and the sum is taken mod the order of the curve subgroup.
func SumValueBlinds(p *Params, blinds ...*big.Int) *big.Int {
	sum := big.NewInt(0)
	for _, b := range blinds {
		sum.Add(sum, p.reduce(b))
	}
	return sum.Mod(sum, p.Generators.RandomBase.Order())
}
