package mimc

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
)

type hashCircuit struct {
	Inputs [3]frontend.Variable
	Digest frontend.Variable `gnark:",public"`
}

func (c *hashCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Inputs[:]...)
	api.AssertIsEqual(h.Sum(), c.Digest)
	return nil
}

func TestHashMatchesCircuit(t *testing.T) {
	c := qt.New(t)
	inputs := []*big.Int{big.NewInt(7), big.NewInt(0), new(big.Int).Lsh(big.NewInt(1), 200)}
	digest, err := Hash(inputs...)
	c.Assert(err, qt.IsNil)

	assignment := &hashCircuit{
		Inputs: [3]frontend.Variable{inputs[0], inputs[1], inputs[2]},
		Digest: digest,
	}
	c.Assert(test.IsSolved(&hashCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNil)

	assignment.Digest = new(big.Int).Add(digest, big.NewInt(1))
	c.Assert(test.IsSolved(&hashCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestHashReducesInputs(t *testing.T) {
	c := qt.New(t)
	modulus := Hasher{}.Field()
	a, err := Hash(big.NewInt(5))
	c.Assert(err, qt.IsNil)
	b, err := Hash(new(big.Int).Add(modulus, big.NewInt(5)))
	c.Assert(err, qt.IsNil)
	c.Assert(a.Cmp(b), qt.Equals, 0)
	c.Assert(a.Cmp(modulus), qt.Equals, -1)

	_, err = Hash(big.NewInt(1), nil)
	c.Assert(err, qt.IsNotNil)
}

func TestHashOrder(t *testing.T) {
	c := qt.New(t)
	ab, err := Hash(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	ba, err := Hash(big.NewInt(2), big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(ab.Cmp(ba), qt.Not(qt.Equals), 0)
}
