package storage

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/vocdoni/dao-z-sandbox/types"
)

func TestCircuitKeys(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	_, err := stg.CircuitKeys("proposeinput")
	c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)

	keys := &CircuitKeys{
		ConstraintSystem: []byte("ccs"),
		ProvingKey:       []byte("pk"),
		VerifyingKey:     []byte("vk"),
	}
	c.Assert(stg.SetCircuitKeys("proposeinput", keys), qt.IsNil)
	got, err := stg.CircuitKeys("proposeinput")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, keys)

	c.Assert(stg.SetCircuitKeys("empty", &CircuitKeys{ProvingKey: []byte("pk")}), qt.IsNotNil)
}

func TestProposals(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	keys, err := stg.ListProposals()
	c.Assert(err, qt.IsNil)
	c.Assert(keys, qt.HasLen, 0)

	p := &Proposal{
		Instance: []*types.BigInt{types.NewInt(1), types.NewInt(2), types.NewInt(3)},
		Proof:    []byte{0xca, 0xfe},
	}
	c.Assert(stg.SetProposal([]byte("a"), p), qt.IsNil)
	c.Assert(stg.SetProposal([]byte("b"), p), qt.IsNil)
	c.Assert(stg.SetProposal(nil, p), qt.IsNotNil)
	c.Assert(stg.SetProposal([]byte("c"), &Proposal{}), qt.IsNotNil)

	got, err := stg.Proposal([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(got.Proof, qt.DeepEquals, p.Proof)
	c.Assert(got.Instance, qt.HasLen, len(p.Instance))
	for i := range p.Instance {
		c.Assert(got.Instance[i].Equal(p.Instance[i]), qt.IsTrue)
	}

	keys, err = stg.ListProposals()
	c.Assert(err, qt.IsNil)
	c.Assert(keys, qt.HasLen, 2)

	c.Assert(stg.DeleteProposal([]byte("a")), qt.IsNil)
	c.Assert(errors.Is(stg.DeleteProposal([]byte("a")), ErrNotFound), qt.IsTrue)
	_, err = stg.Proposal([]byte("a"))
	c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)
}
