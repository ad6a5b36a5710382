package prover

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/fxamacker/cbor/v2"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/circuits/testutil"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/storage"
	"github.com/vocdoni/dao-z-sandbox/types"
	"github.com/vocdoni/dao-z-sandbox/util"
)

func skipCircuitTests(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
}

func TestNew(t *testing.T) {
	c := qt.New(t)
	_, err := New(nil, nil, nil, nil)
	c.Assert(err, qt.IsNotNil)
	_, err = New(nil, groth16.NewCS(ecc.BN254), nil, groth16.NewVerifyingKey(ecc.BN254))
	c.Assert(err, qt.IsNotNil)

	verifier, err := NewVerifier(nil, groth16.NewVerifyingKey(ecc.BN254))
	c.Assert(err, qt.IsNil)
	c.Assert(verifier.CanProve(), qt.IsFalse)
	c.Assert(verifier.Params(), qt.Equals, proposal.DefaultParams())

	inputs, err := testutil.GenerateProposalInputs(nil, 10, big.NewInt(1), 0)
	c.Assert(err, qt.IsNil)
	_, err = verifier.Prove(context.Background(), inputs.Composer, nil)
	c.Assert(err, qt.IsNotNil)
	c.Assert(verifier.Export(t.TempDir()), qt.IsNotNil)
}

func TestVerifyMalformedInstance(t *testing.T) {
	c := qt.New(t)
	verifier, err := NewVerifier(nil, groth16.NewVerifyingKey(ecc.BN254))
	c.Assert(err, qt.IsNil)

	c.Assert(verifier.Verify(nil), qt.ErrorIs, proposal.ErrInstanceFormat)
	c.Assert(verifier.Verify(&Bundle{}), qt.ErrorIs, proposal.ErrInstanceFormat)

	inputs, err := testutil.GenerateProposalInputs(nil, 10, big.NewInt(1), 0)
	c.Assert(err, qt.IsNil)
	pi := *inputs.Composer.Instance()
	// (1, 1) is not on the curve
	pi.ValueCommitX, pi.ValueCommitY = big.NewInt(1), big.NewInt(1)
	err = verifier.Verify(&Bundle{Instance: &pi, Proof: groth16.NewProof(ecc.BN254)})
	c.Assert(err, qt.ErrorIs, proposal.ErrInstanceFormat)
	c.Assert(errors.Is(err, ErrProofInvalid), qt.IsFalse)
}

func TestUnmarshalBundleMalformed(t *testing.T) {
	c := qt.New(t)
	p := proposal.DefaultParams()
	_, err := UnmarshalBundle(p, []byte{0xff})
	c.Assert(err, qt.IsNotNil)

	// six elements instead of seven
	rec := &storage.Proposal{Proof: []byte{1}}
	for i := 0; i < 6; i++ {
		rec.Instance = append(rec.Instance, types.NewInt(i))
	}
	data, err := cbor.Marshal(rec)
	c.Assert(err, qt.IsNil)
	_, err = UnmarshalBundle(p, data)
	c.Assert(err, qt.ErrorIs, proposal.ErrInstanceFormat)

	_, err = (&Bundle{}).Marshal()
	c.Assert(err, qt.IsNotNil)
	_, err = (&Bundle{}).Key()
	c.Assert(err, qt.IsNotNil)
}

func TestKeyStoreNotFound(t *testing.T) {
	c := qt.New(t)
	ks := NewKeyStore(metadb.NewTest(t))
	_, err := ks.Load(CircuitName, nil)
	c.Assert(err, qt.ErrorIs, storage.ErrNotFound)
}

func TestProveAndVerify(t *testing.T) {
	skipCircuitTests(t)
	c := qt.New(t)
	p := proposal.DefaultParams()
	ks := NewKeyStore(memdb.New())
	pr, err := ks.LoadOrSetup(CircuitName, p)
	c.Assert(err, qt.IsNil)

	inputs, err := testutil.GenerateProposalInputs(p, 5000, big.NewInt(3), 6)
	c.Assert(err, qt.IsNil)
	bundle, err := pr.Prove(context.Background(), inputs.Composer, &inputs.Roots)
	c.Assert(err, qt.IsNil)
	c.Assert(pr.Verify(bundle), qt.IsNil)

	// CBOR round trip
	data, err := bundle.Marshal()
	c.Assert(err, qt.IsNil)
	decoded, err := UnmarshalBundle(p, data)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Instance.Equal(bundle.Instance), qt.IsTrue)
	c.Assert(pr.Verify(decoded), qt.IsNil)

	// stored bundles
	key, err := bundle.Store(ks.Storage())
	c.Assert(err, qt.IsNil)
	stored, err := LoadBundle(p, ks.Storage(), key)
	c.Assert(err, qt.IsNil)
	c.Assert(pr.Verify(stored), qt.IsNil)

	// another public instance does not verify
	tampered := *bundle.Instance
	tampered.CoinRoot = util.RandomFieldElement()
	err = pr.Verify(&Bundle{Instance: &tampered, Proof: bundle.Proof})
	c.Assert(err, qt.ErrorIs, ErrProofInvalid)

	// keys reloaded from the store verify the same proof
	reloaded, err := ks.Load(CircuitName, p)
	c.Assert(err, qt.IsNil)
	c.Assert(reloaded.Verify(bundle), qt.IsNil)

	// solidity layout and verifier
	sp, err := bundle.SolidityProof()
	c.Assert(err, qt.IsNil)
	c.Assert(sp.Ar[0], qt.IsNotNil)
	var sol bytes.Buffer
	c.Assert(pr.ExportSolidity(&sol), qt.IsNil)
	c.Assert(sol.Len() > 0, qt.IsTrue)

	// exported files
	dir := t.TempDir()
	c.Assert(pr.Export(dir), qt.IsNil)
	c.Assert(bundle.Export(dir), qt.IsNil)
	proofData, err := os.ReadFile(filepath.Join(dir, CircuitName+".proof"))
	c.Assert(err, qt.IsNil)
	proof := groth16.NewProof(ecc.BN254)
	_, err = proof.ReadFrom(bytes.NewReader(proofData))
	c.Assert(err, qt.IsNil)
	c.Assert(pr.Verify(&Bundle{Instance: bundle.Instance, Proof: proof}), qt.IsNil)
}

func TestProveSpentCoin(t *testing.T) {
	skipCircuitTests(t)
	c := qt.New(t)
	p := proposal.DefaultParams()
	pr, err := Setup(p)
	c.Assert(err, qt.IsNil)

	inputs, err := testutil.GenerateProposalInputs(p, 1, big.NewInt(3), 2)
	c.Assert(err, qt.IsNil)
	c.Assert(inputs.State.Spend(inputs.Composer.Relations().Nullifier), qt.IsNil)
	roots, err := inputs.State.Roots()
	c.Assert(err, qt.IsNil)
	_, err = pr.Prove(context.Background(), inputs.Composer, &roots)
	c.Assert(err, qt.ErrorIs, proposal.ErrWitnessInconsistency)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pr.Prove(ctx, inputs.Composer, nil)
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

func TestArtifacts(t *testing.T) {
	skipCircuitTests(t)
	c := qt.New(t)
	p := proposal.DefaultParams()
	pr, err := Setup(p)
	c.Assert(err, qt.IsNil)
	ca, err := pr.Artifacts()
	c.Assert(err, qt.IsNil)

	// only the verifying key is needed to verify
	verifier, err := FromArtifacts(context.Background(), p, &circuits.CircuitArtifacts{VerifyingKey: ca.VerifyingKey})
	c.Assert(err, qt.IsNil)
	c.Assert(verifier.CanProve(), qt.IsFalse)

	inputs, err := testutil.GenerateProposalInputs(p, 42, big.NewInt(9), 1)
	c.Assert(err, qt.IsNil)
	bundle, err := pr.Prove(context.Background(), inputs.Composer, &inputs.Roots)
	c.Assert(err, qt.IsNil)
	c.Assert(verifier.Verify(bundle), qt.IsNil)
}
