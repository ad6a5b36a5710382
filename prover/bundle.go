package prover

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/circuits/proposeinput"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/storage"
	"github.com/vocdoni/dao-z-sandbox/types"
)

// Bundle is a proven proposal input, the public instance together with the
// Groth16 proof over it. It is what the transaction builder attaches to a
// DAO propose call.
type Bundle struct {
	Instance *proposal.PublicInstance
	Proof    groth16.Proof
}

// Record returns the storage representation of the bundle.
func (b *Bundle) Record() (*storage.Proposal, error) {
	if b.Instance == nil || b.Proof == nil {
		return nil, fmt.Errorf("incomplete bundle")
	}
	var buf bytes.Buffer
	if _, err := b.Proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write proof: %w", err)
	}
	return &storage.Proposal{
		Instance: types.BigIntSlice(b.Instance.Elements()),
		Proof:    buf.Bytes(),
	}, nil
}

// BundleFromRecord decodes a stored bundle. The instance is checked to be
// well formed for the params provided.
func BundleFromRecord(p *proposal.Params, rec *storage.Proposal) (*Bundle, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", proposal.ErrInstanceFormat)
	}
	pi, err := proposal.PublicInstanceFromElements(p, types.MathBigIntSlice(rec.Instance))
	if err != nil {
		return nil, err
	}
	proof := groth16.NewProof(circuits.ProposeInputCurve)
	if _, err := proof.ReadFrom(bytes.NewReader(rec.Proof)); err != nil {
		return nil, fmt.Errorf("read proof: %w", err)
	}
	return &Bundle{Instance: pi, Proof: proof}, nil
}

// Marshal encodes the bundle with the CBOR core deterministic encoding.
func (b *Bundle) Marshal() ([]byte, error) {
	rec, err := b.Record()
	if err != nil {
		return nil, err
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return em.Marshal(rec)
}

// UnmarshalBundle decodes a bundle encoded with Marshal.
func UnmarshalBundle(p *proposal.Params, data []byte) (*Bundle, error) {
	rec := &storage.Proposal{}
	if err := cbor.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return BundleFromRecord(p, rec)
}

// Key returns the key the bundle is stored under, the little-endian digest
// of its public instance.
func (b *Bundle) Key() ([]byte, error) {
	if b.Instance == nil {
		return nil, fmt.Errorf("incomplete bundle")
	}
	digest, err := b.Instance.Digest()
	if err != nil {
		return nil, err
	}
	return arbo.BigIntToBytes(proposal.SerializedFieldSize, digest), nil
}

// Store saves the bundle and returns its key.
func (b *Bundle) Store(stg *storage.Storage) ([]byte, error) {
	key, err := b.Key()
	if err != nil {
		return nil, err
	}
	rec, err := b.Record()
	if err != nil {
		return nil, err
	}
	if err := stg.SetProposal(key, rec); err != nil {
		return nil, err
	}
	return key, nil
}

// LoadBundle reads the bundle stored under key.
func LoadBundle(p *proposal.Params, stg *storage.Storage, key []byte) (*Bundle, error) {
	rec, err := stg.Proposal(key)
	if err != nil {
		return nil, err
	}
	return BundleFromRecord(p, rec)
}

// Export writes the proof and the public witness into dir, in the gnark
// binary encodings an external verifier reads.
func (b *Bundle) Export(dir string) error {
	if b.Instance == nil || b.Proof == nil {
		return fmt.Errorf("incomplete bundle")
	}
	publicWitness, err := frontend.NewWitness(proposeinput.PublicAssignment(b.Instance),
		circuits.ProposeInputCurve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: %v", proposal.ErrInstanceFormat, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := circuits.StoreProof(b.Proof, filepath.Join(dir, CircuitName+".proof")); err != nil {
		return err
	}
	return circuits.StoreWitness(publicWitness, filepath.Join(dir, CircuitName+".public"))
}
