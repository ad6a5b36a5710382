package prover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"go.vocdoni.io/dvote/db"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/storage"
)

// KeyStore persists the compiled circuit and its keys in a database, so the
// setup only runs once per deployment.
type KeyStore struct {
	stg *storage.Storage
}

// NewKeyStore returns a KeyStore over the database provided.
func NewKeyStore(database db.Database) *KeyStore {
	return &KeyStore{stg: storage.New(database)}
}

// Storage returns the underlying storage, which can also hold bundles.
func (ks *KeyStore) Storage() *storage.Storage {
	return ks.stg
}

// Save stores the artifacts of the prover under name.
func (ks *KeyStore) Save(name string, pr *Prover) error {
	keys, err := pr.serialize()
	if err != nil {
		return err
	}
	if err := ks.stg.SetCircuitKeys(name, keys); err != nil {
		return err
	}
	log.Infow("circuit keys stored", "name", name)
	return nil
}

// Load restores the prover stored under name. It returns storage.ErrNotFound
// if there are no keys.
func (ks *KeyStore) Load(name string, p *proposal.Params) (*Prover, error) {
	keys, err := ks.stg.CircuitKeys(name)
	if err != nil {
		return nil, err
	}
	return decodeProver(p, keys.ConstraintSystem, keys.ProvingKey, keys.VerifyingKey)
}

// LoadOrSetup loads the prover stored under name, running the setup and
// storing its result if there is none.
func (ks *KeyStore) LoadOrSetup(name string, p *proposal.Params) (*Prover, error) {
	pr, err := ks.Load(name, p)
	if err == nil {
		return pr, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if pr, err = Setup(p); err != nil {
		return nil, err
	}
	if err := ks.Save(name, pr); err != nil {
		return nil, err
	}
	return pr, nil
}

// Close closes the underlying database.
func (ks *KeyStore) Close() {
	ks.stg.Close()
}

// Artifacts returns the hash identified artifacts of the prover, ready to be
// cached with Artifact.Store or published.
func (pr *Prover) Artifacts() (*circuits.CircuitArtifacts, error) {
	keys, err := pr.serialize()
	if err != nil {
		return nil, err
	}
	return &circuits.CircuitArtifacts{
		ConstraintSystem: circuits.NewArtifact(keys.ConstraintSystem),
		ProvingKey:       circuits.NewArtifact(keys.ProvingKey),
		VerifyingKey:     circuits.NewArtifact(keys.VerifyingKey),
	}, nil
}

// FromArtifacts loads the artifacts, from the local cache or their remote
// URL, and builds a Prover. Without constraint system and proving key the
// result can only verify.
func FromArtifacts(ctx context.Context, p *proposal.Params, ca *circuits.CircuitArtifacts) (*Prover, error) {
	if ca.VerifyingKey == nil {
		return nil, fmt.Errorf("missing verifying key artifact")
	}
	if err := ca.LoadAll(ctx); err != nil {
		return nil, err
	}
	var ccsData, pkData []byte
	if ca.ConstraintSystem != nil {
		ccsData = ca.ConstraintSystem.Content
	}
	if ca.ProvingKey != nil {
		pkData = ca.ProvingKey.Content
	}
	return decodeProver(p, ccsData, pkData, ca.VerifyingKey.Content)
}

// Export writes the constraint system, proving and verifying keys into dir.
func (pr *Prover) Export(dir string) error {
	if !pr.CanProve() {
		return fmt.Errorf("prover has no proving key")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := circuits.StoreConstraintSystem(pr.ccs, filepath.Join(dir, CircuitName+".ccs")); err != nil {
		return err
	}
	if err := circuits.StoreProvingKey(pr.pk, filepath.Join(dir, CircuitName+".pk")); err != nil {
		return err
	}
	return circuits.StoreVerificationKey(pr.vk, filepath.Join(dir, CircuitName+".vk"))
}

func (pr *Prover) serialize() (*storage.CircuitKeys, error) {
	if !pr.CanProve() {
		return nil, fmt.Errorf("prover has no proving key")
	}
	keys := &storage.CircuitKeys{}
	var err error
	if keys.ConstraintSystem, err = writeBytes(pr.ccs); err != nil {
		return nil, fmt.Errorf("write constraint system: %w", err)
	}
	if keys.ProvingKey, err = writeBytes(pr.pk); err != nil {
		return nil, fmt.Errorf("write proving key: %w", err)
	}
	if keys.VerifyingKey, err = writeBytes(pr.vk); err != nil {
		return nil, fmt.Errorf("write verifying key: %w", err)
	}
	return keys, nil
}

func writeBytes(w io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeProver(p *proposal.Params, ccsData, pkData, vkData []byte) (*Prover, error) {
	curve := circuits.ProposeInputCurve
	vk := groth16.NewVerifyingKey(curve)
	if _, err := vk.ReadFrom(bytes.NewReader(vkData)); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}
	if len(ccsData) == 0 || len(pkData) == 0 {
		return NewVerifier(p, vk)
	}
	var ccs constraint.ConstraintSystem = groth16.NewCS(curve)
	if _, err := ccs.ReadFrom(bytes.NewReader(ccsData)); err != nil {
		return nil, fmt.Errorf("failed to read constraint system: %w", err)
	}
	pk := groth16.NewProvingKey(curve)
	if _, err := pk.ReadFrom(bytes.NewReader(pkData)); err != nil {
		return nil, fmt.Errorf("failed to read proving key: %w", err)
	}
	return New(p, ccs, pk, vk)
}
