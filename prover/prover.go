// Package prover compiles the proposal input circuit and produces and checks
// Groth16 proofs of proposal inputs.
package prover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/circuits/proposeinput"
	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/proposal"
)

// CircuitName identifies the proposal input circuit keys in a KeyStore.
const CircuitName = "proposeinput"

// ErrProofInvalid is returned when a well formed public instance does not
// verify against its proof.
var ErrProofInvalid = errors.New("invalid proof")

func init() {
	logger.Set(log.Logger())
}

// Prover holds the compiled circuit and its keys. It is read-only once built
// and may be shared between goroutines.
type Prover struct {
	params *proposal.Params
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
	vk     groth16.VerifyingKey
}

// Compile compiles the proposal input circuit for the params provided.
func Compile(p *proposal.Params) (constraint.ConstraintSystem, error) {
	start := time.Now()
	ccs, err := frontend.Compile(circuits.ProposeInputCurve.ScalarField(), r1cs.NewBuilder, proposeinput.Placeholder(p))
	if err != nil {
		return nil, fmt.Errorf("compile proposal input circuit: %w", err)
	}
	log.Debugw("proposal input circuit compiled", "constraints", ccs.GetNbConstraints(), "took", time.Since(start).String())
	return ccs, nil
}

// Setup compiles the circuit and runs a Groth16 setup. The resulting keys are
// only suitable for tests and local deployments.
func Setup(p *proposal.Params) (*Prover, error) {
	if p == nil {
		p = proposal.DefaultParams()
	}
	ccs, err := Compile(p)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	log.Infow("proposal input keys generated", "took", time.Since(start).String())
	return New(p, ccs, pk, vk)
}

// New returns a Prover over already compiled artifacts.
func New(p *proposal.Params, ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) (*Prover, error) {
	if p == nil {
		p = proposal.DefaultParams()
	}
	if vk == nil {
		return nil, fmt.Errorf("missing verifying key")
	}
	if (ccs == nil) != (pk == nil) {
		return nil, fmt.Errorf("constraint system and proving key must be provided together")
	}
	return &Prover{params: p, ccs: ccs, pk: pk, vk: vk}, nil
}

// NewVerifier returns a Prover that can only verify bundles.
func NewVerifier(p *proposal.Params, vk groth16.VerifyingKey) (*Prover, error) {
	return New(p, nil, nil, vk)
}

// Params returns the params the circuit was compiled for.
func (pr *Prover) Params() *proposal.Params {
	return pr.params
}

// VerifyingKey returns the Groth16 verifying key.
func (pr *Prover) VerifyingKey() groth16.VerifyingKey {
	return pr.vk
}

// CanProve reports whether the prover holds a proving key.
func (pr *Prover) CanProve() bool {
	return pr.pk != nil
}

// Prove proves the public instance emitted by the composer. When known is
// not nil the recomputed roots are first checked against it, so a spent or
// unknown coin fails fast with proposal.ErrWitnessInconsistency. Any solver
// failure is reported with the same error and no partial proof is returned.
func (pr *Prover) Prove(ctx context.Context, c *proposal.Composer, known *proposal.KnownRoots) (*Bundle, error) {
	if !pr.CanProve() {
		return nil, fmt.Errorf("prover has no proving key")
	}
	if c.Stage() != proposal.StageInstanceEmitted {
		return nil, fmt.Errorf("%w: composer is %s", proposal.ErrInvalidStage, c.Stage())
	}
	if known != nil {
		if err := c.CheckRoots(*known); err != nil {
			return nil, err
		}
	}
	assignment, err := proposeinput.Assignment(c)
	if err != nil {
		return nil, err
	}
	witness, err := frontend.NewWitness(assignment, circuits.ProposeInputCurve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	proof, err := groth16.Prove(pr.ccs, pr.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", proposal.ErrWitnessInconsistency, err)
	}
	log.Debugw("proposal input proven", "took", time.Since(start).String())
	return &Bundle{Instance: c.Instance(), Proof: proof}, nil
}

// Verify checks the bundle. A malformed instance is reported with
// proposal.ErrInstanceFormat and a proof that does not verify with
// ErrProofInvalid.
func (pr *Prover) Verify(b *Bundle) error {
	if b == nil || b.Instance == nil || b.Proof == nil {
		return fmt.Errorf("%w: incomplete bundle", proposal.ErrInstanceFormat)
	}
	if err := b.Instance.Validate(pr.params); err != nil {
		return err
	}
	publicWitness, err := frontend.NewWitness(proposeinput.PublicAssignment(b.Instance),
		circuits.ProposeInputCurve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: %v", proposal.ErrInstanceFormat, err)
	}
	if err := groth16.Verify(b.Proof, pr.vk, publicWitness); err != nil {
		return fmt.Errorf("%w: %v", ErrProofInvalid, err)
	}
	return nil
}
