package proposal

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/util"
)

// Stage is the state of a Composer.
type Stage uint8

const (
	StageUnassigned Stage = iota
	StageWitnessAssigned
	StageRelationsEvaluated
	StageInstanceEmitted
)

func (s Stage) String() string {
	switch s {
	case StageUnassigned:
		return "unassigned"
	case StageWitnessAssigned:
		return "witness-assigned"
	case StageRelationsEvaluated:
		return "relations-evaluated"
	case StageInstanceEmitted:
		return "instance-emitted"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Relations holds every value recomputed from the witness.
type Relations struct {
	OwnerPublicKey ecc.Point
	Coin           *big.Int
	Nullifier      *big.Int
	NullifierRoot  *big.Int
	ValueCommit    ecc.Point
	TokenCommit    *big.Int
	CoinRoot       *big.Int
	SigningKey     ecc.Point
}

// KnownRoots are the public roots of the nullifier set and the coin set the
// witness must agree with.
type KnownRoots struct {
	NullifierRoot *big.Int
	CoinRoot      *big.Int
}

// Composer assigns a witness, evaluates the relations and emits the public
// instance, in that order. It is single use and not safe for concurrent
// use.
type Composer struct {
	params    *Params
	stage     Stage
	witness   *Witness
	relations *Relations
	instance  *PublicInstance
}

// NewComposer returns a Composer in the unassigned stage.
func NewComposer(p *Params) *Composer {
	return &Composer{params: p}
}

// Compose runs the three transitions of a new Composer over w.
func Compose(p *Params, w *Witness) (*Composer, error) {
	c := NewComposer(p)
	if err := c.Assign(w); err != nil {
		return nil, err
	}
	if err := c.Evaluate(); err != nil {
		return nil, err
	}
	if _, err := c.Emit(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Composer) expect(s Stage) error {
	if c.stage != s {
		return fmt.Errorf("%w: composer is %s, expected %s", ErrInvalidStage, c.stage, s)
	}
	return nil
}

// Assign binds the private inputs. Paths with the wrong length are
// rejected with ErrMalformedPath.
func (c *Composer) Assign(w *Witness) error {
	if err := c.expect(StageUnassigned); err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: nil witness", ErrMissingInput)
	}
	nw, err := w.normalized(c.params)
	if err != nil {
		return err
	}
	c.witness = nw
	c.stage = StageWitnessAssigned
	return nil
}

// Evaluate computes every relation in dependency order: coin, nullifier and
// nullifier root, value commitment, token commitment, coin root and signing
// key.
func (c *Composer) Evaluate() error {
	if err := c.expect(StageWitnessAssigned); err != nil {
		return err
	}
	p, w := c.params, c.witness
	coin := w.Coin(p)
	coinHash, err := coin.Commitment(p)
	if err != nil {
		return fmt.Errorf("coin commitment: %w", err)
	}
	nullifier, err := DeriveNullifier(p, w.Secret, coinHash)
	if err != nil {
		return fmt.Errorf("nullifier: %w", err)
	}
	nullifierRoot, err := SparseRoot(p, nullifier, w.NullifierPath, big.NewInt(0))
	if err != nil {
		return fmt.Errorf("nullifier root: %w", err)
	}
	valueCommit := CommitValue(p, w.Value, w.ValueBlind)
	tokenCommit, err := CommitToken(p, w.Token, w.TokenBlind)
	if err != nil {
		return fmt.Errorf("token commitment: %w", err)
	}
	coinRoot, err := MerkleRoot(p, w.LeafPos, w.CoinPath, coinHash)
	if err != nil {
		return fmt.Errorf("coin root: %w", err)
	}
	c.relations = &Relations{
		OwnerPublicKey: coin.OwnerPublicKey,
		Coin:           coinHash,
		Nullifier:      nullifier,
		NullifierRoot:  nullifierRoot,
		ValueCommit:    valueCommit,
		TokenCommit:    tokenCommit,
		CoinRoot:       coinRoot,
		SigningKey:     DeriveSigningKey(p, w.SignatureSecret),
	}
	c.stage = StageRelationsEvaluated
	log.Debugw("proposal relations evaluated",
		"coin", util.PrettyHex(coinHash),
		"nullifierRoot", util.PrettyHex(nullifierRoot),
		"coinRoot", util.PrettyHex(coinRoot))
	return nil
}

// Emit builds the public instance from the evaluated relations.
func (c *Composer) Emit() (*PublicInstance, error) {
	if err := c.expect(StageRelationsEvaluated); err != nil {
		return nil, err
	}
	r := c.relations
	vx, vy := r.ValueCommit.Point()
	sx, sy := r.SigningKey.Point()
	c.instance = &PublicInstance{
		NullifierRoot: new(big.Int).Set(r.NullifierRoot),
		ValueCommitX:  vx,
		ValueCommitY:  vy,
		TokenCommit:   new(big.Int).Set(r.TokenCommit),
		CoinRoot:      new(big.Int).Set(r.CoinRoot),
		SigPubX:       sx,
		SigPubY:       sy,
	}
	c.stage = StageInstanceEmitted
	return c.instance, nil
}

// CheckRoots compares the recomputed roots against the known public ones.
// A nullifier root mismatch means the nullifier slot is not empty, that is,
// the coin was already spent; a coin root mismatch means the coin is not in
// the coin set. Both are reported as ErrWitnessInconsistency.
func (c *Composer) CheckRoots(known KnownRoots) error {
	if c.stage < StageRelationsEvaluated {
		return fmt.Errorf("%w: composer is %s, relations not evaluated", ErrInvalidStage, c.stage)
	}
	if known.NullifierRoot == nil || known.CoinRoot == nil {
		return fmt.Errorf("%w: known roots", ErrMissingInput)
	}
	if c.relations.NullifierRoot.Cmp(known.NullifierRoot) != 0 {
		return fmt.Errorf("%w: nullifier root %s does not match %s", ErrWitnessInconsistency,
			util.PrettyHex(c.relations.NullifierRoot), util.PrettyHex(known.NullifierRoot))
	}
	if c.relations.CoinRoot.Cmp(known.CoinRoot) != 0 {
		return fmt.Errorf("%w: coin root %s does not match %s", ErrWitnessInconsistency,
			util.PrettyHex(c.relations.CoinRoot), util.PrettyHex(known.CoinRoot))
	}
	return nil
}

// Params returns the parameters of the composer.
func (c *Composer) Params() *Params {
	return c.params
}

// Stage returns the current stage.
func (c *Composer) Stage() Stage {
	return c.stage
}

// Witness returns the assigned witness, reduced into the field, or nil.
func (c *Composer) Witness() *Witness {
	return c.witness
}

// Relations returns the evaluated relations or nil.
func (c *Composer) Relations() *Relations {
	return c.relations
}

// Instance returns the emitted public instance or nil.
func (c *Composer) Instance() *PublicInstance {
	return c.instance
}
