package proposal

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
)

// ProposeParamsInput is the data a DAO proposal call carries for each coin
// backing the proposal.
type ProposeParamsInput struct {
	NullifierRoot   *big.Int
	ValueCommit     ecc.Point
	TokenCommit     *big.Int
	CoinRoot        *big.Int
	SignaturePublic ecc.Point
}

// ProposeParams validates the instance and returns its proposal call view.
func (pi *PublicInstance) ProposeParams(p *Params) (*ProposeParamsInput, error) {
	if err := pi.Validate(p); err != nil {
		return nil, err
	}
	return &ProposeParamsInput{
		NullifierRoot:   new(big.Int).Set(pi.NullifierRoot),
		ValueCommit:     pi.ValueCommit(p),
		TokenCommit:     new(big.Int).Set(pi.TokenCommit),
		CoinRoot:        new(big.Int).Set(pi.CoinRoot),
		SignaturePublic: pi.SignaturePublic(p),
	}, nil
}

// TotalValueCommit adds the value commitments of the inputs of a proposal.
// Every input must commit to the same token with the same blind, so their
// token commitments must be equal.
func TotalValueCommit(p *Params, inputs []*ProposeParamsInput) (ecc.Point, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no proposal inputs", ErrMissingInput)
	}
	commits := make([]ecc.Point, len(inputs))
	for i, in := range inputs {
		if in.TokenCommit.Cmp(inputs[0].TokenCommit) != 0 {
			return nil, fmt.Errorf("%w: input %d commits to a different token", ErrWitnessInconsistency, i)
		}
		commits[i] = in.ValueCommit
	}
	return SumValueCommits(p, commits...), nil
}
