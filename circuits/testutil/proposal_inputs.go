package testutil

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/arbo/memdb"

	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/state"
	"github.com/vocdoni/dao-z-sandbox/util"
)

// ProposalInputs bundles a DAO state holding a coin of the prover together
// with the composer of a proposal spending it.
type ProposalInputs struct {
	State    *state.State
	Witness  *proposal.Witness
	Composer *proposal.Composer
	Roots    proposal.KnownRoots
}

// GenerateProposalInputs creates an in-memory DAO state with otherCoins
// random coins around a new coin of the given value and token, spends a few
// unrelated nullifiers, and composes the proposal input of the new coin.
func GenerateProposalInputs(p *proposal.Params, value uint64, token *big.Int, otherCoins int) (*ProposalInputs, error) {
	if p == nil {
		p = proposal.DefaultParams()
	}
	s, err := state.New(memdb.New(), []byte("dao"), p)
	if err != nil {
		return nil, err
	}
	w := &proposal.Witness{
		Secret:          util.RandomFieldElement(),
		Value:           value,
		Token:           token,
		SpendHook:       big.NewInt(0),
		UserData:        util.RandomFieldElement(),
		CoinBlind:       util.RandomFieldElement(),
		ValueBlind:      util.RandomFieldElement(),
		TokenBlind:      util.RandomFieldElement(),
		SignatureSecret: util.RandomFieldElement(),
	}
	coin, err := w.Coin(p).Commitment(p)
	if err != nil {
		return nil, err
	}
	for i := 0; i < otherCoins; i++ {
		if i == otherCoins/2 {
			if w.LeafPos, err = s.AddCoin(coin); err != nil {
				return nil, err
			}
		}
		if _, err := s.AddCoin(util.RandomFieldElement()); err != nil {
			return nil, err
		}
		if err := s.Spend(util.RandomFieldElement()); err != nil {
			return nil, err
		}
	}
	if otherCoins == 0 {
		if w.LeafPos, err = s.AddCoin(coin); err != nil {
			return nil, err
		}
	}
	nullifier, err := proposal.DeriveNullifier(p, w.Secret, coin)
	if err != nil {
		return nil, err
	}
	if w.CoinPath, w.NullifierPath, err = s.Paths(w.LeafPos, nullifier); err != nil {
		return nil, err
	}
	roots, err := s.Roots()
	if err != nil {
		return nil, err
	}
	composer, err := proposal.Compose(p, w)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	if err := composer.CheckRoots(roots); err != nil {
		return nil, err
	}
	return &ProposalInputs{
		State:    s,
		Witness:  w,
		Composer: composer,
		Roots:    roots,
	}, nil
}
