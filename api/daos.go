package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/state"
	"github.com/vocdoni/dao-z-sandbox/types"
)

// roots returns the current roots of the DAO trees.
// GET /daos/{daoId}/roots
func (a *API) roots(w http.ResponseWriter, r *http.Request) {
	s, ok := a.daoState(w, r)
	if !ok {
		return
	}
	roots, err := s.Roots()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	size, err := s.Coins().Size()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &Roots{
		CoinRoot:      types.NewBigInt(roots.CoinRoot),
		NullifierRoot: types.NewBigInt(roots.NullifierRoot),
		Coins:         size,
	})
}

// addCoin appends a coin commitment to the coin tree.
// POST /daos/{daoId}/coins
func (a *API) addCoin(w http.ResponseWriter, r *http.Request) {
	s, ok := a.daoState(w, r)
	if !ok {
		return
	}
	coin := &Coin{}
	if err := json.NewDecoder(r.Body).Decode(coin); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if coin.Commitment == nil || !a.inField(coin.Commitment) {
		ErrMalformedBody.With("commitment is not a field element").Write(w)
		return
	}
	pos, err := s.AddCoin(coin.Commitment.MathBigInt())
	if err != nil {
		if errors.Is(err, state.ErrTreeFull) {
			ErrCoinTreeFull.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	root, err := s.Coins().Root()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &CoinAdded{LeafPos: pos, CoinRoot: types.NewBigInt(root)})
}

// coinPath returns the authentication path of the coin at leafPos.
// GET /daos/{daoId}/coins/{leafPos}/path
func (a *API) coinPath(w http.ResponseWriter, r *http.Request) {
	s, ok := a.daoState(w, r)
	if !ok {
		return
	}
	pos, err := leafPosParam(r)
	if err != nil {
		ErrMalformedLeafPos.WithErr(err).Write(w)
		return
	}
	path, err := s.Coins().Path(pos)
	if err != nil {
		if errors.Is(err, proposal.ErrMalformedPath) {
			ErrCoinNotFound.WithErr(err).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	leaf, err := s.Coins().Leaf(pos)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, NewCoinPath(pos, types.NewBigInt(leaf), path))
}

// spend marks a nullifier as spent and returns the new roots.
// POST /daos/{daoId}/nullifiers
func (a *API) spend(w http.ResponseWriter, r *http.Request) {
	s, ok := a.daoState(w, r)
	if !ok {
		return
	}
	n := &Nullifier{}
	if err := json.NewDecoder(r.Body).Decode(n); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if n.Nullifier == nil || !a.inNullifierSpace(n.Nullifier) {
		ErrMalformedNullifier.Write(w)
		return
	}
	if err := s.Spend(n.Nullifier.MathBigInt()); err != nil {
		if errors.Is(err, state.ErrNullifierExists) {
			ErrNullifierSpent.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	a.roots(w, r)
}

// nullifierPath returns the sparse path of a nullifier slot, used to prove
// the nullifier is not spent.
// GET /daos/{daoId}/nullifiers/{nullifier}/path
func (a *API) nullifierPath(w http.ResponseWriter, r *http.Request) {
	s, ok := a.daoState(w, r)
	if !ok {
		return
	}
	n, ok := nullifierParam(r)
	if !ok || !a.inNullifierSpace(types.NewBigInt(n)) {
		ErrMalformedNullifier.Write(w)
		return
	}
	spent, err := s.Nullifiers().Contains(n)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	path, err := s.Nullifiers().Path(n)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, NewNullifierPath(types.NewBigInt(n), spent, path))
}

func (a *API) inField(x *types.BigInt) bool {
	v := x.MathBigInt()
	return v.Sign() >= 0 && v.Cmp(a.params.Field()) < 0
}

func (a *API) inNullifierSpace(x *types.BigInt) bool {
	return a.inField(x) && x.MathBigInt().Sign() > 0 && x.MathBigInt().BitLen() <= a.params.NullifierTreeDepth
}
