package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/prover"
	"github.com/vocdoni/dao-z-sandbox/storage"
	"github.com/vocdoni/dao-z-sandbox/types"
)

// submitProposal verifies a proven proposal input against the current roots
// of the DAO and stores it. The response holds the key it is stored under.
// POST /daos/{daoId}/proposals
func (a *API) submitProposal(w http.ResponseWriter, r *http.Request) {
	if a.prover == nil {
		ErrVerifierUnavailable.Write(w)
		return
	}
	s, ok := a.daoState(w, r)
	if !ok {
		return
	}
	p := &Proposal{}
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if p.Instance == nil {
		ErrMalformedInstance.With("missing instance").Write(w)
		return
	}
	if err := p.Instance.Validate(a.params); err != nil {
		ErrMalformedInstance.WithErr(err).Write(w)
		return
	}
	roots, err := s.Roots()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if p.Instance.CoinRoot.Cmp(roots.CoinRoot) != 0 ||
		p.Instance.NullifierRoot.Cmp(roots.NullifierRoot) != 0 {
		ErrUnknownRoots.Write(w)
		return
	}
	bundle, err := prover.BundleFromRecord(a.params, &storage.Proposal{
		Instance: types.BigIntSlice(p.Instance.Elements()),
		Proof:    p.Proof,
	})
	if err != nil {
		ErrInvalidProof.WithErr(err).Write(w)
		return
	}
	if err := a.prover.Verify(bundle); err != nil {
		if errors.Is(err, proposal.ErrInstanceFormat) {
			ErrMalformedInstance.WithErr(err).Write(w)
			return
		}
		ErrInvalidProof.WithErr(err).Write(w)
		return
	}
	key, err := bundle.Store(a.storage)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	log.Infow("proposal input accepted", "dao", hex.EncodeToString(s.DAOID()), "key", hex.EncodeToString(key))
	httpWriteJSON(w, &ProposalStored{Key: hex.EncodeToString(key)})
}

// listProposals returns the keys of every stored proposal.
// GET /proposals
func (a *API) listProposals(w http.ResponseWriter, r *http.Request) {
	keys, err := a.storage.ListProposals()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	list := &ProposalList{Keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		list.Keys = append(list.Keys, hex.EncodeToString(k))
	}
	httpWriteJSON(w, list)
}

// proposal returns a stored proposal.
// GET /proposals/{proposalKey}
func (a *API) proposal(w http.ResponseWriter, r *http.Request) {
	key, ok := proposalKeyParam(r)
	if !ok {
		ErrMalformedProposalKey.Write(w)
		return
	}
	bundle, err := prover.LoadBundle(a.params, a.storage, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrProposalNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	rec, err := bundle.Record()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &Proposal{Instance: bundle.Instance, Proof: rec.Proof})
}
