package client

import (
	"context"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/vocdoni/dao-z-sandbox/api"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/prover"
	"github.com/vocdoni/dao-z-sandbox/storage"
	"github.com/vocdoni/dao-z-sandbox/types"
)

// endpoint fills the URL params of tmpl, given as name, value pairs.
func endpoint(tmpl string, params ...string) string {
	for i := 0; i+1 < len(params); i += 2 {
		tmpl = strings.ReplaceAll(tmpl, "{"+params[i]+"}", params[i+1])
	}
	return tmpl
}

func daoEndpoint(tmpl string, daoID []byte, params ...string) string {
	return endpoint(tmpl, append([]string{api.DAOURLParam, hex.EncodeToString(daoID)}, params...)...)
}

// Roots returns the current roots of the DAO.
func (c *HTTPclient) Roots(ctx context.Context, daoID []byte) (*api.Roots, error) {
	roots := &api.Roots{}
	if err := c.do(ctx, HTTPGET, nil, roots, daoEndpoint(api.RootsEndpoint, daoID)); err != nil {
		return nil, err
	}
	return roots, nil
}

// KnownRoots returns the current roots of the DAO in the form the prover
// checks a witness against.
func (c *HTTPclient) KnownRoots(ctx context.Context, daoID []byte) (*proposal.KnownRoots, error) {
	roots, err := c.Roots(ctx, daoID)
	if err != nil {
		return nil, err
	}
	return &proposal.KnownRoots{
		CoinRoot:      roots.CoinRoot.MathBigInt(),
		NullifierRoot: roots.NullifierRoot.MathBigInt(),
	}, nil
}

// AddCoin appends a coin commitment and returns its leaf position.
func (c *HTTPclient) AddCoin(ctx context.Context, daoID []byte, coin *big.Int) (uint64, error) {
	added := &api.CoinAdded{}
	req := &api.Coin{Commitment: types.NewBigInt(coin)}
	if err := c.do(ctx, HTTPPOST, req, added, daoEndpoint(api.CoinsEndpoint, daoID)); err != nil {
		return 0, err
	}
	return added.LeafPos, nil
}

// CoinPath returns the authentication path of the coin at leafPos.
func (c *HTTPclient) CoinPath(ctx context.Context, daoID []byte, leafPos uint64) (*api.CoinPath, error) {
	cp := &api.CoinPath{}
	url := daoEndpoint(api.CoinPathEndpoint, daoID, api.LeafPosURLParam, strconv.FormatUint(leafPos, 10))
	if err := c.do(ctx, HTTPGET, nil, cp, url); err != nil {
		return nil, err
	}
	return cp, nil
}

// Spend marks the nullifier as spent and returns the new roots.
func (c *HTTPclient) Spend(ctx context.Context, daoID []byte, nullifier *big.Int) (*api.Roots, error) {
	roots := &api.Roots{}
	req := &api.Nullifier{Nullifier: types.NewBigInt(nullifier)}
	if err := c.do(ctx, HTTPPOST, req, roots, daoEndpoint(api.NullifiersEndpoint, daoID)); err != nil {
		return nil, err
	}
	return roots, nil
}

// NullifierPath returns the sparse path of the nullifier slot.
func (c *HTTPclient) NullifierPath(ctx context.Context, daoID []byte, nullifier *big.Int) (*api.NullifierPath, error) {
	np := &api.NullifierPath{}
	url := daoEndpoint(api.NullifierPathEndpoint, daoID, api.NullifierURLParam, nullifier.String())
	if err := c.do(ctx, HTTPGET, nil, np, url); err != nil {
		return nil, err
	}
	return np, nil
}

// SubmitProposal sends a proven proposal input to the DAO and returns the
// key it was stored under.
func (c *HTTPclient) SubmitProposal(ctx context.Context, daoID []byte, b *prover.Bundle) ([]byte, error) {
	rec, err := b.Record()
	if err != nil {
		return nil, err
	}
	stored := &api.ProposalStored{}
	req := &api.Proposal{Instance: b.Instance, Proof: rec.Proof}
	if err := c.do(ctx, HTTPPOST, req, stored, daoEndpoint(api.DAOProposalsEndpoint, daoID)); err != nil {
		return nil, err
	}
	return hex.DecodeString(stored.Key)
}

// Proposals returns the keys of the stored proposals.
func (c *HTTPclient) Proposals(ctx context.Context) ([][]byte, error) {
	list := &api.ProposalList{}
	if err := c.do(ctx, HTTPGET, nil, list, api.ProposalsEndpoint); err != nil {
		return nil, err
	}
	keys := make([][]byte, 0, len(list.Keys))
	for _, k := range list.Keys {
		key, err := hex.DecodeString(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Proposal returns the proposal stored under key, decoded with the params
// provided.
func (c *HTTPclient) Proposal(ctx context.Context, p *proposal.Params, key []byte) (*prover.Bundle, error) {
	resp := &api.Proposal{}
	url := endpoint(api.ProposalEndpoint, api.ProposalURLParam, hex.EncodeToString(key))
	if err := c.do(ctx, HTTPGET, nil, resp, url); err != nil {
		return nil, err
	}
	if resp.Instance == nil {
		return nil, proposal.ErrInstanceFormat
	}
	return prover.BundleFromRecord(p, &storage.Proposal{
		Instance: types.BigIntSlice(resp.Instance.Elements()),
		Proof:    resp.Proof,
	})
}
