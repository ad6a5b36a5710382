package api

import (
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/types"
)

// Roots is the response to a roots request.
type Roots struct {
	CoinRoot      *types.BigInt `json:"coinRoot"`
	NullifierRoot *types.BigInt `json:"nullifierRoot"`
	Coins         uint64        `json:"coins"`
}

// Coin is a coin commitment to append to the coin tree.
type Coin struct {
	Commitment *types.BigInt `json:"commitment"`
}

// CoinAdded is the response to a coin append.
type CoinAdded struct {
	LeafPos  uint64        `json:"leafPos"`
	CoinRoot *types.BigInt `json:"coinRoot"`
}

// CoinPath is the authentication path of a coin, siblings ordered from the
// leaf level up.
type CoinPath struct {
	LeafPos  uint64          `json:"leafPos"`
	Leaf     *types.BigInt   `json:"leaf"`
	Siblings []*types.BigInt `json:"siblings"`
}

// Nullifier is a nullifier to mark as spent.
type Nullifier struct {
	Nullifier *types.BigInt `json:"nullifier"`
}

// NullifierPath is the sparse path of a nullifier slot. A null step stands
// for an empty subtree.
type NullifierPath struct {
	Nullifier *types.BigInt   `json:"nullifier"`
	Spent     bool            `json:"spent"`
	Steps     []*types.BigInt `json:"steps"`
}

// Proposal is a proven proposal input. The proof is the gnark binary
// encoding of a Groth16 proof over the instance.
type Proposal struct {
	Instance *proposal.PublicInstance `json:"instance"`
	Proof    []byte                   `json:"proof"`
}

// ProposalStored is the response to a proposal submission.
type ProposalStored struct {
	Key string `json:"key"`
}

// ProposalList is the list of stored proposal keys.
type ProposalList struct {
	Keys []string `json:"keys"`
}

// NewCoinPath converts a coin path to its API form.
func NewCoinPath(leafPos uint64, leaf *types.BigInt, path proposal.MerklePath) *CoinPath {
	return &CoinPath{LeafPos: leafPos, Leaf: leaf, Siblings: types.BigIntSlice(path)}
}

// MerklePath returns the path in the form a witness takes.
func (cp *CoinPath) MerklePath() proposal.MerklePath {
	return types.MathBigIntSlice(cp.Siblings)
}

// NewNullifierPath converts a sparse path to its API form.
func NewNullifierPath(nullifier *types.BigInt, spent bool, path proposal.SparseMerklePath) *NullifierPath {
	steps := make([]*types.BigInt, len(path))
	for i, step := range path {
		if !step.IsEmpty() {
			steps[i] = types.NewBigInt(step.Sibling())
		}
	}
	return &NullifierPath{Nullifier: nullifier, Spent: spent, Steps: steps}
}

// SparsePath returns the path in the form a witness takes.
func (np *NullifierPath) SparsePath() proposal.SparseMerklePath {
	path := make(proposal.SparseMerklePath, len(np.Steps))
	for i, step := range np.Steps {
		if step == nil {
			path[i] = proposal.EmptySubtree()
			continue
		}
		path[i] = proposal.ExplicitSibling(step.MathBigInt())
	}
	return path
}
