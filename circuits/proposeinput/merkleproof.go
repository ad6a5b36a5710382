package proposeinput

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-crypto-primitives/utils"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/proposal"
)

// CoinPath stores the siblings of a coin in the dense coin tree, from the
// leaf level up.
type CoinPath struct {
	Siblings [circuits.CoinTreeDepth]frontend.Variable
}

// CoinPathFromMerklePath converts a native path into its circuit form.
func CoinPathFromMerklePath(path proposal.MerklePath) (CoinPath, error) {
	cp := CoinPath{}
	if len(path) != len(cp.Siblings) {
		return cp, fmt.Errorf("%w: coin path has %d levels, expected %d",
			proposal.ErrMalformedPath, len(path), len(cp.Siblings))
	}
	for i, s := range path {
		cp.Siblings[i] = new(big.Int).Set(s)
	}
	return cp, nil
}

// Root returns the root of the tree holding leaf at leafPos. Bit i of leafPos
// places the running node on the right at level i.
func (cp *CoinPath) Root(api frontend.API, hFn utils.Hasher, leafPos, leaf frontend.Variable) (frontend.Variable, error) {
	bits := api.ToBinary(leafPos, len(cp.Siblings))
	node := leaf
	for i, sibling := range cp.Siblings {
		left := api.Select(bits[i], sibling, node)
		right := api.Select(bits[i], node, sibling)
		var err error
		if node, err = hFn(api, left, right); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// NullifierPath stores the steps of a path in the sparse nullifier tree.
// When Empty[i] is set the sibling at level i is the empty subtree of that
// height and Siblings[i] is ignored.
type NullifierPath struct {
	Siblings [circuits.NullifierTreeDepth]frontend.Variable
	Empty    [circuits.NullifierTreeDepth]frontend.Variable
}

// NullifierPathFromSparsePath converts a native sparse path into its circuit
// form.
func NullifierPathFromSparsePath(path proposal.SparseMerklePath) (NullifierPath, error) {
	np := NullifierPath{}
	if len(path) != len(np.Siblings) {
		return np, fmt.Errorf("%w: nullifier path has %d levels, expected %d",
			proposal.ErrMalformedPath, len(path), len(np.Siblings))
	}
	for i, step := range path {
		np.Empty[i] = circuits.BoolToBigInt(step.IsEmpty())
		if step.IsEmpty() {
			np.Siblings[i] = 0
			continue
		}
		np.Siblings[i] = new(big.Int).Set(step.Sibling())
	}
	return np, nil
}

// Root returns the root of the sparse tree holding leaf at the position
// given by the low bits of key.
func (np *NullifierPath) Root(api frontend.API, p *proposal.Params, hFn utils.Hasher, key, leaf frontend.Variable) (frontend.Variable, error) {
	bits := api.ToBinary(key, len(np.Siblings))
	node := leaf
	for i := range np.Siblings {
		api.AssertIsBoolean(np.Empty[i])
		sibling := api.Select(np.Empty[i], p.EmptyNode(i), np.Siblings[i])
		left := api.Select(bits[i], sibling, node)
		right := api.Select(bits[i], node, sibling)
		var err error
		if node, err = hFn(api, left, right); err != nil {
			return nil, err
		}
	}
	return node, nil
}
