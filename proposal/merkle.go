package proposal

import (
	"fmt"
	"math/big"
)

// MerklePath lists the sibling hashes of a dense tree path, from the leaf
// level up to the level below the root.
type MerklePath []*big.Int

// MerkleRoot recomputes the root of the dense coin tree from the leaf at
// leafPos and its path. At level i the running node is the right child if
// bit i of leafPos is set.
func MerkleRoot(p *Params, leafPos uint64, path MerklePath, leaf *big.Int) (*big.Int, error) {
	if err := checkMerklePath(p, leafPos, path); err != nil {
		return nil, err
	}
	if leaf == nil {
		return nil, fmt.Errorf("%w: nil leaf", ErrMissingInput)
	}
	node := leaf
	for i, sibling := range path {
		var err error
		if (leafPos>>uint(i))&1 == 1 {
			node, err = p.hash(sibling, node)
		} else {
			node, err = p.hash(node, sibling)
		}
		if err != nil {
			return nil, fmt.Errorf("merkle level %d: %w", i, err)
		}
	}
	return node, nil
}

func checkMerklePath(p *Params, leafPos uint64, path MerklePath) error {
	if len(path) != p.CoinTreeDepth {
		return fmt.Errorf("%w: coin path has %d levels, expected %d", ErrMalformedPath, len(path), p.CoinTreeDepth)
	}
	if p.CoinTreeDepth < 64 && leafPos>>uint(p.CoinTreeDepth) != 0 {
		return fmt.Errorf("%w: leaf position %d does not fit in %d levels", ErrMalformedPath, leafPos, p.CoinTreeDepth)
	}
	for i, sibling := range path {
		if sibling == nil {
			return fmt.Errorf("%w: nil sibling at level %d", ErrMalformedPath, i)
		}
	}
	return nil
}

type stepKind uint8

const (
	stepEmpty stepKind = iota
	stepSibling
)

// SparseStep is one level of a sparse tree path: either an explicit sibling
// hash or an empty subtree, whose hash is the precomputed empty node of
// that height.
type SparseStep struct {
	kind    stepKind
	sibling *big.Int
}

// ExplicitSibling returns a step whose sibling is the hash provided.
func ExplicitSibling(h *big.Int) SparseStep {
	return SparseStep{kind: stepSibling, sibling: h}
}

// EmptySubtree returns a step whose sibling is an empty subtree.
func EmptySubtree() SparseStep {
	return SparseStep{kind: stepEmpty}
}

// IsEmpty reports whether the step stands for an empty subtree.
func (s SparseStep) IsEmpty() bool {
	return s.kind == stepEmpty
}

// Sibling returns the explicit sibling hash, or nil for empty subtrees.
func (s SparseStep) Sibling() *big.Int {
	if s.kind == stepEmpty {
		return nil
	}
	return s.sibling
}

// resolve returns the hash of the sibling at the given height.
func (s SparseStep) resolve(p *Params, height int) *big.Int {
	if s.kind == stepEmpty {
		return p.emptyNodes[height]
	}
	return s.sibling
}

func (s SparseStep) String() string {
	if s.kind == stepEmpty {
		return "empty"
	}
	return s.sibling.String()
}

// SparseMerklePath lists the steps of a sparse tree path from the leaf level
// up to the level below the root.
type SparseMerklePath []SparseStep

// EmptySparsePath returns the path of any key in an empty sparse tree.
func EmptySparsePath(depth int) SparseMerklePath {
	path := make(SparseMerklePath, depth)
	for i := range path {
		path[i] = EmptySubtree()
	}
	return path
}

// Siblings returns the sibling hash of every level, resolving empty
// subtrees to their precomputed hash.
func (sp SparseMerklePath) Siblings(p *Params) []*big.Int {
	siblings := make([]*big.Int, len(sp))
	for i, step := range sp {
		siblings[i] = new(big.Int).Set(step.resolve(p, i))
	}
	return siblings
}

// SparseRoot recomputes the root of the sparse nullifier tree holding leaf
// at key. Only the low NullifierTreeDepth bits of key select the position;
// at level i the running node is the right child if bit i of key is set.
// Proving non-membership uses leaf 0.
func SparseRoot(p *Params, key *big.Int, path SparseMerklePath, leaf *big.Int) (*big.Int, error) {
	if err := checkSparsePath(p, path); err != nil {
		return nil, err
	}
	if key == nil || leaf == nil {
		return nil, fmt.Errorf("%w: nil key or leaf", ErrMissingInput)
	}
	node := leaf
	for i, step := range path {
		sibling := step.resolve(p, i)
		var err error
		if key.Bit(i) == 1 {
			node, err = p.hash(sibling, node)
		} else {
			node, err = p.hash(node, sibling)
		}
		if err != nil {
			return nil, fmt.Errorf("sparse level %d: %w", i, err)
		}
	}
	return node, nil
}

func checkSparsePath(p *Params, path SparseMerklePath) error {
	if len(path) != p.NullifierTreeDepth {
		return fmt.Errorf("%w: nullifier path has %d levels, expected %d", ErrMalformedPath, len(path), p.NullifierTreeDepth)
	}
	for i, step := range path {
		if step.kind == stepSibling && step.sibling == nil {
			return fmt.Errorf("%w: nil sibling at level %d", ErrMalformedPath, i)
		}
	}
	return nil
}
