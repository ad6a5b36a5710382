package state

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/util"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var nullifierNodesPrefix = []byte("n/")

var (
	// ErrNullifierExists is returned when inserting a nullifier twice.
	ErrNullifierExists = errors.New("nullifier already exists")
	// ErrInvalidNullifier is returned for a zero nullifier or one out of the
	// tree key space.
	ErrInvalidNullifier = errors.New("nullifier out of the tree key space")
)

// NullifierTree is the sparse tree of spent nullifiers. A nullifier is
// stored at the leaf addressed by its own value and only non-empty nodes are
// written to the database.
type NullifierTree struct {
	params *proposal.Params
	db     db.Database
	nodes  nodeStore
	mu     sync.RWMutex
}

func newNullifierTree(database db.Database, p *proposal.Params) *NullifierTree {
	return &NullifierTree{
		params: p,
		db:     database,
		nodes:  nodeStore{db: prefixeddb.NewPrefixedDatabase(database, nullifierNodesPrefix)},
	}
}

// checkKey rejects keys outside the tree. Zero is the empty leaf, so it
// cannot be stored as a spent nullifier.
func (t *NullifierTree) checkKey(nullifier *big.Int) error {
	if nullifier == nil || nullifier.Sign() <= 0 || nullifier.BitLen() > t.params.NullifierTreeDepth {
		return fmt.Errorf("%w: %v", ErrInvalidNullifier, nullifier)
	}
	return nil
}

// Contains reports whether the nullifier has been inserted.
func (t *NullifierTree) Contains(nullifier *big.Int) (bool, error) {
	if err := t.checkKey(nullifier); err != nil {
		return false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok, err := t.nodes.get(0, nullifier)
	return ok, err
}

// Insert marks the nullifier as spent.
func (t *NullifierTree) Insert(nullifier *big.Int) error {
	if err := t.checkKey(nullifier); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok, err := t.nodes.get(0, nullifier); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrNullifierExists, util.PrettyHex(nullifier))
	}

	wTx := t.db.WriteTx()
	defer wTx.Discard()
	nodesTx := prefixeddb.NewPrefixedWriteTx(wTx, nullifierNodesPrefix)

	node := nullifier
	index := new(big.Int).Set(nullifier)
	if err := setNode(nodesTx, 0, index, node); err != nil {
		return err
	}
	for level := 0; level < t.params.NullifierTreeDepth; level++ {
		sibling, err := t.nodes.getOrEmpty(level, siblingIndex(index), t.params.EmptyNode(level))
		if err != nil {
			return err
		}
		if index.Bit(0) == 1 {
			node, err = t.params.Hasher.Hash(sibling, node)
		} else {
			node, err = t.params.Hasher.Hash(node, sibling)
		}
		if err != nil {
			return fmt.Errorf("hash level %d: %w", level, err)
		}
		index.Rsh(index, 1)
		if err := setNode(nodesTx, level+1, index, node); err != nil {
			return err
		}
	}
	if err := wTx.Commit(); err != nil {
		return err
	}
	log.Debugw("nullifier inserted", "nullifier", util.PrettyHex(nullifier), "root", util.PrettyHex(node))
	return nil
}

// Root returns the current root of the tree.
func (t *NullifierTree) Root() (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	depth := t.params.NullifierTreeDepth
	return t.nodes.getOrEmpty(depth, big.NewInt(0), t.params.EmptyNode(depth))
}

// Path returns the path of the leaf addressed by nullifier. Siblings that
// are empty subtrees are returned as such.
func (t *NullifierTree) Path(nullifier *big.Int) (proposal.SparseMerklePath, error) {
	if err := t.checkKey(nullifier); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	path := make(proposal.SparseMerklePath, t.params.NullifierTreeDepth)
	index := new(big.Int).Set(nullifier)
	for level := range path {
		sibling, ok, err := t.nodes.get(level, siblingIndex(index))
		if err != nil {
			return nil, err
		}
		if ok {
			path[level] = proposal.ExplicitSibling(sibling)
		} else {
			path[level] = proposal.EmptySubtree()
		}
		index.Rsh(index, 1)
	}
	return path, nil
}
