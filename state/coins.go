package state

import (
	"encoding/binary"
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

var (
	coinNodesPrefix = []byte("n/")
	keyCoinCount    = []byte("count")
)

// ErrTreeFull is returned when appending to a coin tree with every
// position taken.
var ErrTreeFull = errors.New("coin tree is full")

// CoinTree is an append-only dense tree of coin commitments. Leaves are the
// coins themselves and empty positions hold the empty leaf.
type CoinTree struct {
	params *proposal.Params
	db     db.Database
	nodes  nodeStore
	mu     sync.RWMutex
}

func newCoinTree(database db.Database, p *proposal.Params) *CoinTree {
	return &CoinTree{
		params: p,
		db:     database,
		nodes:  nodeStore{db: prefixeddb.NewPrefixedDatabase(database, coinNodesPrefix)},
	}
}

// Size returns the number of coins in the tree.
func (t *CoinTree) Size() (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size()
}

func (t *CoinTree) size() (uint64, error) {
	data, err := t.db.Get(keyCoinCount)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// Append adds the coin at the next free position and returns it.
func (t *CoinTree) Append(coin *big.Int) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos, err := t.size()
	if err != nil {
		return 0, err
	}
	depth := t.params.CoinTreeDepth
	if depth < 64 && pos>>uint(depth) != 0 {
		return 0, ErrTreeFull
	}

	wTx := t.db.WriteTx()
	defer wTx.Discard()
	nodesTx := prefixeddb.NewPrefixedWriteTx(wTx, coinNodesPrefix)

	node := coin
	index := new(big.Int).SetUint64(pos)
	if err := setNode(nodesTx, 0, index, node); err != nil {
		return 0, err
	}
	for level := 0; level < depth; level++ {
		sibling, err := t.nodes.getOrEmpty(level, siblingIndex(index), t.params.EmptyNode(level))
		if err != nil {
			return 0, err
		}
		if index.Bit(0) == 1 {
			node, err = t.params.Hasher.Hash(sibling, node)
		} else {
			node, err = t.params.Hasher.Hash(node, sibling)
		}
		if err != nil {
			return 0, fmt.Errorf("hash level %d: %w", level, err)
		}
		index.Rsh(index, 1)
		if err := setNode(nodesTx, level+1, index, node); err != nil {
			return 0, err
		}
	}
	count := make([]byte, 8)
	binary.LittleEndian.PutUint64(count, pos+1)
	if err := wTx.Set(keyCoinCount, count); err != nil {
		return 0, err
	}
	if err := wTx.Commit(); err != nil {
		return 0, err
	}
	log.Debugw("coin appended", "pos", pos, "coin", util.PrettyHex(coin), "root", util.PrettyHex(node))
	return pos, nil
}

// Root returns the current root of the tree.
func (t *CoinTree) Root() (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	depth := t.params.CoinTreeDepth
	return t.nodes.getOrEmpty(depth, big.NewInt(0), t.params.EmptyNode(depth))
}

// Leaf returns the coin stored at pos.
func (t *CoinTree) Leaf(pos uint64) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok, err := t.nodes.get(0, new(big.Int).SetUint64(pos))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no coin at position %d", pos)
	}
	return v, nil
}

// Path returns the authentication path of the coin at pos.
func (t *CoinTree) Path(pos uint64) (proposal.MerklePath, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	size, err := t.size()
	if err != nil {
		return nil, err
	}
	if pos >= size {
		return nil, fmt.Errorf("%w: no coin at position %d", proposal.ErrMalformedPath, pos)
	}
	path := make(proposal.MerklePath, t.params.CoinTreeDepth)
	index := new(big.Int).SetUint64(pos)
	for level := range path {
		path[level], err = t.nodes.getOrEmpty(level, siblingIndex(index), t.params.EmptyNode(level))
		if err != nil {
			return nil, err
		}
		index.Rsh(index, 1)
	}
	return path, nil
}
