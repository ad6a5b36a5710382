package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
)

// nodeValueSize is the size of a stored node value and of a node index.
const nodeValueSize = 32

// nodeStore reads and writes tree nodes, addressed by level and index,
// from a prefixed database.
type nodeStore struct {
	db db.Database
}

// nodeKey returns level || index, the index encoded in little-endian.
func nodeKey(level int, index *big.Int) []byte {
	return append([]byte{byte(level)}, arbo.BigIntToBytes(nodeValueSize, index)...)
}

// get returns the node at level and index and whether it exists.
func (s nodeStore) get(level int, index *big.Int) (*big.Int, bool, error) {
	data, err := s.db.Get(nodeKey(level, index))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get node %d/%s: %w", level, index, err)
	}
	return arbo.BytesToBigInt(data), true, nil
}

// getOrEmpty returns the node at level and index, or empty if it does not
// exist.
func (s nodeStore) getOrEmpty(level int, index, empty *big.Int) (*big.Int, error) {
	v, ok, err := s.get(level, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return empty, nil
	}
	return v, nil
}

func setNode(tx db.WriteTx, level int, index, value *big.Int) error {
	return tx.Set(nodeKey(level, index), arbo.BigIntToBytes(nodeValueSize, value))
}

// siblingIndex returns the index of the sibling of index at the same level.
func siblingIndex(index *big.Int) *big.Int {
	return new(big.Int).Xor(index, big.NewInt(1))
}
