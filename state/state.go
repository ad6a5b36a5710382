// Package state keeps the trees a DAO proves against: the dense tree of
// coin commitments and the sparse tree of spent nullifiers.
package state

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/dao-z-sandbox/proposal"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	coinsPrefix      = []byte("coins/")
	nullifiersPrefix = []byte("nullifiers/")
)

// State holds the coin and nullifier trees of a DAO.
type State struct {
	daoID      []byte
	db         db.Database
	coins      *CoinTree
	nullifiers *NullifierTree
}

// New creates or opens a State stored in the passed database.
// The daoID is used as a prefix for the keys in the database.
func New(database db.Database, daoID []byte, p *proposal.Params) (*State, error) {
	if len(daoID) == 0 {
		return nil, fmt.Errorf("empty dao id")
	}
	if p == nil {
		p = proposal.DefaultParams()
	}
	pdb := prefixeddb.NewPrefixedDatabase(database, daoID)
	return &State{
		daoID:      daoID,
		db:         pdb,
		coins:      newCoinTree(prefixeddb.NewPrefixedDatabase(pdb, coinsPrefix), p),
		nullifiers: newNullifierTree(prefixeddb.NewPrefixedDatabase(pdb, nullifiersPrefix), p),
	}, nil
}

// DAOID returns the identifier the state is stored under.
func (o *State) DAOID() []byte {
	return o.daoID
}

// Coins returns the coin tree.
func (o *State) Coins() *CoinTree {
	return o.coins
}

// Nullifiers returns the nullifier tree.
func (o *State) Nullifiers() *NullifierTree {
	return o.nullifiers
}

// AddCoin appends the coin commitment and returns its leaf position.
func (o *State) AddCoin(coin *big.Int) (uint64, error) {
	return o.coins.Append(coin)
}

// Spend inserts the nullifier into the nullifier tree.
func (o *State) Spend(nullifier *big.Int) error {
	return o.nullifiers.Insert(nullifier)
}

// Paths returns the coin path of leafPos and the nullifier path of
// nullifier, as required by a proposal witness.
func (o *State) Paths(leafPos uint64, nullifier *big.Int) (proposal.MerklePath, proposal.SparseMerklePath, error) {
	coinPath, err := o.coins.Path(leafPos)
	if err != nil {
		return nil, nil, err
	}
	nullifierPath, err := o.nullifiers.Path(nullifier)
	if err != nil {
		return nil, nil, err
	}
	return coinPath, nullifierPath, nil
}

// Roots returns the current roots of both trees.
func (o *State) Roots() (proposal.KnownRoots, error) {
	coinRoot, err := o.coins.Root()
	if err != nil {
		return proposal.KnownRoots{}, err
	}
	nullifierRoot, err := o.nullifiers.Root()
	if err != nil {
		return proposal.KnownRoots{}, err
	}
	return proposal.KnownRoots{NullifierRoot: nullifierRoot, CoinRoot: coinRoot}, nil
}

// Close the database, no more operations can be done after this.
func (o *State) Close() error {
	return o.db.Close()
}
