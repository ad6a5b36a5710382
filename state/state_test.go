package state

import (
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/util"
	"go.vocdoni.io/dvote/db/metadb"
)

var daoID = []byte("dao-test")

func smallParams(c *qt.C) *proposal.Params {
	def := proposal.DefaultParams()
	p, err := proposal.NewParams(def.Generators, def.Hasher, 2, 8)
	c.Assert(err, qt.IsNil)
	return p
}

func TestEmptyState(t *testing.T) {
	c := qt.New(t)
	s, err := New(metadb.NewTest(t), daoID, nil)
	c.Assert(err, qt.IsNil)
	p := proposal.DefaultParams()

	roots, err := s.Roots()
	c.Assert(err, qt.IsNil)
	c.Assert(roots.CoinRoot.Cmp(p.EmptyNode(p.CoinTreeDepth)), qt.Equals, 0)
	c.Assert(roots.NullifierRoot.Cmp(p.EmptyNode(p.NullifierTreeDepth)), qt.Equals, 0)

	size, err := s.Coins().Size()
	c.Assert(err, qt.IsNil)
	c.Assert(size, qt.Equals, uint64(0))

	_, err = s.Coins().Path(0)
	c.Assert(errors.Is(err, proposal.ErrMalformedPath), qt.IsTrue)

	_, err = New(metadb.NewTest(t), nil, nil)
	c.Assert(err, qt.IsNotNil)
}

func TestCoinTree(t *testing.T) {
	c := qt.New(t)
	p := proposal.DefaultParams()
	s, err := New(memdb.New(), daoID, p)
	c.Assert(err, qt.IsNil)

	coins := make([]*big.Int, 5)
	for i := range coins {
		coins[i] = util.RandomFieldElement()
		pos, err := s.AddCoin(coins[i])
		c.Assert(err, qt.IsNil)
		c.Assert(pos, qt.Equals, uint64(i))
	}
	size, err := s.Coins().Size()
	c.Assert(err, qt.IsNil)
	c.Assert(size, qt.Equals, uint64(len(coins)))

	root, err := s.Coins().Root()
	c.Assert(err, qt.IsNil)
	for i, coin := range coins {
		leaf, err := s.Coins().Leaf(uint64(i))
		c.Assert(err, qt.IsNil)
		c.Assert(leaf.Cmp(coin), qt.Equals, 0)

		path, err := s.Coins().Path(uint64(i))
		c.Assert(err, qt.IsNil)
		got, err := proposal.MerkleRoot(p, uint64(i), path, coin)
		c.Assert(err, qt.IsNil)
		c.Assert(got.Cmp(root), qt.Equals, 0)
	}
	_, err = s.Coins().Leaf(uint64(len(coins)))
	c.Assert(err, qt.IsNotNil)
}

func TestCoinTreeFull(t *testing.T) {
	c := qt.New(t)
	p := smallParams(c)
	s, err := New(memdb.New(), daoID, p)
	c.Assert(err, qt.IsNil)
	for i := 0; i < 4; i++ {
		_, err := s.AddCoin(big.NewInt(int64(i + 1)))
		c.Assert(err, qt.IsNil)
	}
	_, err = s.AddCoin(big.NewInt(5))
	c.Assert(errors.Is(err, ErrTreeFull), qt.IsTrue)

	// H(H(1,2), H(3,4))
	l, err := p.Hasher.Hash(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	r, err := p.Hasher.Hash(big.NewInt(3), big.NewInt(4))
	c.Assert(err, qt.IsNil)
	want, err := p.Hasher.Hash(l, r)
	c.Assert(err, qt.IsNil)
	root, err := s.Coins().Root()
	c.Assert(err, qt.IsNil)
	c.Assert(root.Cmp(want), qt.Equals, 0)
}

func TestNullifierTree(t *testing.T) {
	c := qt.New(t)
	p := smallParams(c)
	s, err := New(metadb.NewTest(t), daoID, p)
	c.Assert(err, qt.IsNil)

	keys := []*big.Int{big.NewInt(3), big.NewInt(200), big.NewInt(201)}
	for _, k := range keys {
		c.Assert(s.Spend(k), qt.IsNil)
	}
	err = s.Spend(keys[0])
	c.Assert(errors.Is(err, ErrNullifierExists), qt.IsTrue)
	c.Assert(s.Spend(big.NewInt(256)), qt.ErrorIs, ErrInvalidNullifier)

	// zero is the empty leaf and is never spent
	before, err := s.Nullifiers().Root()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Spend(big.NewInt(0)), qt.ErrorIs, ErrInvalidNullifier)
	_, err = s.Nullifiers().Contains(big.NewInt(0))
	c.Assert(err, qt.ErrorIs, ErrInvalidNullifier)
	after, err := s.Nullifiers().Root()
	c.Assert(err, qt.IsNil)
	c.Assert(after.Cmp(before), qt.Equals, 0)

	root, err := s.Nullifiers().Root()
	c.Assert(err, qt.IsNil)
	for _, k := range keys {
		ok, err := s.Nullifiers().Contains(k)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)

		path, err := s.Nullifiers().Path(k)
		c.Assert(err, qt.IsNil)
		got, err := proposal.SparseRoot(p, k, path, k)
		c.Assert(err, qt.IsNil)
		c.Assert(got.Cmp(root), qt.Equals, 0)
	}

	// non-membership of a free slot
	free := big.NewInt(42)
	ok, err := s.Nullifiers().Contains(free)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	path, err := s.Nullifiers().Path(free)
	c.Assert(err, qt.IsNil)
	got, err := proposal.SparseRoot(p, free, path, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(root), qt.Equals, 0)

	// 200 and 201 are siblings at the leaf level
	path, err = s.Nullifiers().Path(keys[1])
	c.Assert(err, qt.IsNil)
	c.Assert(path[0].IsEmpty(), qt.IsFalse)
	c.Assert(path[0].Sibling().Cmp(keys[2]), qt.Equals, 0)
	c.Assert(path[len(path)-1].IsEmpty(), qt.IsFalse)
}

func TestStatePersistence(t *testing.T) {
	c := qt.New(t)
	database := memdb.New()
	s, err := New(database, daoID, nil)
	c.Assert(err, qt.IsNil)
	_, err = s.AddCoin(big.NewInt(7))
	c.Assert(err, qt.IsNil)
	c.Assert(s.Spend(big.NewInt(9)), qt.IsNil)
	roots, err := s.Roots()
	c.Assert(err, qt.IsNil)

	reopened, err := New(database, daoID, nil)
	c.Assert(err, qt.IsNil)
	again, err := reopened.Roots()
	c.Assert(err, qt.IsNil)
	c.Assert(again.CoinRoot.Cmp(roots.CoinRoot), qt.Equals, 0)
	c.Assert(again.NullifierRoot.Cmp(roots.NullifierRoot), qt.Equals, 0)

	// other DAOs sharing the database are independent
	other, err := New(database, []byte("dao-other"), nil)
	c.Assert(err, qt.IsNil)
	otherRoots, err := other.Roots()
	c.Assert(err, qt.IsNil)
	c.Assert(otherRoots.CoinRoot.Cmp(roots.CoinRoot), qt.Not(qt.Equals), 0)
}

func TestSpentCoinRejected(t *testing.T) {
	c := qt.New(t)
	p := proposal.DefaultParams()
	s, err := New(metadb.NewTest(t), daoID, p)
	c.Assert(err, qt.IsNil)

	w := &proposal.Witness{
		Secret:          util.RandomFieldElement(),
		Value:           1000,
		Token:           big.NewInt(1),
		SpendHook:       big.NewInt(0),
		UserData:        big.NewInt(0),
		CoinBlind:       util.RandomFieldElement(),
		ValueBlind:      util.RandomFieldElement(),
		TokenBlind:      util.RandomFieldElement(),
		SignatureSecret: util.RandomFieldElement(),
	}
	coin, err := w.Coin(p).Commitment(p)
	c.Assert(err, qt.IsNil)
	// a few coins before ours
	for i := 0; i < 3; i++ {
		_, err := s.AddCoin(util.RandomFieldElement())
		c.Assert(err, qt.IsNil)
	}
	w.LeafPos, err = s.AddCoin(coin)
	c.Assert(err, qt.IsNil)
	nullifier, err := proposal.DeriveNullifier(p, w.Secret, coin)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Spend(util.RandomFieldElement()), qt.IsNil)

	w.CoinPath, w.NullifierPath, err = s.Paths(w.LeafPos, nullifier)
	c.Assert(err, qt.IsNil)
	roots, err := s.Roots()
	c.Assert(err, qt.IsNil)

	composer, err := proposal.Compose(p, w)
	c.Assert(err, qt.IsNil)
	c.Assert(composer.CheckRoots(roots), qt.IsNil)

	// once spent, the nullifier slot is not empty anymore
	c.Assert(s.Spend(nullifier), qt.IsNil)
	w.CoinPath, w.NullifierPath, err = s.Paths(w.LeafPos, nullifier)
	c.Assert(err, qt.IsNil)
	roots, err = s.Roots()
	c.Assert(err, qt.IsNil)
	composer, err = proposal.Compose(p, w)
	c.Assert(err, qt.IsNil)
	c.Assert(errors.Is(composer.CheckRoots(roots), proposal.ErrWitnessInconsistency), qt.IsTrue)
}
