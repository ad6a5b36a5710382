package proposal

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
	"github.com/vocdoni/dao-z-sandbox/util"
)

// emptyCoinPath is the path of position 0 in a coin tree with a single coin.
func emptyCoinPath(p *Params) MerklePath {
	path := make(MerklePath, p.CoinTreeDepth)
	for i := range path {
		path[i] = p.EmptyNode(i)
	}
	return path
}

func randomWitness(p *Params) *Witness {
	return &Witness{
		Secret:          util.RandomFieldElement(),
		Value:           uint64(util.RandomInt(1, 1<<30)),
		Token:           util.RandomFieldElement(),
		SpendHook:       big.NewInt(0),
		UserData:        util.RandomFieldElement(),
		CoinBlind:       util.RandomFieldElement(),
		ValueBlind:      util.RandomFieldElement(),
		TokenBlind:      util.RandomFieldElement(),
		LeafPos:         0,
		CoinPath:        emptyCoinPath(p),
		NullifierPath:   EmptySparsePath(p.NullifierTreeDepth),
		SignatureSecret: util.RandomFieldElement(),
	}
}

func TestDefaultParams(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	c.Assert(DefaultParams(), qt.Equals, p)
	c.Assert(p.CoinTreeDepth, qt.Equals, 32)
	c.Assert(p.NullifierTreeDepth, qt.Equals, 254)

	gens := []ecc.Point{p.Generators.NullifierBase, p.Generators.ValueBaseShort, p.Generators.RandomBase}
	for i, g := range gens {
		c.Assert(ecc.InSubgroup(g), qt.IsTrue)
		for j := i + 1; j < len(gens); j++ {
			c.Assert(g.Equal(gens[j]), qt.IsFalse)
		}
	}

	c.Assert(p.EmptyNode(0).Sign(), qt.Equals, 0)
	h, err := p.Hasher.Hash(big.NewInt(0), big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(p.EmptyNode(1).Cmp(h), qt.Equals, 0)
	h, err = p.Hasher.Hash(p.EmptyNode(253), p.EmptyNode(253))
	c.Assert(err, qt.IsNil)
	c.Assert(p.EmptyNode(254).Cmp(h), qt.Equals, 0)

	_, err = NewParams(p.Generators, p.Hasher, 32, 255)
	c.Assert(err, qt.IsNotNil)
	_, err = NewParams(Generators{}, p.Hasher, 32, 254)
	c.Assert(err, qt.IsNotNil)
}

func TestCoinDeterminism(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	secret, token, blind := util.RandomFieldElement(), big.NewInt(42), util.RandomFieldElement()

	coin1, err := CoinCommitment(p, secret, 100, token, big.NewInt(0), big.NewInt(0), blind)
	c.Assert(err, qt.IsNil)
	coin2, err := CoinCommitment(p, secret, 100, token, big.NewInt(0), big.NewInt(0), blind)
	c.Assert(err, qt.IsNil)
	c.Assert(coin1.Cmp(coin2), qt.Equals, 0)

	n1, err := DeriveNullifier(p, secret, coin1)
	c.Assert(err, qt.IsNil)
	n2, err := DeriveNullifier(p, secret, coin1)
	c.Assert(err, qt.IsNil)
	c.Assert(n1.Cmp(n2), qt.Equals, 0)

	// different secrets, different nullifiers
	n3, err := DeriveNullifier(p, new(big.Int).Add(secret, big.NewInt(1)), coin1)
	c.Assert(err, qt.IsNil)
	c.Assert(n1.Cmp(n3), qt.Not(qt.Equals), 0)

	// a zero secret is still a well defined coin
	_, err = CoinCommitment(p, big.NewInt(0), 100, token, big.NewInt(0), big.NewInt(0), blind)
	c.Assert(err, qt.IsNil)

	_, err = DeriveNullifier(p, nil, coin1)
	c.Assert(errors.Is(err, ErrMissingInput), qt.IsTrue)
}

func TestValueCommitHiding(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()

	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		commit := CommitValue(p, 1000, util.RandomFieldElement())
		c.Assert(ecc.InSubgroup(commit), qt.IsTrue)
		c.Assert(seen[commit.String()], qt.IsFalse)
		seen[commit.String()] = true
	}

	blind := util.RandomFieldElement()
	c.Assert(CommitValue(p, 1, blind).Equal(CommitValue(p, 2, blind)), qt.IsFalse)
	c.Assert(CommitValue(p, 1, blind).Equal(CommitValue(p, 1, blind)), qt.IsTrue)
}

func TestValueCommitHomomorphism(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	b1, b2 := util.RandomFieldElement(), util.RandomFieldElement()
	sum := SumValueCommits(p, CommitValue(p, 3, b1), CommitValue(p, 4, b2))
	c.Assert(sum.Equal(CommitValue(p, 7, SumValueBlinds(p, b1, b2))), qt.IsTrue)
}

func TestMerkleAvalanche(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	leaf := util.RandomFieldElement()
	leafPos := uint64(0xa5a5a5a5)
	path := make(MerklePath, p.CoinTreeDepth)
	for i := range path {
		path[i] = util.RandomFieldElement()
	}
	root, err := MerkleRoot(p, leafPos, path, leaf)
	c.Assert(err, qt.IsNil)

	for level := range path {
		for bit := 0; bit < p.Field().BitLen(); bit++ {
			tampered := make(MerklePath, len(path))
			copy(tampered, path)
			tampered[level] = new(big.Int).SetBit(path[level], bit, path[level].Bit(bit)^1)
			got, err := MerkleRoot(p, leafPos, tampered, leaf)
			c.Assert(err, qt.IsNil)
			c.Assert(got.Cmp(root), qt.Not(qt.Equals), 0, qt.Commentf("level %d bit %d", level, bit))
		}
	}

	// another position gives another root
	other, err := MerkleRoot(p, leafPos^1, path, leaf)
	c.Assert(err, qt.IsNil)
	c.Assert(other.Cmp(root), qt.Not(qt.Equals), 0)
}

func TestMerkleMalformedPath(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	leaf := big.NewInt(1)

	_, err := MerkleRoot(p, 0, emptyCoinPath(p)[:31], leaf)
	c.Assert(errors.Is(err, ErrMalformedPath), qt.IsTrue)
	_, err = MerkleRoot(p, 1<<32, emptyCoinPath(p), leaf)
	c.Assert(errors.Is(err, ErrMalformedPath), qt.IsTrue)
	_, err = MerkleRoot(p, 1<<32-1, emptyCoinPath(p), leaf)
	c.Assert(err, qt.IsNil)

	_, err = SparseRoot(p, leaf, EmptySparsePath(253), big.NewInt(0))
	c.Assert(errors.Is(err, ErrMalformedPath), qt.IsTrue)
	path := EmptySparsePath(254)
	path[10] = ExplicitSibling(nil)
	_, err = SparseRoot(p, leaf, path, big.NewInt(0))
	c.Assert(errors.Is(err, ErrMalformedPath), qt.IsTrue)
}

func TestSparseRoot(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	key := util.RandomFieldElement()

	// non-membership in an empty tree gives the empty root
	root, err := SparseRoot(p, key, EmptySparsePath(p.NullifierTreeDepth), big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(root.Cmp(p.EmptyNode(p.NullifierTreeDepth)), qt.Equals, 0)

	// explicit siblings holding the empty hashes are equivalent
	explicit := make(SparseMerklePath, p.NullifierTreeDepth)
	for i := range explicit {
		explicit[i] = ExplicitSibling(p.EmptyNode(i))
	}
	root2, err := SparseRoot(p, key, explicit, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(root2.Cmp(root), qt.Equals, 0)
	c.Assert(explicit.Siblings(p)[5].Cmp(EmptySparsePath(254).Siblings(p)[5]), qt.Equals, 0)

	// the inserted nullifier changes the root
	inserted, err := SparseRoot(p, key, EmptySparsePath(p.NullifierTreeDepth), key)
	c.Assert(err, qt.IsNil)
	c.Assert(inserted.Cmp(root), qt.Not(qt.Equals), 0)
}

func TestComposerStages(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()

	composer := NewComposer(p)
	c.Assert(composer.Stage(), qt.Equals, StageUnassigned)
	c.Assert(errors.Is(composer.Evaluate(), ErrInvalidStage), qt.IsTrue)
	_, err := composer.Emit()
	c.Assert(errors.Is(err, ErrInvalidStage), qt.IsTrue)
	c.Assert(errors.Is(composer.CheckRoots(KnownRoots{}), ErrInvalidStage), qt.IsTrue)

	// malformed paths keep the composer unassigned
	w := randomWitness(p)
	w.CoinPath = w.CoinPath[:10]
	c.Assert(errors.Is(composer.Assign(w), ErrMalformedPath), qt.IsTrue)
	w = randomWitness(p)
	w.NullifierPath = append(w.NullifierPath, EmptySubtree())
	c.Assert(errors.Is(composer.Assign(w), ErrMalformedPath), qt.IsTrue)
	w = randomWitness(p)
	w.TokenBlind = nil
	c.Assert(errors.Is(composer.Assign(w), ErrMissingInput), qt.IsTrue)
	c.Assert(composer.Stage(), qt.Equals, StageUnassigned)

	c.Assert(composer.Assign(randomWitness(p)), qt.IsNil)
	c.Assert(composer.Stage(), qt.Equals, StageWitnessAssigned)
	c.Assert(errors.Is(composer.Assign(randomWitness(p)), ErrInvalidStage), qt.IsTrue)
	c.Assert(composer.Evaluate(), qt.IsNil)
	c.Assert(composer.Stage(), qt.Equals, StageRelationsEvaluated)
	_, err = composer.Emit()
	c.Assert(err, qt.IsNil)
	c.Assert(composer.Stage(), qt.Equals, StageInstanceEmitted)
	_, err = composer.Emit()
	c.Assert(errors.Is(err, ErrInvalidStage), qt.IsTrue)
	c.Assert(composer.Stage().String(), qt.Equals, "instance-emitted")
}

func TestComposerInstance(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()

	for i := 0; i < 3; i++ {
		w := randomWitness(p)
		composer, err := Compose(p, w)
		c.Assert(err, qt.IsNil)
		r := composer.Relations()
		pi := composer.Instance()

		elems := pi.Elements()
		c.Assert(elems, qt.HasLen, PublicInstanceSize)
		vx, vy := r.ValueCommit.Point()
		sx, sy := r.SigningKey.Point()
		expected := []*big.Int{r.NullifierRoot, vx, vy, r.TokenCommit, r.CoinRoot, sx, sy}
		for j := range expected {
			c.Assert(elems[j].Cmp(expected[j]), qt.Equals, 0, qt.Commentf("element %d", j))
		}
		c.Assert(pi.Validate(p), qt.IsNil)

		// every relation matches its standalone function
		coin, err := CoinCommitment(p, w.Secret, w.Value, w.Token, w.SpendHook, w.UserData, w.CoinBlind)
		c.Assert(err, qt.IsNil)
		c.Assert(r.Coin.Cmp(coin), qt.Equals, 0)
		c.Assert(r.SigningKey.Equal(DeriveSigningKey(p, w.SignatureSecret)), qt.IsTrue)
		c.Assert(r.OwnerPublicKey.Equal(DerivePublicKey(p, w.Secret)), qt.IsTrue)
		c.Assert(r.NullifierRoot.Cmp(p.EmptyNode(p.NullifierTreeDepth)), qt.Equals, 0)

		known := KnownRoots{NullifierRoot: p.EmptyNode(p.NullifierTreeDepth), CoinRoot: r.CoinRoot}
		c.Assert(composer.CheckRoots(known), qt.IsNil)

		// the nullifier already in the set
		spent, err := SparseRoot(p, r.Nullifier, w.NullifierPath, r.Nullifier)
		c.Assert(err, qt.IsNil)
		known.NullifierRoot = spent
		c.Assert(errors.Is(composer.CheckRoots(known), ErrWitnessInconsistency), qt.IsTrue)
	}
}

func TestComposerReducesWitness(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	w := randomWitness(p)
	reduced, err := Compose(p, w)
	c.Assert(err, qt.IsNil)

	w.UserData = new(big.Int).Add(w.UserData, p.Field())
	w.Secret = new(big.Int).Add(w.Secret, p.Field())
	unreduced, err := Compose(p, w)
	c.Assert(err, qt.IsNil)
	c.Assert(unreduced.Instance().Equal(reduced.Instance()), qt.IsTrue)
	c.Assert(unreduced.Witness().Secret.Cmp(p.Field()), qt.Equals, -1)
}

func TestRelationsReduceScalars(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	w := randomWitness(p)
	w.Secret = new(big.Int).Add(w.Secret, p.Field())
	w.ValueBlind = new(big.Int).Add(w.ValueBlind, p.Field())
	w.SignatureSecret = new(big.Int).Add(w.SignatureSecret, p.Field())
	composer, err := Compose(p, w)
	c.Assert(err, qt.IsNil)
	rel := composer.Relations()

	coin, err := CoinCommitment(p, w.Secret, w.Value, w.Token, w.SpendHook, w.UserData, w.CoinBlind)
	c.Assert(err, qt.IsNil)
	c.Assert(coin.Cmp(rel.Coin), qt.Equals, 0)
	c.Assert(DerivePublicKey(p, w.Secret).Equal(rel.OwnerPublicKey), qt.IsTrue)
	c.Assert(CommitValue(p, w.Value, w.ValueBlind).Equal(rel.ValueCommit), qt.IsTrue)
	c.Assert(DeriveSigningKey(p, w.SignatureSecret).Equal(rel.SigningKey), qt.IsTrue)

	reduced := new(big.Int).Sub(w.ValueBlind, p.Field())
	c.Assert(CommitValue(p, 1, w.ValueBlind).Equal(CommitValue(p, 1, reduced)), qt.IsTrue)
}

func TestPublicInstanceEncoding(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	composer, err := Compose(p, randomWitness(p))
	c.Assert(err, qt.IsNil)
	pi := composer.Instance()

	data := pi.Bytes()
	c.Assert(data, qt.HasLen, PublicInstanceSize*SerializedFieldSize)
	decoded, err := DeserializePublicInstance(p, data)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Equal(pi), qt.IsTrue)
	_, err = DeserializePublicInstance(p, data[:len(data)-1])
	c.Assert(errors.Is(err, ErrInstanceFormat), qt.IsTrue)

	jsonData, err := json.Marshal(pi)
	c.Assert(err, qt.IsNil)
	fromJSON := &PublicInstance{}
	c.Assert(json.Unmarshal(jsonData, fromJSON), qt.IsNil)
	c.Assert(fromJSON.Equal(pi), qt.IsTrue)
	c.Assert(json.Unmarshal([]byte(`["1","2"]`), fromJSON), qt.ErrorIs, ErrInstanceFormat)

	d1, err := pi.Digest()
	c.Assert(err, qt.IsNil)
	d2, err := decoded.Digest()
	c.Assert(err, qt.IsNil)
	c.Assert(d1.Cmp(d2), qt.Equals, 0)

	// an off-curve signing key is a format error
	bad := pi.Elements()
	bad[5] = new(big.Int).Add(bad[5], big.NewInt(1))
	_, err = PublicInstanceFromElements(p, bad)
	c.Assert(errors.Is(err, ErrInstanceFormat), qt.IsTrue)
}

func TestProposeParams(t *testing.T) {
	c := qt.New(t)
	p := DefaultParams()
	token, tokenBlind := big.NewInt(42), util.RandomFieldElement()

	var inputs []*ProposeParamsInput
	var blinds []*big.Int
	total := uint64(0)
	for _, value := range []uint64{100, 250, 7} {
		w := randomWitness(p)
		w.Value, w.Token, w.TokenBlind = value, token, tokenBlind
		composer, err := Compose(p, w)
		c.Assert(err, qt.IsNil)
		in, err := composer.Instance().ProposeParams(p)
		c.Assert(err, qt.IsNil)
		c.Assert(in.ValueCommit.Equal(composer.Relations().ValueCommit), qt.IsTrue)
		inputs = append(inputs, in)
		blinds = append(blinds, w.ValueBlind)
		total += value
	}
	sum, err := TotalValueCommit(p, inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(sum.Equal(CommitValue(p, total, SumValueBlinds(p, blinds...))), qt.IsTrue)

	// an input with another token blind is rejected
	w := randomWitness(p)
	w.Token = token
	composer, err := Compose(p, w)
	c.Assert(err, qt.IsNil)
	in, err := composer.Instance().ProposeParams(p)
	c.Assert(err, qt.IsNil)
	_, err = TotalValueCommit(p, append(inputs, in))
	c.Assert(errors.Is(err, ErrWitnessInconsistency), qt.IsTrue)
	_, err = TotalValueCommit(p, nil)
	c.Assert(errors.Is(err, ErrMissingInput), qt.IsTrue)
}
