package proposal

import (
	"fmt"
	"math/big"
)

// Witness holds every private input of the proposal input gadget.
type Witness struct {
	// Secret owns the coin and derives its nullifier.
	Secret *big.Int
	// Coin attributes.
	Value     uint64
	Token     *big.Int
	SpendHook *big.Int
	UserData  *big.Int
	CoinBlind *big.Int
	// Blinds of the value and token commitments.
	ValueBlind *big.Int
	TokenBlind *big.Int
	// Position and path of the coin in the coin tree.
	LeafPos  uint64
	CoinPath MerklePath
	// Path of the nullifier slot in the nullifier tree.
	NullifierPath SparseMerklePath
	// SignatureSecret derives the key that signs the proposal.
	SignatureSecret *big.Int
}

// normalized checks the witness against the params and returns a copy with
// every field value reduced into the field, so native and in-circuit
// arithmetic agree.
func (w *Witness) normalized(p *Params) (*Witness, error) {
	scalars := []struct {
		name  string
		value *big.Int
	}{
		{"secret", w.Secret},
		{"token", w.Token},
		{"spend hook", w.SpendHook},
		{"user data", w.UserData},
		{"coin blind", w.CoinBlind},
		{"value blind", w.ValueBlind},
		{"token blind", w.TokenBlind},
		{"signature secret", w.SignatureSecret},
	}
	for _, s := range scalars {
		if s.value == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, s.name)
		}
	}
	if err := checkMerklePath(p, w.LeafPos, w.CoinPath); err != nil {
		return nil, err
	}
	if err := checkSparsePath(p, w.NullifierPath); err != nil {
		return nil, err
	}
	reduce := p.reduce
	out := &Witness{
		Secret:          reduce(w.Secret),
		Value:           w.Value,
		Token:           reduce(w.Token),
		SpendHook:       reduce(w.SpendHook),
		UserData:        reduce(w.UserData),
		CoinBlind:       reduce(w.CoinBlind),
		ValueBlind:      reduce(w.ValueBlind),
		TokenBlind:      reduce(w.TokenBlind),
		LeafPos:         w.LeafPos,
		CoinPath:        make(MerklePath, len(w.CoinPath)),
		NullifierPath:   make(SparseMerklePath, len(w.NullifierPath)),
		SignatureSecret: reduce(w.SignatureSecret),
	}
	for i, s := range w.CoinPath {
		out.CoinPath[i] = reduce(s)
	}
	for i, step := range w.NullifierPath {
		if step.IsEmpty() {
			out.NullifierPath[i] = EmptySubtree()
			continue
		}
		out.NullifierPath[i] = ExplicitSibling(reduce(step.Sibling()))
	}
	return out, nil
}

// Coin returns the coin described by the witness.
func (w *Witness) Coin(p *Params) *Coin {
	return NewCoin(p, w.Secret, w.Value, w.Token, w.SpendHook, w.UserData, w.CoinBlind)
}
