package proposal

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
)

// Coin holds the attributes committed to by a coin. Only its commitment
// leaves the prover.
type Coin struct {
	OwnerPublicKey ecc.Point
	Value          uint64
	Token          *big.Int
	SpendHook      *big.Int
	UserData       *big.Int
	Blind          *big.Int
}

// DerivePublicKey returns (secret mod Fr)*NullifierBase, the public key
// owning the coins of secret.
func DerivePublicKey(p *Params, secret *big.Int) ecc.Point {
	pub := p.Generators.NullifierBase.New()
	pub.ScalarMult(p.Generators.NullifierBase, p.reduce(secret))
	return pub
}

// NewCoin builds the coin owned by the public key of secret.
func NewCoin(p *Params, secret *big.Int, value uint64, token, spendHook, userData, blind *big.Int) *Coin {
	return &Coin{
		OwnerPublicKey: DerivePublicKey(p, secret),
		Value:          value,
		Token:          token,
		SpendHook:      spendHook,
		UserData:       userData,
		Blind:          blind,
	}
}

// Commitment returns
//
//	H(pub.x, pub.y, value, token, spend_hook, user_data, blind)
func (c *Coin) Commitment(p *Params) (*big.Int, error) {
	if c.OwnerPublicKey == nil || c.Token == nil || c.SpendHook == nil || c.UserData == nil || c.Blind == nil {
		return nil, fmt.Errorf("%w: incomplete coin", ErrMissingInput)
	}
	x, y := c.OwnerPublicKey.Point()
	return p.hash(x, y, new(big.Int).SetUint64(c.Value), c.Token, c.SpendHook, c.UserData, c.Blind)
}

// CoinCommitment derives the owner public key from secret and returns the
// commitment of the resulting coin.
func CoinCommitment(p *Params, secret *big.Int, value uint64, token, spendHook, userData, blind *big.Int) (*big.Int, error) {
	return NewCoin(p, secret, value, token, spendHook, userData, blind).Commitment(p)
}

// DeriveNullifier returns H(secret, coin), the tag published once the coin
// is spent.
func DeriveNullifier(p *Params, secret, coin *big.Int) (*big.Int, error) {
	if secret == nil || coin == nil {
		return nil, fmt.Errorf("%w: nullifier needs secret and coin", ErrMissingInput)
	}
	return p.hash(secret, coin)
}
