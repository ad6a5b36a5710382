package proposal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/dao-z-sandbox/config"
	"github.com/vocdoni/dao-z-sandbox/crypto/ecc"
	"github.com/vocdoni/dao-z-sandbox/crypto/hash/poseidon"
	"github.com/vocdoni/dao-z-sandbox/types"
)

const (
	// PublicInstanceSize is the number of elements of a public instance.
	PublicInstanceSize = config.PublicInstanceSize
	// SerializedFieldSize is the size in bytes of a serialized element.
	SerializedFieldSize = 32
)

// PublicInstance is the public input of a proposal input proof. Its
// elements are always serialized in this order:
//
//	[nullifier_root, value_commit_x, value_commit_y, token_commit,
//	 coin_root, sig_pub_x, sig_pub_y]
type PublicInstance struct {
	NullifierRoot *big.Int
	ValueCommitX  *big.Int
	ValueCommitY  *big.Int
	TokenCommit   *big.Int
	CoinRoot      *big.Int
	SigPubX       *big.Int
	SigPubY       *big.Int
}

var _ types.Serializer[*big.Int] = (*PublicInstance)(nil)

// Serialize returns the elements of the instance in wire order.
func (pi *PublicInstance) Serialize() []*big.Int {
	return []*big.Int{
		pi.NullifierRoot,
		pi.ValueCommitX,
		pi.ValueCommitY,
		pi.TokenCommit,
		pi.CoinRoot,
		pi.SigPubX,
		pi.SigPubY,
	}
}

// Elements returns a copy of the elements of the instance in wire order.
func (pi *PublicInstance) Elements() []*big.Int {
	elems := pi.Serialize()
	out := make([]*big.Int, len(elems))
	for i, e := range elems {
		if e != nil {
			out[i] = new(big.Int).Set(e)
		}
	}
	return out
}

// PublicInstanceFromElements builds and validates an instance from its
// elements in wire order.
func PublicInstanceFromElements(p *Params, elems []*big.Int) (*PublicInstance, error) {
	if len(elems) != PublicInstanceSize {
		return nil, fmt.Errorf("%w: got %d elements, expected %d", ErrInstanceFormat, len(elems), PublicInstanceSize)
	}
	pi := &PublicInstance{
		NullifierRoot: elems[0],
		ValueCommitX:  elems[1],
		ValueCommitY:  elems[2],
		TokenCommit:   elems[3],
		CoinRoot:      elems[4],
		SigPubX:       elems[5],
		SigPubY:       elems[6],
	}
	if err := pi.Validate(p); err != nil {
		return nil, err
	}
	return pi, nil
}

// Validate checks that every element is in the field and that both points
// belong to the prime order subgroup of the curve.
func (pi *PublicInstance) Validate(p *Params) error {
	field := p.Field()
	for i, e := range pi.Serialize() {
		if e == nil {
			return fmt.Errorf("%w: element %d is missing", ErrInstanceFormat, i)
		}
		if e.Sign() < 0 || e.Cmp(field) >= 0 {
			return fmt.Errorf("%w: element %d is not a field element", ErrInstanceFormat, i)
		}
	}
	if !ecc.InSubgroup(pi.ValueCommit(p)) {
		return fmt.Errorf("%w: value commitment is not a valid curve point", ErrInstanceFormat)
	}
	if !ecc.InSubgroup(pi.SignaturePublic(p)) {
		return fmt.Errorf("%w: signature public key is not a valid curve point", ErrInstanceFormat)
	}
	return nil
}

// ValueCommit returns the value commitment as a curve point. The point is
// not checked, see Validate.
func (pi *PublicInstance) ValueCommit(p *Params) ecc.Point {
	return p.Generators.ValueBaseShort.SetPoint(pi.ValueCommitX, pi.ValueCommitY)
}

// SignaturePublic returns the signing public key as a curve point. The
// point is not checked, see Validate.
func (pi *PublicInstance) SignaturePublic(p *Params) ecc.Point {
	return p.Generators.NullifierBase.SetPoint(pi.SigPubX, pi.SigPubY)
}

// Equal reports whether both instances hold the same elements.
func (pi *PublicInstance) Equal(other *PublicInstance) bool {
	a, b := pi.Serialize(), other.Serialize()
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}

// Bytes returns 7*32 bytes, every element encoded as little-endian.
func (pi *PublicInstance) Bytes() []byte {
	buf := bytes.Buffer{}
	for _, e := range pi.Serialize() {
		buf.Write(arbo.BigIntToBytes(SerializedFieldSize, e))
	}
	return buf.Bytes()
}

// DeserializePublicInstance reconstructs and validates an instance from
// the output of Bytes.
func DeserializePublicInstance(p *Params, data []byte) (*PublicInstance, error) {
	if len(data) != PublicInstanceSize*SerializedFieldSize {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInstanceFormat,
			len(data), PublicInstanceSize*SerializedFieldSize)
	}
	elems := make([]*big.Int, PublicInstanceSize)
	for i := range elems {
		elems[i] = arbo.BytesToBigInt(data[i*SerializedFieldSize : (i+1)*SerializedFieldSize])
	}
	return PublicInstanceFromElements(p, elems)
}

// Digest returns the Poseidon hash of the elements, a compact identifier of
// the instance.
func (pi *PublicInstance) Digest() (*big.Int, error) {
	return poseidon.MultiHash(pi.Serialize()...)
}

// MarshalJSON encodes the instance as the list of its elements.
func (pi *PublicInstance) MarshalJSON() ([]byte, error) {
	return json.Marshal(types.BigIntSlice(pi.Serialize()))
}

// UnmarshalJSON decodes a list of elements. The result is not validated
// since that needs the deployment params.
func (pi *PublicInstance) UnmarshalJSON(data []byte) error {
	var elems []*types.BigInt
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) != PublicInstanceSize {
		return fmt.Errorf("%w: got %d elements, expected %d", ErrInstanceFormat, len(elems), PublicInstanceSize)
	}
	e := types.MathBigIntSlice(elems)
	*pi = PublicInstance{
		NullifierRoot: e[0],
		ValueCommitX:  e[1],
		ValueCommitY:  e[2],
		TokenCommit:   e[3],
		CoinRoot:      e[4],
		SigPubX:       e[5],
		SigPubY:       e[6],
	}
	return nil
}
