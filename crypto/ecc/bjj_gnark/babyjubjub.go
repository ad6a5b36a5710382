// Package bjj implements the ecc.Point interface over BabyJubJub as defined
// by gnark-crypto, the twisted Edwards curve embedded in the BN254 scalar
// field. Coordinates are kept in the gnark-crypto form so they match the
// values computed in-circuit by gnark std/algebra/native/twistededwards.
package bjj

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	babyjubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/ethereum/go-ethereum/crypto"
	curve "github.com/vocdoni/dao-z-sandbox/crypto/ecc"
	"github.com/vocdoni/dao-z-sandbox/types"
)

const CurveType = "bjj_gnark"

// maxHashToCurveAttempts bounds the try-and-increment loop of HashToCurve.
const maxHashToCurveAttempts = 256

// ErrHashToCurve is returned when no point is found for a domain.
var ErrHashToCurve = errors.New("hash to curve failed")

var Params babyjubjub.CurveParams

var cofactor *big.Int

func init() {
	Params = babyjubjub.GetEdwardsCurve()
	cofactor = Params.Cofactor.BigInt(new(big.Int))
}

// BJJ is the affine representation of the BabyJubJub group element.
type BJJ struct {
	inner *babyjubjub.PointAffine
}

// New creates a new BJJ point set to the identity element.
func New() curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.SetZero()
	return p
}

// New creates a new BJJ point set to the identity element.
func (g *BJJ) New() curve.Point {
	return New()
}

// Order returns the order of the BabyJubJub curve subgroup.
func (g *BJJ) Order() *big.Int {
	return new(big.Int).Set(&Params.Order)
}

// Add performs the addition of two points and stores the result in g.
func (g *BJJ) Add(a, b curve.Point) {
	g.inner.Add(a.(*BJJ).inner, b.(*BJJ).inner)
}

// ScalarMult performs scalar multiplication of a point by a scalar.
func (g *BJJ) ScalarMult(a curve.Point, scalar *big.Int) {
	g.inner.ScalarMultiplication(a.(*BJJ).inner, scalar)
}

// Equal checks if the given point is equal to the current point.
func (g *BJJ) Equal(a curve.Point) bool {
	return g.inner.Equal(a.(*BJJ).inner)
}

// Neg negates the given point and stores the result in g.
func (g *BJJ) Neg(a curve.Point) {
	g.inner.Neg(a.(*BJJ).inner)
}

// SetZero sets the current point to the identity element (0, 1).
func (g *BJJ) SetZero() {
	g.inner.X.SetZero()
	g.inner.Y.SetOne()
}

// Set sets g to the value of another point.
func (g *BJJ) Set(a curve.Point) {
	g.inner.Set(a.(*BJJ).inner)
}

// SetGenerator sets the point to the gnark-crypto BabyJubJub base point.
func (g *BJJ) SetGenerator() {
	g.inner.Set(&Params.Base)
}

// IsOnCurve reports whether the point satisfies the curve equation.
func (g *BJJ) IsOnCurve() bool {
	return g.inner.IsOnCurve()
}

// String returns a string representation of the point coordinates.
func (g *BJJ) String() string {
	x, y := g.Point()
	return fmt.Sprintf("%s,%s", x.String(), y.String())
}

// Marshal serializes the point in its compressed form.
func (g *BJJ) Marshal() []byte {
	return g.inner.Marshal()
}

// Unmarshal deserializes a compressed point.
func (g *BJJ) Unmarshal(buf []byte) error {
	if g.inner == nil {
		g.inner = new(babyjubjub.PointAffine)
	}
	return g.inner.Unmarshal(buf)
}

// MarshalJSON serializes the point coordinates into JSON.
func (g *BJJ) MarshalJSON() ([]byte, error) {
	x, y := g.Point()
	return json.Marshal(&curve.PointEC{X: types.NewBigInt(x), Y: types.NewBigInt(y)})
}

// UnmarshalJSON deserializes the point coordinates from JSON.
func (g *BJJ) UnmarshalJSON(buf []byte) error {
	points := &curve.PointEC{}
	if err := json.Unmarshal(buf, points); err != nil {
		return err
	}
	if points.X == nil || points.Y == nil {
		return fmt.Errorf("missing point coordinates")
	}
	if g.inner == nil {
		g.inner = new(babyjubjub.PointAffine)
	}
	g.inner.X.SetBigInt(points.X.MathBigInt())
	g.inner.Y.SetBigInt(points.Y.MathBigInt())
	if !g.inner.IsOnCurve() {
		return fmt.Errorf("point %s is not on the curve", g.String())
	}
	return nil
}

// Point returns the X and Y coordinates of the point.
func (g *BJJ) Point() (*big.Int, *big.Int) {
	x, y := new(big.Int), new(big.Int)
	g.inner.X.BigInt(x)
	g.inner.Y.BigInt(y)
	return x, y
}

// SetPoint returns a new point with the X and Y coordinates provided. The
// coordinates are not checked, use IsOnCurve for that.
func (g *BJJ) SetPoint(x, y *big.Int) curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.inner.X.SetBigInt(x)
	p.inner.Y.SetBigInt(y)
	return p
}

func (g *BJJ) Type() string {
	return CurveType
}

// HashToCurve deterministically maps the domain to a point of the prime
// order subgroup with unknown discrete logarithm. It hashes the domain with
// an increasing counter using Keccak256 to get a candidate y, solves the
// curve equation for x and clears the cofactor.
func HashToCurve(domain []byte) (curve.Point, error) {
	one := fr.One()
	var ctr [4]byte
	for i := uint32(0); i < maxHashToCurveAttempts; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		var y, y2, num, den, x2, x fr.Element
		y.SetBytes(crypto.Keccak256(domain, ctr[:]))
		// x^2 = (1 - y^2) / (a - d*y^2)
		y2.Square(&y)
		num.Sub(&one, &y2)
		den.Mul(&Params.D, &y2)
		den.Sub(&Params.A, &den)
		if den.IsZero() {
			continue
		}
		x2.Div(&num, &den)
		if x.Sqrt(&x2) == nil {
			continue
		}
		p := babyjubjub.PointAffine{X: x, Y: y}
		if !p.IsOnCurve() {
			continue
		}
		p.ScalarMultiplication(&p, cofactor)
		if p.X.IsZero() {
			continue
		}
		return &BJJ{inner: &p}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrHashToCurve, domain)
}
