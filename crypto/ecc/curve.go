package ecc

import (
	"math/big"

	"github.com/vocdoni/dao-z-sandbox/types"
)

// Point defines the operations the proposal relations need from the
// elliptic curve group elements, in affine coordinates.
type Point interface {
	// New returns a new point set to the identity element.
	New() Point

	// Order returns the order of the prime order subgroup.
	Order() *big.Int

	// Add adds a and b and stores the result in the receiver.
	Add(a, b Point)

	// ScalarMult multiplies a by the scalar and stores the result in the
	// receiver.
	ScalarMult(a Point, scalar *big.Int)

	// Marshal serializes the point into a byte slice.
	Marshal() []byte

	// Unmarshal deserializes a byte slice into the point. It fails if buf
	// does not encode a valid point.
	Unmarshal(buf []byte) error

	// Equal reports whether both points are the same.
	Equal(a Point) bool

	// Neg stores -a in the receiver.
	Neg(a Point)

	// SetZero sets the receiver to the identity element.
	SetZero()

	// Set copies a into the receiver.
	Set(a Point)

	// IsOnCurve reports whether the coordinates satisfy the curve equation.
	IsOnCurve() bool

	// String returns the coordinates as a human readable string.
	String() string

	// Point returns the X and Y coordinates.
	Point() (*big.Int, *big.Int)

	// SetPoint returns a new point with the coordinates provided. The
	// receiver is only used to select the curve.
	SetPoint(x, y *big.Int) Point
}

// PointEC is the JSON representation of a point.
type PointEC struct {
	X *types.BigInt `json:"x"`
	Y *types.BigInt `json:"y"`
}

// InSubgroup reports whether p is on the curve and belongs to the prime
// order subgroup.
func InSubgroup(p Point) bool {
	if !p.IsOnCurve() {
		return false
	}
	q := p.New()
	q.ScalarMult(p, p.Order())
	return q.Equal(p.New())
}
