package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/gnark-crypto-primitives/utils"

	curve "github.com/vocdoni/dao-z-sandbox/crypto/ecc"
)

// These are the curves used by the proposal input circuit

// native bn254, its scalar field embeds BabyJubJub
const ProposeInputCurve = ecc.BN254

// EmbeddedCurve identifies BabyJubJub for the native twistededwards gadgets.
const EmbeddedCurve = tedwards.BN254

// HashFn is the in-circuit hash matching the native proposal hasher.
var HashFn utils.Hasher = utils.MiMCHasher

// PointVars returns the coordinates of p as circuit values.
func PointVars(p curve.Point) twistededwards.Point {
	x, y := p.Point()
	return twistededwards.Point{X: x, Y: y}
}
