package proposeinput

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/std/algebra/native/twistededwards"

	"github.com/vocdoni/dao-z-sandbox/proposal"
)

// Assignment returns the full circuit assignment of a composer whose public
// instance has been emitted.
func Assignment(c *proposal.Composer) (*Circuit, error) {
	if c.Stage() != proposal.StageInstanceEmitted {
		return nil, fmt.Errorf("%w: composer is %s", proposal.ErrInvalidStage, c.Stage())
	}
	w := c.Witness()
	coinPath, err := CoinPathFromMerklePath(w.CoinPath)
	if err != nil {
		return nil, err
	}
	nullifierPath, err := NullifierPathFromSparsePath(w.NullifierPath)
	if err != nil {
		return nil, err
	}
	assignment := PublicAssignment(c.Instance())
	assignment.Secret = w.Secret
	assignment.Value = new(big.Int).SetUint64(w.Value)
	assignment.Token = w.Token
	assignment.SpendHook = w.SpendHook
	assignment.UserData = w.UserData
	assignment.CoinBlind = w.CoinBlind
	assignment.ValueBlind = w.ValueBlind
	assignment.TokenBlind = w.TokenBlind
	assignment.SignatureSecret = w.SignatureSecret
	assignment.LeafPos = new(big.Int).SetUint64(w.LeafPos)
	assignment.CoinPath = coinPath
	assignment.NullifierPath = nullifierPath
	return assignment, nil
}

// PublicAssignment returns an assignment with only the public inputs set,
// the one a verifier builds its public witness from.
func PublicAssignment(pi *proposal.PublicInstance) *Circuit {
	return &Circuit{
		NullifierRoot:   pi.NullifierRoot,
		ValueCommit:     twistededwards.Point{X: pi.ValueCommitX, Y: pi.ValueCommitY},
		TokenCommit:     pi.TokenCommit,
		CoinRoot:        pi.CoinRoot,
		SignaturePublic: twistededwards.Point{X: pi.SigPubX, Y: pi.SigPubY},
	}
}
