package types

import (
	"fmt"

	"github.com/vocdoni/dao-z-sandbox/crypto/hash/poseidon"
)

// TokenIDFromBytes maps an arbitrary identifier (a contract address, a
// ticker...) to a field element usable as the token attribute of a coin.
func TokenIDFromBytes(id []byte) (*BigInt, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("empty token identifier")
	}
	h, err := poseidon.HashBytes(id)
	if err != nil {
		return nil, fmt.Errorf("token id: %w", err)
	}
	return (*BigInt)(h), nil
}
