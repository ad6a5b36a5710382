package prover

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
)

// fpSize is the size of a BN254 base field element in the raw proof encoding.
const fpSize = 4 * 8

// SolidityProof is the proof in the layout expected by the verifier contract
// generated with ExportSolidity.
type SolidityProof struct {
	Ar  [2]*big.Int    `json:"Ar"`
	Bs  [2][2]*big.Int `json:"Bs"`
	Krs [2]*big.Int    `json:"Krs"`
}

// SolidityProof splits the raw uncompressed proof into its coordinates.
func (b *Bundle) SolidityProof() (*SolidityProof, error) {
	if b.Proof == nil {
		return nil, fmt.Errorf("incomplete bundle")
	}
	var buf bytes.Buffer
	if _, err := b.Proof.WriteRawTo(&buf); err != nil {
		return nil, err
	}
	raw := buf.Bytes()
	if len(raw) < fpSize*8 {
		return nil, fmt.Errorf("raw proof too short: %d bytes", len(raw))
	}
	word := func(i int) *big.Int {
		return new(big.Int).SetBytes(raw[fpSize*i : fpSize*(i+1)])
	}
	return &SolidityProof{
		Ar:  [2]*big.Int{word(0), word(1)},
		Bs:  [2][2]*big.Int{{word(2), word(3)}, {word(4), word(5)}},
		Krs: [2]*big.Int{word(6), word(7)},
	}, nil
}

// ExportSolidity writes the solidity verifier contract of the verifying key.
func (pr *Prover) ExportSolidity(w io.Writer) error {
	return pr.vk.ExportSolidity(w)
}
