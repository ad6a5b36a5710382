// Package poseidon builds the digests of the node on top of the iden3
// Poseidon hash over the BN254 scalar field.
package poseidon

import (
	"errors"
	"fmt"
	"math/big"

	iden3 "github.com/iden3/go-iden3-crypto/poseidon"
)

const (
	// width is the largest number of inputs of a single Poseidon call.
	width = 16
	// MaxInputs is the largest number of elements MultiHash accepts.
	MaxInputs = width * width
	// bytesChunkSize keeps every chunk of HashBytes below the modulus.
	bytesChunkSize = 31
)

var (
	ErrNoInputs      = errors.New("poseidon: no inputs")
	ErrTooManyInputs = errors.New("poseidon: too many inputs")
	ErrTooManyBytes  = errors.New("poseidon: data too long")
)

// MultiHash hashes up to MaxInputs field elements. A single chunk of up to
// 16 elements is hashed directly, otherwise the digest is the hash of the
// hashes of every chunk.
func MultiHash(inputs ...*big.Int) (*big.Int, error) {
	switch {
	case len(inputs) == 0:
		return nil, ErrNoInputs
	case len(inputs) > MaxInputs:
		return nil, fmt.Errorf("%w: %d", ErrTooManyInputs, len(inputs))
	case len(inputs) <= width:
		return iden3.Hash(inputs)
	}
	digests := make([]*big.Int, 0, (len(inputs)+width-1)/width)
	for start := 0; start < len(inputs); start += width {
		d, err := iden3.Hash(inputs[start:min(start+width, len(inputs))])
		if err != nil {
			return nil, fmt.Errorf("poseidon: chunk %d: %w", start/width, err)
		}
		digests = append(digests, d)
	}
	return iden3.Hash(digests)
}

// HashBytes hashes arbitrary bytes. The data is split in 31 byte big-endian
// chunks and hashed with MultiHash after its length, so inputs that only
// differ in leading zeros get distinct digests.
func HashBytes(data []byte) (*big.Int, error) {
	if len(data) == 0 {
		return nil, ErrNoInputs
	}
	inputs := []*big.Int{big.NewInt(int64(len(data)))}
	for start := 0; start < len(data); start += bytesChunkSize {
		inputs = append(inputs, new(big.Int).SetBytes(data[start:min(start+bytesChunkSize, len(data))]))
	}
	if len(inputs) > MaxInputs {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooManyBytes, len(data))
	}
	return MultiHash(inputs...)
}
