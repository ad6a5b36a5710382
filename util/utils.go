package util

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// RandomBytes generates a random byte slice of length n.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomInt generates a random integer between min and max.
func RandomInt(min, max int) int {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		panic(err)
	}
	return int(num.Int64()) + min
}

// RandomFieldElement returns a uniformly sampled element of the BN254
// scalar field, used for blinds and secrets.
func RandomFieldElement() *big.Int {
	n, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		panic(err)
	}
	return n
}

// PrettyHex returns a short hex representation of v, enough to tell values
// apart in logs. Values that are not numbers are printed as is.
func PrettyHex(v any) string {
	var b *big.Int
	switch t := v.(type) {
	case *big.Int:
		b = t
	case int:
		b = big.NewInt(int64(t))
	case uint64:
		b = new(big.Int).SetUint64(t)
	default:
		return fmt.Sprint(v)
	}
	h := fmt.Sprintf("%x", b)
	if len(h) <= 8 {
		return h
	}
	return h[:4] + ".." + h[len(h)-4:]
}
