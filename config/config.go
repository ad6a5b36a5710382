// Package config holds the deployment constants of the proposal input
// gadget and the few settings that can be overridden from the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// CoinTreeDepth is the depth of the dense coin-set tree.
	CoinTreeDepth = 32
	// NullifierTreeDepth is the depth of the sparse nullifier-set tree, it
	// matches the bit-width of the BN254 scalar field so every nullifier
	// has its own leaf.
	NullifierTreeDepth = 254
	// PublicInstanceSize is the number of field elements exposed by a
	// proposal input proof.
	PublicInstanceSize = 7
	// CircuitSizeHint is the log2 row count the gadget is sized for. Groth16
	// derives its own sizes, so it is informative only.
	CircuitSizeHint = 14
)

// Domain tags used to derive the fixed generators with hash-to-curve.
const (
	NullifierBaseDomain  = "dao-z-sandbox/proposal/nullifier-base"
	ValueBaseShortDomain = "dao-z-sandbox/proposal/value-base-short"
	RandomBaseDomain     = "dao-z-sandbox/proposal/random-base"
)

// Default log settings.
const (
	DefaultLogLevel  = "info"
	DefaultLogOutput = "stderr"
)

var (
	// KeysDir is the directory where exported circuit artifacts are written.
	// It defaults to DAO_KEYS_DIR or to a cache directory in the user home.
	KeysDir string
	// LogLevel is the level used by the log package on init. It defaults to
	// DAO_LOG_LEVEL or DefaultLogLevel.
	LogLevel = DefaultLogLevel
	// CheckHashes enables the integrity check of the cached circuit
	// artifacts. Set DAO_CHECK_HASHES to false or 0 to disable it.
	CheckHashes = true
)

func init() {
	if lvl := os.Getenv("DAO_LOG_LEVEL"); lvl != "" {
		LogLevel = strings.ToLower(lvl)
	}
	if check := strings.ToLower(os.Getenv("DAO_CHECK_HASHES")); check == "false" || check == "0" {
		CheckHashes = false
	}
	if dir := os.Getenv("DAO_KEYS_DIR"); dir != "" {
		KeysDir = dir
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		KeysDir = filepath.Join(os.TempDir(), "dao-z-sandbox")
		return
	}
	KeysDir = filepath.Join(home, ".cache", "dao-z-sandbox")
}
