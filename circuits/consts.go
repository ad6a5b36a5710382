package circuits

import "github.com/vocdoni/dao-z-sandbox/config"

// used across the circuits and their assignments
const (
	CoinTreeDepth      = config.CoinTreeDepth
	NullifierTreeDepth = config.NullifierTreeDepth
	PublicInstanceSize = config.PublicInstanceSize
	ValueBits          = 64
)
