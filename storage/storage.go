// storage package contains the artifacts produced and consumed by the
// proposal prover that are kept in the database. The following prefixes are
// used:
//   - 'k/' for circuit keys (constraint system, proving and verifying key)
//   - 'p/' for proven proposal bundles, keyed by their instance digest
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	keysPrefix     = []byte("k/")
	proposalPrefix = []byte("p/")
)

const (
	// maxKeySize is the maximum size of the key in bytes. It is used to
	// generate the key of the artifacts stored in the database by truncating
	// the hash of the artifact itself.
	maxKeySize = 12
)

// ErrNotFound is returned when the requested artifact is not stored.
var ErrNotFound = errors.New("not found")

// Storage wraps the database with typed accessors for every artifact.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}
