package storage

import "fmt"

// CircuitKeys holds the serialized artifacts of a compiled circuit.
type CircuitKeys struct {
	ConstraintSystem []byte `cbor:"0,keyasint"`
	ProvingKey       []byte `cbor:"1,keyasint"`
	VerifyingKey     []byte `cbor:"2,keyasint"`
}

// SetCircuitKeys stores the keys of the circuit identified by name.
func (s *Storage) SetCircuitKeys(name string, keys *CircuitKeys) error {
	if keys == nil || len(keys.ConstraintSystem) == 0 || len(keys.ProvingKey) == 0 || len(keys.VerifyingKey) == 0 {
		return fmt.Errorf("incomplete circuit keys for %q", name)
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	_, err := s.setArtifact(keysPrefix, []byte(name), keys)
	return err
}

// CircuitKeys loads the keys of the circuit identified by name. Returns
// ErrNotFound if the keys do not exist.
func (s *Storage) CircuitKeys(name string) (*CircuitKeys, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	keys := &CircuitKeys{}
	if err := s.getArtifact(keysPrefix, []byte(name), keys); err != nil {
		return nil, fmt.Errorf("could not read circuit keys: %w", err)
	}
	return keys, nil
}
