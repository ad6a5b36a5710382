package storage

import (
	"fmt"

	"github.com/vocdoni/dao-z-sandbox/types"
)

// Proposal is a proven proposal input: its public instance and the
// serialized proof over it.
type Proposal struct {
	Instance []*types.BigInt `cbor:"0,keyasint"`
	Proof    []byte          `cbor:"1,keyasint"`
}

// SetProposal stores the proposal under the key provided, usually the digest
// of its public instance.
func (s *Storage) SetProposal(key []byte, p *Proposal) error {
	if len(key) == 0 {
		return fmt.Errorf("empty proposal key")
	}
	if p == nil || len(p.Instance) == 0 || len(p.Proof) == 0 {
		return fmt.Errorf("incomplete proposal")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	_, err := s.setArtifact(proposalPrefix, key, p)
	return err
}

// Proposal retrieves a proposal. It returns ErrNotFound if there is none
// under key.
func (s *Storage) Proposal(key []byte) (*Proposal, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	p := &Proposal{}
	if err := s.getArtifact(proposalPrefix, key, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProposals returns the keys of the stored proposals.
func (s *Storage) ListProposals() ([][]byte, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.listArtifacts(proposalPrefix)
}

// DeleteProposal removes a proposal. It returns ErrNotFound if there is none
// under key.
func (s *Storage) DeleteProposal(key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.deleteArtifact(proposalPrefix, key)
}
