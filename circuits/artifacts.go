package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/dao-z-sandbox/config"
	"github.com/vocdoni/dao-z-sandbox/log"
)

// ErrArtifactHash is returned when the content of an artifact does not
// match its expected sha256 hash.
var ErrArtifactHash = errors.New("artifact hash mismatch")

// Artifact is a circuit artifact (constraint system, proving or verifying
// key) identified by the sha256 hash of its content. The content is cached
// in config.KeysDir under the hex encoded hash and can be fetched from
// RemoteURL when it is not cached.
type Artifact struct {
	RemoteURL string
	Hash      []byte
	Content   []byte
}

// NewArtifact returns the artifact of the content provided with its hash set.
func NewArtifact(content []byte) *Artifact {
	hash := sha256.Sum256(content)
	return &Artifact{Hash: hash[:], Content: content}
}

// Load sets the content of the artifact from the local cache, downloading
// it first if it is not there and the artifact has a RemoteURL. It does
// nothing if the content is already loaded.
func (a *Artifact) Load(ctx context.Context) error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact hash not provided")
	}
	content, err := loadCached(a.Hash)
	if err != nil {
		return err
	}
	if content == nil {
		if a.RemoteURL == "" {
			return fmt.Errorf("artifact %x not cached and remote url not provided", a.Hash)
		}
		if content, err = download(ctx, a.Hash, a.RemoteURL); err != nil {
			return err
		}
	}
	a.Content = content
	return nil
}

// Store writes the content of the artifact to the local cache.
func (a *Artifact) Store() error {
	if len(a.Content) == 0 {
		return fmt.Errorf("empty artifact")
	}
	if len(a.Hash) == 0 {
		a.Hash = NewArtifact(a.Content).Hash
	}
	if err := checkHash(a.Content, a.Hash); err != nil {
		return err
	}
	return storeCached(a.Hash, a.Content)
}

// CircuitArtifacts groups the artifacts needed to prove and verify a circuit.
type CircuitArtifacts struct {
	ConstraintSystem *Artifact
	ProvingKey       *Artifact
	VerifyingKey     *Artifact
}

// LoadAll loads every artifact set concurrently.
func (ca *CircuitArtifacts) LoadAll(ctx context.Context) error {
	artifacts := []struct {
		name string
		a    *Artifact
	}{
		{"constraint system", ca.ConstraintSystem},
		{"proving key", ca.ProvingKey},
		{"verifying key", ca.VerifyingKey},
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, art := range artifacts {
		if art.a == nil {
			continue
		}
		g.Go(func() error {
			if err := art.a.Load(ctx); err != nil {
				return fmt.Errorf("error loading %s: %w", art.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func artifactPath(hash []byte) string {
	return filepath.Join(config.KeysDir, hex.EncodeToString(hash))
}

func checkHash(content, hash []byte) error {
	if !config.CheckHashes {
		return nil
	}
	got := sha256.Sum256(content)
	if !bytes.Equal(got[:], hash) {
		return fmt.Errorf("%w: expected %x, got %x", ErrArtifactHash, hash, got)
	}
	return nil
}

// loadCached returns nil content and nil error if the artifact is not cached.
func loadCached(hash []byte) ([]byte, error) {
	path := artifactPath(hash)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	if err := checkHash(content, hash); err != nil {
		return nil, fmt.Errorf("file %s: %w", path, err)
	}
	return content, nil
}

func storeCached(hash, content []byte) error {
	if err := os.MkdirAll(config.KeysDir, 0o755); err != nil {
		return fmt.Errorf("error creating the keys directory: %w", err)
	}
	path := artifactPath(hash)
	partial := path + ".partial"
	if err := os.WriteFile(partial, content, 0o644); err != nil {
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		return fmt.Errorf("error renaming file: %w", err)
	}
	log.Debugw("artifact cached", "path", path, "size", len(content))
	return nil
}

// download fetches the artifact, checks its hash and caches it.
func download(ctx context.Context, hash []byte, fileURL string) ([]byte, error) {
	if _, err := url.Parse(fileURL); err != nil {
		return nil, fmt.Errorf("error parsing the file URL provided: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating the file request: %w", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing the request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading file %s: http status: %d", fileURL, res.StatusCode)
	}
	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", fileURL, err)
	}
	if err := checkHash(content, hash); err != nil {
		return nil, err
	}
	log.Infow("artifact downloaded", "url", fileURL, "size", len(content))
	if err := storeCached(hash, content); err != nil {
		return nil, err
	}
	return content, nil
}
