package circuits

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/dao-z-sandbox/config"
)

var (
	dummyPath       = "dummy.key"
	dummyKeyContent = []byte("dummy content")
)

func testDummyKeyServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, dummyPath, time.Now(), bytes.NewReader(dummyKeyContent))
	}))
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "dao-keys")
	if err != nil {
		panic(err)
	}
	config.KeysDir = dir
	code := m.Run()
	if err := os.RemoveAll(dir); err != nil {
		panic(err)
	}
	os.Exit(code)
}

func TestLoadArtifact(t *testing.T) {
	c := qt.New(t)
	server := testDummyKeyServer()
	defer server.Close()
	remoteURL, err := url.JoinPath(server.URL, dummyPath)
	c.Assert(err, qt.IsNil)

	dummyKey := &Artifact{
		RemoteURL: remoteURL,
		Hash:      NewArtifact(dummyKeyContent).Hash,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// not cached, downloaded
	c.Assert(dummyKey.Load(ctx), qt.IsNil)
	c.Assert(dummyKey.Content, qt.DeepEquals, dummyKeyContent)
	// cached, loaded without the remote
	cached := &Artifact{Hash: dummyKey.Hash}
	c.Assert(cached.Load(ctx), qt.IsNil)
	c.Assert(cached.Content, qt.DeepEquals, dummyKeyContent)
	// wrong hash
	wrong := &Artifact{RemoteURL: remoteURL, Hash: []byte("wrong hash")}
	err = wrong.Load(ctx)
	c.Assert(errors.Is(err, ErrArtifactHash), qt.IsTrue)
	// no hash
	c.Assert((&Artifact{RemoteURL: remoteURL}).Load(ctx), qt.IsNotNil)
}

func TestStoreArtifact(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	content := []byte("verifying key")
	a := &Artifact{Content: content}
	c.Assert(a.Store(), qt.IsNil)
	c.Assert(a.Hash, qt.DeepEquals, NewArtifact(content).Hash)

	ca := &CircuitArtifacts{VerifyingKey: &Artifact{Hash: a.Hash}}
	c.Assert(ca.LoadAll(ctx), qt.IsNil)
	c.Assert(ca.VerifyingKey.Content, qt.DeepEquals, content)

	// not cached and no remote
	ca = &CircuitArtifacts{ProvingKey: &Artifact{Hash: NewArtifact([]byte("other")).Hash}}
	c.Assert(ca.LoadAll(ctx), qt.IsNotNil)

	bad := &Artifact{Content: content, Hash: []byte("bad")}
	c.Assert(errors.Is(bad.Store(), ErrArtifactHash), qt.IsTrue)
}
