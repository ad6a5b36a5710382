package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestRequestRetries(t *testing.T) {
	c := qt.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)
	srv.Close()

	// a single attempt fails without waiting
	cli.SetRetries(1)
	start := time.Now()
	_, _, err = cli.Request(context.Background(), HTTPGET, nil, "ping")
	c.Assert(err, qt.ErrorMatches, "http request ultimately failed after retries: .*")
	c.Assert(time.Since(start) < retryDelay, qt.IsTrue)

	// the delay only separates attempts
	cli.SetRetries(2)
	start = time.Now()
	_, _, err = cli.Request(context.Background(), HTTPGET, nil, "ping")
	c.Assert(err, qt.IsNotNil)
	elapsed := time.Since(start)
	c.Assert(elapsed >= retryDelay, qt.IsTrue)
	c.Assert(elapsed < 2*retryDelay, qt.IsTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = cli.Request(ctx, HTTPGET, nil, "ping")
	c.Assert(err, qt.IsNotNil)
}
