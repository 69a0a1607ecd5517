package main

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainServer_WaitsForInFlightRequests(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		io.WriteString(w, "ok")
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)

	got := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp.Body.Close()
		}
		got <- err
	}()
	<-entered

	drained := make(chan struct{})
	go func() {
		drainServer(srv)
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("shutdown returned while a request was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.NoError(t, <-got)

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return after the request completed")
	}
}
