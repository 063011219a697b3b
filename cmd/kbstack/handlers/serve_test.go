package handlers

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMux(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "kbstack_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	queries := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := httptest.NewServer(newServeMux(queries, reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/query", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServe(t *testing.T) {
	f := stubFactories(t)

	lnCh := make(chan net.Listener, 1)
	listen = func(string) (net.Listener, error) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err == nil {
			lnCh <- ln
		}
		return ln, err
	}
	f.retriever.RetrieveAndGenerateFunc = answerWith("Net income per share was $1.00", "s3://bucket/doc.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, "", ServeOptions{Addr: "ignored", QueryOptions: QueryOptions{KnowledgeBaseID: "KB123", Model: "anthropic.claude-v2"}})
	}()

	var ln net.Listener
	select {
	case ln = <-lnCh:
	case err := <-errCh:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	url := "http://" + ln.Addr().String()
	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Post(url+"/query", "application/json", strings.NewReader(`{"query":"What was net income per share?"}`))
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 5*time.Second, 10*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	stubFactories(t)

	err := Serve(context.Background(), "", ServeOptions{
		Addr:         "256.0.0.1:bad",
		QueryOptions: QueryOptions{KnowledgeBaseID: "KB", Model: "anthropic.claude-v2"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
