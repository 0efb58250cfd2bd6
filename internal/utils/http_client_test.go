package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Independent(t *testing.T) {
	a := NewHTTPClient(HTTPClientOptions{})
	b := NewHTTPClient(HTTPClientOptions{})

	require.NotNil(t, a.Client)
	assert.NotSame(t, a.Client, b.Client)
}

func TestNewHTTPClient_Options(t *testing.T) {
	var auth, agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		agent = r.Header.Get("User-Agent")
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientOptions{
		BaseURL: srv.URL + "/",
		Timeout: time.Second,
		Token:   " secret ",
	})
	assert.Equal(t, time.Second, client.GetClient().Timeout)

	resp, err := client.R().Get("/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "chatsync", agent)
}

func TestNewHTTPClient_NoToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	_, err := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL}).R().Get("/")
	require.NoError(t, err)
	assert.Empty(t, auth)
}
