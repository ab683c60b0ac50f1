package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresServer(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestClient_SendsBearerAndUserAgent(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"metadata":{"pagination":{}},"result":[]}`))
	}))
	defer server.Close()

	c, err := New(server.URL, WithBearer("Bearer tok"))
	require.NoError(t, err)
	_, _, err = c.Experiments().List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "silexctl", gotAgent)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"result":{"title":"Access denied","message":"token expired"}}`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)
	_, _, err = c.Variables().List(context.Background(), ListOptions{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "token expired", httpErr.Message)
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)
	_, err = c.Experiments().Get(context.Background(), "dev:expt/1")
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.NotEmpty(t, httpErr.Message)
}

func TestListOptions_Query(t *testing.T) {
	query := ListOptions{Name: "maize", Page: 2, PageSize: 10}.query()
	assert.Equal(t, map[string]string{"name": "maize", "page": "2", "page_size": "10"}, query)

	assert.Empty(t, ListOptions{}.query())
}
