package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}
}

func TestLookupWordExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		assert.Equal(t, "apple", r.URL.Query().Get("search"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["apple",["apple","applet"],["",""],["https://en.wiktionary.org/wiki/apple","https://en.wiktionary.org/wiki/applet"]]`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Lookup(context.Background(), "apple", "en")
	require.NoError(t, err)
	assert.Equal(t, WordExists, result)
}

func TestLookupCaseInsensitiveMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["paris",["Paris"],[""],["https://en.wiktionary.org/wiki/Paris"]]`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Lookup(context.Background(), "paris", "en")
	require.NoError(t, err)
	assert.Equal(t, WordExists, result)
}

func TestLookupWordDoesNotExist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["qzyx",[],[],[]]`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Lookup(context.Background(), "qzyx", "en")
	require.NoError(t, err)
	assert.Equal(t, WordDoesNotExist, result)
}

func TestLookupMismatchedCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["aple",["apple"],[""],["https://en.wiktionary.org/wiki/apple"]]`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Lookup(context.Background(), "aple", "en")
	require.NoError(t, err)
	assert.Equal(t, WordDoesNotExist, result)
}

func TestLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result, err := newTestClient(server).Lookup(context.Background(), "apple", "en")
	assert.Error(t, err)
	assert.Equal(t, WordError, result)
}

func TestLookupMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Lookup(context.Background(), "apple", "en")
	assert.Error(t, err)
	assert.Equal(t, WordError, result)
}

func TestLookupEmptyWord(t *testing.T) {
	result, err := NewClient().Lookup(context.Background(), "", "en")
	assert.Error(t, err)
	assert.Equal(t, WordError, result)
}

func TestLookupEndpointPerLanguage(t *testing.T) {
	c := NewClient()
	assert.Equal(t, "https://de.wiktionary.org/w/api.php", c.endpoint("de"))
	assert.Equal(t, "https://en.wiktionary.org/w/api.php", c.endpoint("en"))
}

func TestMatchLanguage(t *testing.T) {
	code, err := MatchLanguage("https://fr.wiktionary.org/wiki/pomme")
	require.NoError(t, err)
	assert.Equal(t, "fr", code)

	_, err = MatchLanguage("://bad url")
	assert.Error(t, err)
}
