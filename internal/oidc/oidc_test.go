package oidc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrakit/go-entra-middleware/autherr"
)

func TestGetDiscoveryDocument(t *testing.T) {
	ctx := context.Background()

	serve := func(t *testing.T, status int, body string) string {
		t.Helper()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return server.URL
	}

	t.Run("decodes a well-formed document", func(t *testing.T) {
		url := serve(t, http.StatusOK,
			`{"issuer":"https://issuer.example.com/","jwks_uri":"https://jwks.example.com/keys"}`)

		doc, err := GetDiscoveryDocument(ctx, http.DefaultClient, url)
		require.NoError(t, err)
		assert.Equal(t, "https://issuer.example.com/", doc.Issuer)
		assert.Equal(t, "https://jwks.example.com/keys", doc.JWKSURI)
	})

	t.Run("non-success status is an upstream failure", func(t *testing.T) {
		url := serve(t, http.StatusInternalServerError, "")

		_, err := GetDiscoveryDocument(ctx, http.DefaultClient, url)
		require.ErrorIs(t, err, autherr.ErrUpstreamUnavailable)
	})

	t.Run("unreachable host is an upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := GetDiscoveryDocument(ctx, http.DefaultClient, url)
		require.ErrorIs(t, err, autherr.ErrUpstreamUnavailable)
	})

	t.Run("undecodable body is malformed metadata", func(t *testing.T) {
		url := serve(t, http.StatusOK, "<html>not json</html>")

		_, err := GetDiscoveryDocument(ctx, http.DefaultClient, url)
		require.ErrorIs(t, err, autherr.ErrMalformedProviderMetadata)
	})

	t.Run("a document without jwks_uri is malformed metadata", func(t *testing.T) {
		url := serve(t, http.StatusOK, `{"issuer":"https://issuer.example.com/"}`)

		_, err := GetDiscoveryDocument(ctx, http.DefaultClient, url)
		require.ErrorIs(t, err, autherr.ErrMalformedProviderMetadata)
	})
}
