package entramiddleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrakit/go-entra-middleware/autherr"
	"github.com/entrakit/go-entra-middleware/validator"
)

// stubValidator accepts exactly one token and returns fixed claims for it.
type stubValidator struct {
	token  string
	claims validator.Claims
	err    error
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (validator.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, fmt.Errorf("%w: unexpected token", autherr.ErrTokenRejected)
	}
	return s.claims, nil
}

func validStub() stubValidator {
	return stubValidator{
		token: "valid-token",
		claims: validator.Claims{
			"oid":                "object-1",
			"name":               "Ada Lovelace",
			"preferred_username": "a@b.com",
			"groups":             []interface{}{"g1", "g2"},
		},
	}
}

// echoIdentityHandler writes the authenticated subject id, or "anonymous"
// when the context has no identity.
var echoIdentityHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	record, ok := IdentityFromContext(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(record.ID))
})

func doRequest(t *testing.T, handler http.Handler, method, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, "/", nil)
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestNew(t *testing.T) {
	t.Run("requires a validator", func(t *testing.T) {
		_, err := New()
		require.ErrorIs(t, err, ErrValidatorNil)
	})

	t.Run("rejects nil option values", func(t *testing.T) {
		_, err := New(WithValidator(nil))
		require.ErrorIs(t, err, ErrValidatorNil)

		_, err = New(WithValidator(validStub()), WithErrorHandler(nil))
		require.ErrorIs(t, err, ErrErrorHandlerNil)

		_, err = New(WithValidator(validStub()), WithTokenExtractor(nil))
		require.ErrorIs(t, err, ErrTokenExtractorNil)
	})
}

func TestCheckAuth(t *testing.T) {
	t.Run("a valid token reaches the handler with the identity attached", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "Bearer valid-token")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "object-1", recorder.Body.String())
	})

	t.Run("a missing header is unauthorized", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.JSONEq(t,
			`{"message":"Authorization header with a bearer token is required."}`,
			recorder.Body.String())
	})

	t.Run("a malformed header is unauthorized", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("a rejected token is unauthorized", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "Bearer forged-token")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.JSONEq(t, `{"message":"Bearer token is invalid."}`, recorder.Body.String())
	})

	t.Run("an unclassified validator error is a server error", func(t *testing.T) {
		gateway, err := New(WithValidator(stubValidator{err: fmt.Errorf("boom")}))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "Bearer valid-token")

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})

	t.Run("optional credentials let anonymous requests through", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()), WithCredentialsOptional(true))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "anonymous", recorder.Body.String())
	})

	t.Run("optional credentials still reject a bad token", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()), WithCredentialsOptional(true))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "Bearer forged-token")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("OPTIONS requests skip validation when configured", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()), WithValidateOnOptions(false))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodOptions, "")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "anonymous", recorder.Body.String())
	})

	t.Run("OPTIONS requests are validated by default", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodOptions, "")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("a custom error handler observes the original error", func(t *testing.T) {
		var seen error
		handler := func(w http.ResponseWriter, r *http.Request, err error) {
			seen = err
			w.WriteHeader(http.StatusTeapot)
		}

		gateway, err := New(WithValidator(validStub()), WithErrorHandler(handler))
		require.NoError(t, err)

		recorder := doRequest(t, gateway.CheckAuth(echoIdentityHandler), http.MethodGet, "")

		assert.Equal(t, http.StatusTeapot, recorder.Code)
		assert.ErrorIs(t, seen, autherr.ErrMissingCredentials)
	})
}

func TestAuthenticateToken(t *testing.T) {
	t.Run("projects the verified claims into a record", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		record, err := gateway.AuthenticateToken(context.Background(), "valid-token")
		require.NoError(t, err)

		assert.Equal(t, "object-1", record.ID)
		assert.Equal(t, "Ada Lovelace", record.Name)
		assert.Equal(t, "a@b.com", record.Email)
		assert.Equal(t, []string{"g1", "g2"}, record.Groups)
	})

	t.Run("an empty token fails with MissingCredentials", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		_, err = gateway.AuthenticateToken(context.Background(), "")
		require.ErrorIs(t, err, autherr.ErrMissingCredentials)
	})

	t.Run("an empty token is fine when credentials are optional", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()), WithCredentialsOptional(true))
		require.NoError(t, err)

		record, err := gateway.AuthenticateToken(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}

func TestIdentityContext(t *testing.T) {
	t.Run("round-trips a record", func(t *testing.T) {
		gateway, err := New(WithValidator(validStub()))
		require.NoError(t, err)

		got, err := gateway.AuthenticateToken(context.Background(), "valid-token")
		require.NoError(t, err)

		ctx := ContextWithIdentity(context.Background(), got)
		back, ok := IdentityFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, got, back)
	})

	t.Run("an empty context has no identity", func(t *testing.T) {
		_, ok := IdentityFromContext(context.Background())
		assert.False(t, ok)
	})
}
