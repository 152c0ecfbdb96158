package authclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc/authclient"
)

func newServer(t *testing.T, handler http.HandlerFunc) *authclient.HTTPClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return authclient.NewHTTPClient(authclient.HTTPClientConfig{TokenURL: srv.URL + "/users/token"}, srv.Client())
}

func TestHTTPClient_RequestToken(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"a.b.c"}`))
	})

	token, err := client.RequestToken(context.Background(), domain.Credentials{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", token)
}

func TestHTTPClient_RequestToken_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"nope"}`, wantErr: domain.ErrInvalidCredentials},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, wantErr: domain.ErrInvalidCredentials},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: domain.ErrTransportFailure},
		{name: "malformed body", status: http.StatusOK, body: `not json`, wantErr: domain.ErrTransportFailure},
		{name: "empty token", status: http.StatusOK, body: `{"accessToken":""}`, wantErr: domain.ErrNoAuthToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.RequestToken(context.Background(), domain.Credentials{Username: "u", Password: "p"})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClient_RequestToken_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := authclient.NewHTTPClient(authclient.HTTPClientConfig{TokenURL: url}, nil)

	_, err := client.RequestToken(context.Background(), domain.Credentials{Username: "u", Password: "p"})
	require.ErrorIs(t, err, domain.ErrTransportFailure)
}
