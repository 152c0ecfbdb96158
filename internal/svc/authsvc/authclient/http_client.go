package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

const (
	formUsername = "username"
	formPassword = "password"

	// maxBodySize bounds how much of a login response is read.
	maxBodySize = 1 << 20
)

// HTTPClientConfig holds configuration for the HTTP login client.
type HTTPClientConfig struct {
	// TokenURL is the endpoint accepting form-encoded username and password
	TokenURL string `env:"TOKEN_URL" default:"https://interview.appliqloud.com/users/token"`
}

// HTTPClient implements LoginClient with a form-encoded POST.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ LoginClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.authsvc.http_client"),
		cfg:        cfg,
	}
}

// RequestToken implements LoginClient.RequestToken.
func (ht *HTTPClient) RequestToken(ctx context.Context, creds domain.Credentials) (string, error) {
	form := url.Values{}
	form.Set(formUsername, creds.Username)
	form.Set(formPassword, creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ht.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := ht.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(domain.ErrTransportFailure, fmt.Errorf("post: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return "", domain.ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: unexpected status %d", domain.ErrTransportFailure, resp.StatusCode)
	}

	var body domain.AuthTokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return "", errors.Join(domain.ErrTransportFailure, fmt.Errorf("decode response: %w", err))
	}

	if body.AccessToken == "" {
		return "", domain.ErrNoAuthToken
	}

	ht.log.DebugContext(ctx, "token issued", "username", creds.Username)

	return body.AccessToken, nil
}
