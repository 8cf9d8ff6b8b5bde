package http

import (
	"context"
	"net/http"

	"github.com/fwojciec/docbase"
)

// Ensure AuthService implements docbase.CredentialProvider.
var _ docbase.CredentialProvider = (*AuthService)(nil)

// AuthService holds per-category basic auth credentials in memory and
// verifies them against a login probe URL. Credentials come from the
// environment at startup; they are never written to the store.
type AuthService struct {
	client   *http.Client
	probeURL string
	creds    map[string]docbase.Credentials
}

// NewAuthService creates an AuthService. probeURL is a gated page used by
// TestLogin; a 200 response with the credentials attached counts as success.
func NewAuthService(client *http.Client, probeURL string) *AuthService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &AuthService{
		client:   client,
		probeURL: probeURL,
		creds:    make(map[string]docbase.Credentials),
	}
}

// SetCredentials registers credentials for a category.
func (s *AuthService) SetCredentials(category string, creds docbase.Credentials) {
	s.creds[category] = creds
}

// Credentials returns the stored credentials for a category, or nil when
// none are registered.
func (s *AuthService) Credentials(_ context.Context, category string) (*docbase.Credentials, error) {
	creds, ok := s.creds[category]
	if !ok {
		return nil, nil
	}
	return &creds, nil
}

// TestLogin verifies credentials against the probe URL. A 401 or 403
// response means the credentials are bad; transport failures are errors.
func (s *AuthService) TestLogin(ctx context.Context, creds *docbase.Credentials) (bool, error) {
	if creds == nil {
		return false, docbase.Errorf(docbase.EINVALID, "credentials required")
	}
	if s.probeURL == "" {
		return false, docbase.Errorf(docbase.EINVALID, "no login probe URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.probeURL, nil)
	if err != nil {
		return false, err
	}
	req.SetBasicAuth(creds.Username, creds.Password)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, docbase.Errorf(docbase.EUNAVAILABLE, "login probe returned HTTP %d", resp.StatusCode)
	}
}
