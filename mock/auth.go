package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.CredentialProvider = (*CredentialProvider)(nil)

// CredentialProvider is a mock implementation of docbase.CredentialProvider.
type CredentialProvider struct {
	CredentialsFn func(ctx context.Context, category string) (*docbase.Credentials, error)
	TestLoginFn   func(ctx context.Context, creds *docbase.Credentials) (bool, error)
}

func (p *CredentialProvider) Credentials(ctx context.Context, category string) (*docbase.Credentials, error) {
	return p.CredentialsFn(ctx, category)
}

func (p *CredentialProvider) TestLogin(ctx context.Context, creds *docbase.Credentials) (bool, error) {
	return p.TestLoginFn(ctx, creds)
}
