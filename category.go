package docbase

import "context"

// CategoryKind distinguishes publicly reachable sources from gated ones.
type CategoryKind string

// Category kinds.
const (
	CategoryPublic   CategoryKind = "public"
	CategoryInternal CategoryKind = "internal"
)

// Category is a namespace for ingested documents. Categories are created
// implicitly the first time content is ingested under a new key.
type Category struct {
	Key  string       `json:"key"`
	Kind CategoryKind `json:"kind"`
}

// Validate returns an error if the category contains invalid fields.
func (c *Category) Validate() error {
	if c.Key == "" {
		return Errorf(EINVALID, "category key required")
	}
	if c.Kind != CategoryPublic && c.Kind != CategoryInternal {
		return Errorf(EINVALID, "category kind must be %q or %q", CategoryPublic, CategoryInternal)
	}
	return nil
}

// Credentials is an opaque credential pair for internal sources.
type Credentials struct {
	Username string
	Password string
}

// CredentialProvider supplies credentials for internal categories.
// Storage of credentials is outside this system; the provider is consumed
// as an external collaborator.
type CredentialProvider interface {
	// Credentials returns the stored credentials for a category.
	// Returns nil (not an error) when none are stored.
	Credentials(ctx context.Context, category string) (*Credentials, error)

	// TestLogin verifies the credentials against the source.
	TestLogin(ctx context.Context, creds *Credentials) (bool, error)
}
