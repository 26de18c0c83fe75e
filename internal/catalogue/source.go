package catalogue

import "context"

// Source returns the raw seed record for an identifier.
type Source interface {
	Fetch(ctx context.Context, searchField, identifier string) ([]byte, error)
}
