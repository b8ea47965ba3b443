package contacts

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned by a Directory when contact access has not
// been granted by the platform.
var ErrPermissionDenied = errors.New("contacts permission denied")

// Candidate is one address-book entry. Number is the usable identifier for
// placing a call; it may be empty for a contact that exists without one.
type Candidate struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Number      string `json:"number,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Directory is the underlying contact lookup. Search may return a superset of
// plausible entries for the query; ranking is the resolver's job.
type Directory interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}
