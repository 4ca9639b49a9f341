package pubchem

import (
	"errors"
	"fmt"
)

// Errors surfaced to callers of the public fetch surface.
var (
	// ErrNotFound means an identifier has no PubChem match.
	ErrNotFound = errors.New("identifier not found")

	// ErrAmbiguous means an identifier matches multiple CIDs. Errors of this
	// kind are always an *AmbiguousError carrying the candidate list.
	ErrAmbiguous = errors.New("ambiguous identifier")

	// ErrInvalidInput means the identifier is malformed (non-positive CID,
	// empty text).
	ErrInvalidInput = errors.New("invalid identifier")

	// ErrInvalidProperty means a requested property name is not recognized.
	ErrInvalidProperty = errors.New("unsupported property")

	// ErrFetchFailed is the generic catch-all for transport or parse
	// failures after internal retries were exhausted.
	ErrFetchFailed = errors.New("fetch failed")
)

// AmbiguousError reports an identifier that resolved to multiple CIDs.
// Candidates are in the order returned by PubChem; disambiguation is left to
// the caller.
type AmbiguousError struct {
	Identifier string
	Candidates []int64
}

// Error implements the error interface.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("identifier %q maps to multiple CIDs: %v", e.Identifier, e.Candidates)
}

// Is makes errors.Is(err, ErrAmbiguous) work.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}
