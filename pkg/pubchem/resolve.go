package pubchem

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chemfetch/pubchem-client/pkg/client"
)

// ResolutionKind is the closed set of resolution outcomes.
type ResolutionKind int

const (
	// Resolved means the identifier maps to exactly one CID.
	Resolved ResolutionKind = iota

	// NotFound means neither name nor structure lookup produced a match.
	NotFound

	// Ambiguous means the identifier maps to multiple CIDs.
	Ambiguous

	// Invalid means the identifier is malformed and no lookup was attempted.
	Invalid
)

// Resolution is the outcome of resolving one identifier.
type Resolution struct {
	Kind ResolutionKind

	// CID is set when Kind is Resolved.
	CID int64

	// Candidates is set when Kind is Ambiguous, in remote-response order.
	Candidates []int64

	// Reason is set when Kind is Invalid.
	Reason string
}

// Status converts a resolution outcome to its row status.
func (r Resolution) Status() Status {
	switch r.Kind {
	case Resolved:
		return StatusOK
	case Ambiguous:
		return StatusAmbiguous
	case Invalid:
		return StatusInvalidInput
	default:
		return StatusNotFound
	}
}

// Resolve maps an identifier to exactly one canonical CID, or to a classified
// failure. Positive integer identifiers resolve without network traffic.
// Text identifiers go through name lookup; structure-like text falls back to
// structure lookup when name lookup finds nothing. The resolver is stateless
// and safe to call repeatedly; its only side effect is cached network traffic.
func (c *Client) Resolve(ctx context.Context, id Identifier) Resolution {
	switch id.Classify() {
	case ClassIntegerLike:
		return Resolution{Kind: Resolved, CID: id.numericValue()}

	case ClassInvalid:
		return Resolution{Kind: Invalid, Reason: fmt.Sprintf("invalid identifier %q", id.String())}
	}

	if cids := c.cidsByName(ctx, id.text); len(cids) > 0 {
		return singleOrAmbiguous(cids)
	}

	if id.Classify() == ClassStructureLike {
		if cids := c.cidsBySMILES(ctx, id.text); len(cids) > 0 {
			return singleOrAmbiguous(cids)
		}
	}

	return Resolution{Kind: NotFound}
}

func singleOrAmbiguous(cids []int64) Resolution {
	if len(cids) == 1 {
		return Resolution{Kind: Resolved, CID: cids[0]}
	}
	return Resolution{Kind: Ambiguous, Candidates: cids}
}

// cidsByName queries the name-lookup endpoint. Returns nil when the name is
// unknown or the lookup failed; after retry exhaustion the two cases are
// deliberately indistinguishable here (the failure is a logged diagnostic).
func (c *Client) cidsByName(ctx context.Context, name string) []int64 {
	u := fmt.Sprintf("%s/compound/name/%s/cids/JSON", c.baseURL, url.PathEscape(name))
	return c.cidLookup(ctx, u)
}

// cidsBySMILES queries the structure-lookup endpoint.
func (c *Client) cidsBySMILES(ctx context.Context, smiles string) []int64 {
	u := fmt.Sprintf("%s/compound/smiles/%s/cids/JSON", c.baseURL, url.PathEscape(smiles))
	return c.cidLookup(ctx, u)
}

func (c *Client) cidLookup(ctx context.Context, u string) []int64 {
	outcome := c.fetch.Fetch(ctx, u)
	switch outcome.Kind {
	case client.KindAbsent:
		return nil
	case client.KindFailed:
		c.logger.Warn().Err(outcome.Err).Str("url", u).Msg("Identifier lookup failed")
		return nil
	}
	return cidList(outcome.Map())
}

// cidList extracts IdentifierList.CID from a lookup response.
func cidList(doc map[string]any) []int64 {
	if doc == nil {
		return nil
	}
	identifierList, _ := doc["IdentifierList"].(map[string]any)
	raw, _ := identifierList["CID"].([]any)

	cids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			cids = append(cids, int64(f))
		}
	}
	if len(cids) == 0 {
		return nil
	}
	return cids
}
