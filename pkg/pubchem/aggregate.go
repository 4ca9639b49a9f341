package pubchem

import (
	"context"
	"fmt"
	"sort"
)

// Status is the per-row outcome of a property request.
type Status string

const (
	// StatusOK means the identifier resolved and values were fetched.
	StatusOK Status = "OK"

	// StatusNotFound means the identifier has no PubChem match.
	StatusNotFound Status = "NotFound"

	// StatusAmbiguous means the identifier maps to multiple CIDs; the row
	// carries the candidate list.
	StatusAmbiguous Status = "Ambiguous"

	// StatusInvalidInput means the identifier is malformed.
	StatusInvalidInput Status = "InvalidInput"

	// StatusFetchFailed means the batch property fetch failed; the
	// identifier itself resolved fine.
	StatusFetchFailed Status = "FetchFailed"
)

// Row is the result for one input identifier. Rows are immutable after
// construction; output order matches input order, and duplicate inputs each
// get an independent row.
type Row struct {
	// Input is the original identifier, value and type preserved.
	Input Identifier

	// CID is the resolved canonical ID, or 0 when resolution failed.
	CID int64

	// Status classifies the outcome.
	Status Status

	// Candidates carries the CID list for StatusAmbiguous rows, in
	// remote-response order.
	Candidates []int64

	// Values maps canonical property names to fetched values. Nil for
	// non-OK rows; individual properties may be absent when PubChem has no
	// datum.
	Values map[string]any
}

// Value returns the value for a property (aliases accepted), or nil.
func (r Row) Value(property string) any {
	canonical, ok := NormalizeProperty(property)
	if !ok {
		return nil
	}
	return r.Values[canonical]
}

// GetProperties resolves every identifier, fetches the requested properties,
// and returns one row per input identifier in input order.
//
// Unrecognized property names fail the whole call with ErrInvalidProperty.
// Resolution failures are local to their row. A failed batch property fetch
// marks every resolved row StatusFetchFailed rather than returning empty
// values, so callers cannot mistake "service down" for "no data".
func (c *Client) GetProperties(ctx context.Context, identifiers []Identifier, properties []string) ([]Row, error) {
	if len(identifiers) == 0 || len(properties) == 0 {
		return nil, nil
	}

	ordinary, special, err := partitionProperties(properties)
	if err != nil {
		return nil, err
	}

	// Resolve each identifier once per call, even when inputs repeat.
	resolutions := make(map[string]Resolution, len(identifiers))
	cidSet := make(map[int64]bool)
	for _, id := range identifiers {
		k := id.key()
		if _, done := resolutions[k]; done {
			continue
		}
		res := c.Resolve(ctx, id)
		resolutions[k] = res
		if res.Kind == Resolved {
			cidSet[res.CID] = true
		}
	}

	// Sorted distinct CIDs keep batch URLs deterministic, so identical calls
	// hit identical cache entries.
	cids := make([]int64, 0, len(cidSet))
	for cid := range cidSet {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })

	var bags map[int64]map[string]any
	batchFailed := false
	if len(ordinary) > 0 && len(cids) > 0 {
		bags, err = c.batchProperties(ctx, cids, tagsFor(ordinary))
		if err != nil {
			c.logger.Warn().Err(err).Int("cids", len(cids)).Msg("Batch property fetch failed")
			batchFailed = true
		}
	}

	// Special properties need one dedicated request per CID; there is no
	// batch endpoint for them.
	specialValues := make(map[string]map[int64]any, len(special))
	if !batchFailed {
		for _, prop := range special {
			values := make(map[int64]any, len(cids))
			for _, cid := range cids {
				switch prop {
				case PropCAS:
					if cas, ok := c.casForCID(ctx, cid); ok {
						values[cid] = cas
					}
				case PropSynonyms:
					if synonyms := c.synonymsForCID(ctx, cid); synonyms != nil {
						values[cid] = synonyms
					}
				}
			}
			specialValues[prop] = values
		}
	}

	rows := make([]Row, 0, len(identifiers))
	for _, id := range identifiers {
		res := resolutions[id.key()]
		row := Row{Input: id, Status: res.Status()}

		switch res.Kind {
		case Ambiguous:
			row.Candidates = res.Candidates

		case Resolved:
			row.CID = res.CID
			if batchFailed {
				row.Status = StatusFetchFailed
				break
			}

			values := make(map[string]any, len(ordinary)+len(special))
			bag := bags[res.CID]
			for _, prop := range ordinary {
				if v := firstTruthy(bag, propertyTags[prop]); v != nil {
					values[prop] = v
				}
			}
			for _, prop := range special {
				if v, ok := specialValues[prop][res.CID]; ok {
					values[prop] = v
				}
			}
			row.Values = values
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// partitionProperties normalizes and splits property names into ordinary
// (batch endpoint) and special (dedicated per-CID endpoints), preserving
// request order and dropping duplicates.
func partitionProperties(properties []string) (ordinary, special []string, err error) {
	seen := make(map[string]bool, len(properties))
	for _, p := range properties {
		canonical, ok := NormalizeProperty(p)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q (available: %v)", ErrInvalidProperty, p, Properties())
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		if specialProperties[canonical] {
			special = append(special, canonical)
		} else {
			ordinary = append(ordinary, canonical)
		}
	}
	return ordinary, special, nil
}

// tagsFor flattens the tag chains of the given properties, deduplicated in
// declaration order.
func tagsFor(properties []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, prop := range properties {
		for _, tag := range propertyTags[prop] {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
