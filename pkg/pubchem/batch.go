package pubchem

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chemfetch/pubchem-client/pkg/client"
)

// batchProperties fetches the given remote tags for all CIDs in one request,
// following ListKey continuation tokens until the result set is complete.
//
// The call is all-or-nothing: if any page comes back absent or failed there is
// no way to know which CIDs that page would have covered, so the whole batch
// is discarded and the error propagated. CIDs missing from every page are
// represented with an empty bag ("valid CID, no data for these tags").
func (c *Client) batchProperties(ctx context.Context, cids []int64, tags []string) (map[int64]map[string]any, error) {
	if len(cids) == 0 || len(tags) == 0 {
		return map[int64]map[string]any{}, nil
	}

	tagList := strings.Join(tags, ",")
	u := fmt.Sprintf("%s/compound/cid/%s/property/%s/JSON", c.baseURL, joinCIDs(cids), tagList)

	collected := make(map[int64]map[string]any)
	pages := 0

	for {
		outcome := c.fetch.Fetch(ctx, u)
		switch outcome.Kind {
		case client.KindAbsent:
			return nil, fmt.Errorf("%w: page %d returned no data", ErrFetchFailed, pages+1)
		case client.KindFailed:
			return nil, fmt.Errorf("%w: page %d: %v", ErrFetchFailed, pages+1, outcome.Err)
		}
		pages++

		doc := outcome.Map()
		for _, record := range propertyRecords(doc) {
			cid, ok := recordCID(record)
			if !ok {
				continue
			}
			// Last seen wins if a CID repeats across pages.
			collected[cid] = record
		}

		listKey := continuationKey(doc)
		if listKey == "" {
			break
		}
		u = fmt.Sprintf("%s/compound/listkey/%s/property/%s/JSON", c.baseURL, listKey, tagList)
	}

	if pages > 1 {
		c.logger.Debug().
			Int("pages", pages).
			Int("cids", len(cids)).
			Msg("Batch property fetch paginated")
	}

	result := make(map[int64]map[string]any, len(cids))
	for _, cid := range cids {
		if bag, ok := collected[cid]; ok {
			result[cid] = bag
		} else {
			result[cid] = map[string]any{}
		}
	}
	return result, nil
}

// propertyRecords extracts PropertyTable.Properties from a batch response.
func propertyRecords(doc map[string]any) []map[string]any {
	table, _ := doc["PropertyTable"].(map[string]any)
	raw, _ := table["Properties"].([]any)

	records := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if record, ok := v.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

func recordCID(record map[string]any) (int64, bool) {
	f, ok := record["CID"].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// continuationKey returns the ListKey token, or "" when no pages remain.
func continuationKey(doc map[string]any) string {
	key, _ := doc["ListKey"].(string)
	return key
}

func joinCIDs(cids []int64) string {
	parts := make([]string, len(cids))
	for i, cid := range cids {
		parts[i] = strconv.FormatInt(cid, 10)
	}
	return strings.Join(parts, ",")
}
