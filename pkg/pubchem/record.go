package pubchem

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chemfetch/pubchem-client/pkg/client"
)

// Compound is the full record for one resolved identifier.
type Compound struct {
	CID   int64  `json:"cid"`
	Input string `json:"input_identifier"`

	MolecularFormula string  `json:"molecular_formula,omitempty"`
	MolecularWeight  float64 `json:"molecular_weight,omitempty"`
	CanonicalSMILES  string  `json:"canonical_smiles,omitempty"`
	IsomericSMILES   string  `json:"isomeric_smiles,omitempty"`
	IUPACName        string  `json:"iupac_name,omitempty"`
	XLogP            float64 `json:"xlogp,omitempty"`

	CAS      string   `json:"cas,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// URL returns the PubChem compound page for this record.
func (cp *Compound) URL() string {
	return fmt.Sprintf("https://pubchem.ncbi.nlm.nih.gov/compound/%d", cp.CID)
}

// GetCompound fetches the full record for one identifier. Resolution failures
// come back as ErrNotFound, *AmbiguousError, or ErrInvalidInput; fetch
// failures as ErrFetchFailed.
func (c *Client) GetCompound(ctx context.Context, id Identifier) (*Compound, error) {
	rows, err := c.GetProperties(ctx, []Identifier{id}, Properties())
	if err != nil {
		return nil, err
	}
	row := rows[0]
	if err := row.Err(); err != nil {
		return nil, err
	}

	compound := &Compound{
		CID:              row.CID,
		Input:            id.String(),
		MolecularFormula: toString(row.Values["molecular_formula"]),
		MolecularWeight:  toFloat(row.Values["molecular_weight"]),
		CanonicalSMILES:  toString(row.Values["canonical_smiles"]),
		IsomericSMILES:   toString(row.Values["isomeric_smiles"]),
		IUPACName:        toString(row.Values["iupac_name"]),
		XLogP:            toFloat(row.Values["xlogp"]),
		CAS:              toString(row.Values["cas"]),
	}
	if synonyms, ok := row.Values["synonyms"].([]string); ok {
		compound.Synonyms = synonyms
	}
	return compound, nil
}

// GetCompounds fetches full records for several identifiers. The first
// failure aborts the call.
func (c *Client) GetCompounds(ctx context.Context, ids []Identifier) ([]*Compound, error) {
	compounds := make([]*Compound, 0, len(ids))
	for _, id := range ids {
		compound, err := c.GetCompound(ctx, id)
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, compound)
	}
	return compounds, nil
}

// Err converts a row's status to an error (nil for StatusOK).
func (r Row) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusAmbiguous:
		return &AmbiguousError{Identifier: r.Input.String(), Candidates: r.Candidates}
	case StatusInvalidInput:
		return fmt.Errorf("%w: %q", ErrInvalidInput, r.Input.String())
	case StatusFetchFailed:
		return fmt.Errorf("%w: %q", ErrFetchFailed, r.Input.String())
	default:
		return fmt.Errorf("%w: %q", ErrNotFound, r.Input.String())
	}
}

// scalar fetches a single property for a single identifier. The value is nil
// when PubChem has no datum for it.
func (c *Client) scalar(ctx context.Context, id Identifier, property string) (any, error) {
	rows, err := c.GetProperties(ctx, []Identifier{id}, []string{property})
	if err != nil {
		return nil, err
	}
	if err := rows[0].Err(); err != nil {
		return nil, err
	}
	return rows[0].Value(property), nil
}

// GetWeight returns the molecular weight, or 0 when PubChem has none.
func (c *Client) GetWeight(ctx context.Context, id Identifier) (float64, error) {
	v, err := c.scalar(ctx, id, "molecular_weight")
	return toFloat(v), err
}

// GetFormula returns the molecular formula.
func (c *Client) GetFormula(ctx context.Context, id Identifier) (string, error) {
	v, err := c.scalar(ctx, id, "molecular_formula")
	return toString(v), err
}

// GetCanonicalSMILES returns the canonical SMILES string.
func (c *Client) GetCanonicalSMILES(ctx context.Context, id Identifier) (string, error) {
	v, err := c.scalar(ctx, id, "canonical_smiles")
	return toString(v), err
}

// GetIsomericSMILES returns the isomeric SMILES string.
func (c *Client) GetIsomericSMILES(ctx context.Context, id Identifier) (string, error) {
	v, err := c.scalar(ctx, id, "isomeric_smiles")
	return toString(v), err
}

// GetIUPACName returns the IUPAC name.
func (c *Client) GetIUPACName(ctx context.Context, id Identifier) (string, error) {
	v, err := c.scalar(ctx, id, "iupac_name")
	return toString(v), err
}

// GetXLogP returns the XLogP descriptor, or 0 when PubChem has none.
func (c *Client) GetXLogP(ctx context.Context, id Identifier) (float64, error) {
	v, err := c.scalar(ctx, id, "xlogp")
	return toFloat(v), err
}

// GetCAS returns the CAS registry number.
func (c *Client) GetCAS(ctx context.Context, id Identifier) (string, error) {
	v, err := c.scalar(ctx, id, PropCAS)
	return toString(v), err
}

// GetSynonyms returns the full synonym list.
func (c *Client) GetSynonyms(ctx context.Context, id Identifier) ([]string, error) {
	v, err := c.scalar(ctx, id, PropSynonyms)
	if err != nil {
		return nil, err
	}
	synonyms, _ := v.([]string)
	return synonyms, nil
}

// GetStructureImage returns the rendered 2D structure PNG for an identifier.
// Rendering and display are the caller's concern.
func (c *Client) GetStructureImage(ctx context.Context, id Identifier) ([]byte, error) {
	res := c.Resolve(ctx, id)
	if res.Kind != Resolved {
		return nil, Row{Input: id, Status: res.Status(), Candidates: res.Candidates}.Err()
	}
	u := fmt.Sprintf("%s/compound/cid/%d/PNG", c.baseURL, res.CID)
	return c.fetch.FetchBytes(ctx, u)
}

// synonymsForCID fetches the full synonym list for a CID.
func (c *Client) synonymsForCID(ctx context.Context, cid int64) []string {
	u := fmt.Sprintf("%s/compound/cid/%d/synonyms/JSON", c.baseURL, cid)
	outcome := c.fetch.Fetch(ctx, u)
	if outcome.Kind != client.KindSuccess {
		return nil
	}

	infoList, _ := outcome.Map()["InformationList"].(map[string]any)
	infos, _ := infoList["Information"].([]any)
	if len(infos) == 0 {
		return nil
	}
	first, _ := infos[0].(map[string]any)
	raw, _ := first["Synonym"].([]any)

	synonyms := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			synonyms = append(synonyms, s)
		}
	}
	if len(synonyms) == 0 {
		return nil
	}
	return synonyms
}

// casForCID extracts the CAS registry number from the PUG-View record, which
// nests it under Names and Identifiers > Other Identifiers > CAS.
func (c *Client) casForCID(ctx context.Context, cid int64) (string, bool) {
	u := fmt.Sprintf("%s/compound/%d/JSON", c.viewBaseURL, cid)
	outcome := c.fetch.Fetch(ctx, u)
	if outcome.Kind != client.KindSuccess {
		return "", false
	}

	record, _ := outcome.Map()["Record"].(map[string]any)
	for _, section := range subsections(record) {
		if tocHeading(section) != "Names and Identifiers" {
			continue
		}
		for _, sub := range subsections(section) {
			if tocHeading(sub) != "Other Identifiers" {
				continue
			}
			for _, casSection := range subsections(sub) {
				if tocHeading(casSection) != "CAS" {
					continue
				}
				if cas := firstMarkupString(casSection); cas != "" {
					return cas, true
				}
			}
		}
	}
	return "", false
}

func subsections(node map[string]any) []map[string]any {
	raw, _ := node["Section"].([]any)
	sections := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if section, ok := v.(map[string]any); ok {
			sections = append(sections, section)
		}
	}
	return sections
}

func tocHeading(section map[string]any) string {
	heading, _ := section["TOCHeading"].(string)
	return heading
}

func firstMarkupString(section map[string]any) string {
	infos, _ := section["Information"].([]any)
	for _, v := range infos {
		info, ok := v.(map[string]any)
		if !ok {
			continue
		}
		value, _ := info["Value"].(map[string]any)
		markup, _ := value["StringWithMarkup"].([]any)
		for _, m := range markup {
			entry, ok := m.(map[string]any)
			if !ok {
				continue
			}
			if s, _ := entry["String"].(string); s != "" {
				return s
			}
		}
	}
	return ""
}

// toFloat converts a JSON value to float64. PubChem serves some numeric
// properties as strings.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
