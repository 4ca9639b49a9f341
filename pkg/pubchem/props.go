package pubchem

import (
	"sort"
	"strings"
)

// propertyTags maps each canonical property name to its remote tag chain.
// The first tag is the primary; later tags are fallbacks tried in order when
// the primary is absent or falsy. PubChem has renamed SMILES tags across API
// generations, which is what the fallback chains absorb.
var propertyTags = map[string][]string{
	"molecular_weight":  {"MolecularWeight"},
	"molecular_formula": {"MolecularFormula"},
	"canonical_smiles":  {"CanonicalSMILES", "ConnectivitySMILES"},
	"isomeric_smiles":   {"IsomericSMILES", "SMILES"},
	"iupac_name":        {"IUPACName"},
	"xlogp":             {"XLogP"},
}

// Special properties are not available from the batch property endpoint and
// require a dedicated per-CID request each.
const (
	PropCAS      = "cas"
	PropSynonyms = "synonyms"
)

var specialProperties = map[string]bool{
	PropCAS:      true,
	PropSynonyms: true,
}

// propertyAliases maps user-facing spellings to canonical property names.
var propertyAliases = buildAliases()

func buildAliases() map[string]string {
	aliases := map[string]string{
		"smiles":  "canonical_smiles",
		"logp":    "xlogp",
		"x_log_p": "xlogp",
	}

	camel := map[string]string{
		"MolecularWeight":  "molecular_weight",
		"MolecularFormula": "molecular_formula",
		"CanonicalSMILES":  "canonical_smiles",
		"IsomericSMILES":   "isomeric_smiles",
		"IUPACName":        "iupac_name",
		"XLogP":            "xlogp",
	}

	for name := range propertyTags {
		aliases[name] = name
		aliases[strings.ReplaceAll(name, "_", "")] = name
	}
	for name := range specialProperties {
		aliases[name] = name
	}
	for camelName, snake := range camel {
		aliases[camelName] = snake
		aliases[strings.ToLower(camelName)] = snake
	}

	return aliases
}

// NormalizeProperty maps a user-supplied property name to its canonical
// snake_case form. The second return value is false for unrecognized names.
func NormalizeProperty(name string) (string, bool) {
	if canonical, ok := propertyAliases[name]; ok {
		return canonical, true
	}
	if canonical, ok := propertyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical, true
	}
	return "", false
}

// Properties returns the sorted list of canonical property names, special
// properties included.
func Properties() []string {
	names := make([]string, 0, len(propertyTags)+len(specialProperties))
	for name := range propertyTags {
		names = append(names, name)
	}
	for name := range specialProperties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// firstTruthy returns the first truthy value found in the bag along the tag
// chain, or nil if every candidate is absent or falsy.
func firstTruthy(bag map[string]any, tags []string) any {
	for _, tag := range tags {
		if v, ok := bag[tag]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// truthy reports whether a JSON value carries data. Nil, empty strings, and
// numeric zero sentinels count as missing.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	default:
		return true
	}
}
