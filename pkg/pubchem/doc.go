// Package pubchem resolves chemical identifiers against PubChem and retrieves
// compound properties in batched, cached, rate-limited requests.
//
// Callers supply heterogeneous identifiers (names, CIDs, SMILES strings) and a
// set of property names. Each identifier is resolved to a canonical CID,
// properties are fetched in as few round trips as the PUG-REST API allows, and
// every input identifier receives exactly one result row carrying either the
// requested values or a specific failure status.
//
//	rows, err := c.GetProperties(ctx,
//		[]pubchem.Identifier{pubchem.Name("water"), pubchem.CID(2244)},
//		[]string{"molecular_weight", "cas"})
//
// Rows come back in input order, duplicates included. Resolution failures
// (not found, ambiguous, invalid input) are local to their row; a failed
// batch property fetch marks every resolved row with StatusFetchFailed
// instead of silently returning empty values.
package pubchem
