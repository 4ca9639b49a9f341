package pubchem

import (
	"fmt"
	"regexp"
	"strconv"
)

// Identifier is a caller-supplied compound reference: a numeric CID, a
// digit string, a free-text name, or a SMILES string. The original value and
// its type are preserved so that CID(2244) and Name("2244") stay distinct
// output keys even though they resolve identically.
type Identifier struct {
	text    string
	cid     int64
	numeric bool
}

// CID creates an identifier from a numeric compound ID.
func CID(cid int64) Identifier {
	return Identifier{cid: cid, numeric: true}
}

// Name creates an identifier from a string: a compound name, a digit string
// (treated as a CID), or a SMILES string.
func Name(s string) Identifier {
	return Identifier{text: s}
}

// String returns the original caller-supplied value.
func (id Identifier) String() string {
	if id.numeric {
		return strconv.FormatInt(id.cid, 10)
	}
	return id.text
}

// IsNumeric reports whether the identifier was supplied as a numeric CID.
func (id Identifier) IsNumeric() bool {
	return id.numeric
}

// key returns a per-call memoization key. The type prefix keeps CID(2244)
// and Name("2244") apart.
func (id Identifier) key() string {
	if id.numeric {
		return fmt.Sprintf("i:%d", id.cid)
	}
	return "s:" + id.text
}

// Class is the closed classification of an identifier, decided without any
// network traffic.
type Class int

const (
	// ClassIntegerLike is a positive CID (numeric or digit string).
	ClassIntegerLike Class = iota

	// ClassNameLike is free text without structural tokens.
	ClassNameLike

	// ClassStructureLike is text that superficially resembles a SMILES
	// string and is eligible for structure lookup if name lookup fails.
	ClassStructureLike

	// ClassInvalid is a non-positive CID or empty text.
	ClassInvalid
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassIntegerLike:
		return "integer"
	case ClassNameLike:
		return "name"
	case ClassStructureLike:
		return "structure"
	case ClassInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// smilesTokens matches characters that appear in SMILES strings but rarely in
// compound names: brackets, bond-order symbols, ring-closure digits, and the
// two-letter element codes Br, Cl, Si.
var smilesTokens = regexp.MustCompile(`(?i)[=#\[\]()]|[0-9]|Br|Cl|Si`)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Classify decides how an identifier will be resolved.
func (id Identifier) Classify() Class {
	if id.numeric {
		if id.cid > 0 {
			return ClassIntegerLike
		}
		return ClassInvalid
	}

	if id.text == "" {
		return ClassInvalid
	}

	if digitsOnly.MatchString(id.text) {
		if n, err := strconv.ParseInt(id.text, 10, 64); err == nil && n > 0 {
			return ClassIntegerLike
		}
		return ClassInvalid
	}

	if smilesTokens.MatchString(id.text) {
		return ClassStructureLike
	}
	return ClassNameLike
}

// numericValue returns the CID for integer-like identifiers.
func (id Identifier) numericValue() int64 {
	if id.numeric {
		return id.cid
	}
	n, _ := strconv.ParseInt(id.text, 10, 64)
	return n
}
