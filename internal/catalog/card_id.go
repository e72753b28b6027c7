// Package catalog resolves card ids to card metadata.
//
// The catalog itself lives outside the match engine (a database table or a
// JSON export); this package defines the Gateway contract, a few adapters
// and an explicit read-through cache that callers inject where they need it.
package catalog

import (
	"strconv"
	"strings"
)

// CardID is the opaque identifier stored in decks and zones.
// It is a base id optionally followed by a variant ordinal, e.g. "OGN-027"
// or "OGN-027-2".
type CardID string

// ParsedID is a decomposed CardID.
type ParsedID struct {
	BaseID       string
	VariantIndex int // zero-based alternate art selector
}

// NewCardID builds a CardID from a base id and variant index.
// Variant 0 formats to the bare base id.
func NewCardID(baseID string, variantIndex int) CardID {
	if variantIndex <= 0 {
		return CardID(baseID)
	}
	return CardID(baseID + "-" + strconv.Itoa(variantIndex))
}

// ParseCardID splits a CardID into base id and variant index.
// A trailing ordinal is only recognised when the id has at least three
// dash-separated parts, so "SET-123" is a base id and "SET-123-2" is its
// third art variant.
func ParseCardID(id CardID) ParsedID {
	s := strings.TrimSpace(string(id))
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return ParsedID{BaseID: s}
	}

	last := parts[len(parts)-1]
	variant, err := strconv.Atoi(last)
	if err != nil || variant < 0 {
		return ParsedID{BaseID: s}
	}

	return ParsedID{
		BaseID:       strings.Join(parts[:len(parts)-1], "-"),
		VariantIndex: variant,
	}
}

// BaseID returns the canonical card code.
func (id CardID) BaseID() string {
	return ParseCardID(id).BaseID
}

// VariantIndex returns the zero-based art variant.
func (id CardID) VariantIndex() int {
	return ParseCardID(id).VariantIndex
}

// IsEmpty reports whether the id denotes an empty deck slot.
func (id CardID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id CardID) String() string {
	return string(id)
}
