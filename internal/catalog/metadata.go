package catalog

import "time"

// SuperSignature marks cards bound to a legend's tags.
const SuperSignature = "Signature"

// CardMetadata describes one catalog entry.
type CardMetadata struct {
	BaseID        string         `json:"baseId"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Colors        []string       `json:"colors"` // ordered; rune derivation depends on it
	Tags          []string       `json:"tags"`
	Stats         map[string]int `json:"stats,omitempty"`
	VariantImages []string       `json:"variantImages,omitempty"`
	Super         string         `json:"super,omitempty"`
	ReleaseDate   time.Time      `json:"releaseDate,omitempty"`
}

// HasTag reports whether the card carries tag.
func (m CardMetadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasColor reports whether the card carries color.
func (m CardMetadata) HasColor(color string) bool {
	for _, c := range m.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// SharesTag reports whether both cards have at least one tag in common.
func (m CardMetadata) SharesTag(other CardMetadata) bool {
	for _, t := range m.Tags {
		if other.HasTag(t) {
			return true
		}
	}
	return false
}

// IsSignature reports whether the card is a Signature card.
func (m CardMetadata) IsSignature() bool {
	return m.Super == SuperSignature
}

// ImageFor returns the image for a variant, falling back to the first image.
func (m CardMetadata) ImageFor(variantIndex int) string {
	if len(m.VariantImages) == 0 {
		return ""
	}
	if variantIndex < 0 || variantIndex >= len(m.VariantImages) {
		return m.VariantImages[0]
	}
	return m.VariantImages[variantIndex]
}
