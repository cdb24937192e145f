package gamebackend

import "regexp"

// Rarity is a champion star/rank tier tag. Seven tiers form a fixed total
// order; advancement never crosses a star boundary (6r5 has no successor).
type Rarity string

const (
	Rarity6R4 Rarity = "6r4"
	Rarity6R5 Rarity = "6r5"
	Rarity7R1 Rarity = "7r1"
	Rarity7R2 Rarity = "7r2"
	Rarity7R3 Rarity = "7r3"
	Rarity7R4 Rarity = "7r4"
	Rarity7R5 Rarity = "7r5"
)

// RarityOrder lists all tiers in ascending order.
var RarityOrder = []Rarity{
	Rarity6R4, Rarity6R5,
	Rarity7R1, Rarity7R2, Rarity7R3, Rarity7R4, Rarity7R5,
}

var rarityPattern = regexp.MustCompile(`^[67]r[1-5]$`)

// rarityIndex maps each known tier to its position in RarityOrder.
var rarityIndex = func() map[Rarity]int {
	idx := make(map[Rarity]int, len(RarityOrder))
	for i, r := range RarityOrder {
		idx[r] = i
	}
	return idx
}()

// IsValid reports whether r matches the rarity tag format and names a
// known tier.
func (r Rarity) IsValid() bool {
	if !rarityPattern.MatchString(string(r)) {
		return false
	}
	_, ok := rarityIndex[r]
	return ok
}

// StarLevel returns the star group ('6' or '7') of the tier, or 0 when invalid.
func (r Rarity) StarLevel() byte {
	if !r.IsValid() {
		return 0
	}
	return r[0]
}

// Less reports whether r sorts strictly before other in the fixed tier order.
func (r Rarity) Less(other Rarity) bool {
	a, okA := rarityIndex[r]
	b, okB := rarityIndex[other]
	return okA && okB && a < b
}

// Next returns the immediate successor tier within the same star group.
// The second return is false at the top of a star group (6r5, 7r5) and for
// invalid tiers.
func (r Rarity) Next() (Rarity, bool) {
	idx, ok := rarityIndex[r]
	if !ok || idx+1 >= len(RarityOrder) {
		return "", false
	}
	next := RarityOrder[idx+1]
	if next.StarLevel() != r.StarLevel() {
		return "", false
	}
	return next, true
}

// UpgradeOptions returns every tier above r within its star group, in
// ascending order. Empty at the top of a star group.
func (r Rarity) UpgradeOptions() []Rarity {
	options := []Rarity{}
	for current, ok := r.Next(); ok; current, ok = current.Next() {
		options = append(options, current)
	}
	return options
}
