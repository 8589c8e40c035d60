package realty

import (
	"fmt"
	"strings"
)

// GenerateUnitCode builds the canonical unit code from the building code,
// floor and per-floor sequence, e.g. building "B", floor 1, sequence 1 -> "B0101"
func GenerateUnitCode(buildingCode string, floor, sequence int) string {
	prefix := strings.ToUpper(strings.TrimSpace(buildingCode))
	if prefix == "" {
		prefix = "U"
	}
	if floor < 0 {
		floor = 0
	}
	if sequence < 1 {
		sequence = 1
	}
	return fmt.Sprintf("%s%02d%02d", prefix, floor, sequence)
}

// IsDefaultName reports whether a name was left to the system default
// Explicit names chosen by the user are never overwritten by generated codes
func IsDefaultName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed == "" || strings.EqualFold(trimmed, "new") || strings.EqualFold(trimmed, "nouveau")
}

// IsCodeLike reports whether a name can double as the unit code
// Names with spaces or punctuation keep their own code generated
func IsCodeLike(name string) bool {
	return validatePropertyCode(strings.TrimSpace(name)) == nil
}
