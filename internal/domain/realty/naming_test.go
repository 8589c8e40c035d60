package realty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUnitCode(t *testing.T) {
	tests := []struct {
		name         string
		buildingCode string
		floor        int
		sequence     int
		want         string
	}{
		{"single letter building", "B", 1, 1, "B0101"},
		{"lowercase building code", "a", 3, 7, "A0307"},
		{"multi char building code", "BLD", 12, 4, "BLD1204"},
		{"ground floor", "B", 0, 2, "B0002"},
		{"empty building code falls back", "", 1, 1, "U0101"},
		{"sequence floor is clamped", "B", -1, 0, "B0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateUnitCode(tt.buildingCode, tt.floor, tt.sequence))
		})
	}
}

func TestIsDefaultName(t *testing.T) {
	assert.True(t, IsDefaultName(""))
	assert.True(t, IsDefaultName("  "))
	assert.True(t, IsDefaultName("New"))
	assert.True(t, IsDefaultName("nouveau"))
	assert.False(t, IsDefaultName("Penthouse A"))
}
