package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeFieldKind(t *testing.T) {
	testCases := []struct {
		raw  string
		want FieldKind
	}{
		{"TEXT", FieldText},
		{"text", FieldText},
		{"Number", FieldNumber},
		{"BOOLEAN", FieldBoolean},
		{"date", FieldDate},
		{"dropdown", FieldDropdown},
		{"", FieldText},
		{"GEOLOCATION", FieldText},
		{"json", FieldText},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeFieldKind(tc.raw))
		})
	}
}

// Property: normalization always lands in the closed enumeration and is
// idempotent
func TestProperty_NormalizeFieldKind(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	known := map[FieldKind]bool{
		FieldText:     true,
		FieldNumber:   true,
		FieldBoolean:  true,
		FieldDate:     true,
		FieldDropdown: true,
	}

	properties.Property("result is a known kind", prop.ForAll(
		func(raw string) bool {
			return known[NormalizeFieldKind(raw)]
		},
		gen.AnyString(),
	))

	properties.Property("idempotent", prop.ForAll(
		func(raw string) bool {
			once := NormalizeFieldKind(raw)
			return NormalizeFieldKind(string(once)) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestIsValidEntityType(t *testing.T) {
	assert.True(t, IsValidEntityType(EntityProduct))
	assert.True(t, IsValidEntityType(EntityBank))
	assert.True(t, IsValidEntityType(EntityDeal))
	assert.False(t, IsValidEntityType(EntityType("invoice")))
	assert.False(t, IsValidEntityType(EntityType("")))
}
