package domain

import "strings"

// EntityType identifies a record kind that can carry custom fields
type EntityType string

// EntityType constants
const (
	EntityProduct EntityType = "product"
	EntityBank    EntityType = "bank"
	EntityDeal    EntityType = "deal"
)

// IsValidEntityType validates if the entity type is one of the allowed types
func IsValidEntityType(entityType EntityType) bool {
	switch entityType {
	case EntityProduct, EntityBank, EntityDeal:
		return true
	default:
		return false
	}
}

// FieldKind is the closed set of custom field types. Anything outside the
// enumeration normalizes to FieldText.
type FieldKind string

// FieldKind constants
const (
	FieldText     FieldKind = "TEXT"
	FieldNumber   FieldKind = "NUMBER"
	FieldBoolean  FieldKind = "BOOLEAN"
	FieldDate     FieldKind = "DATE"
	FieldDropdown FieldKind = "DROPDOWN"
)

// NormalizeFieldKind upper-cases a raw field type and falls back to FieldText
// for unknown or missing values
func NormalizeFieldKind(raw string) FieldKind {
	switch FieldKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case FieldNumber:
		return FieldNumber
	case FieldBoolean:
		return FieldBoolean
	case FieldDate:
		return FieldDate
	case FieldDropdown:
		return FieldDropdown
	default:
		return FieldText
	}
}

// FieldDefinition is an admin-authored schema entry describing one custom
// field attached to an entity type. Definitions live in the CRM backend; this
// is the normalized shape the rest of the service works with.
type FieldDefinition struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entityType"`
	FieldKey   string     `json:"fieldKey"`
	FieldName  string     `json:"fieldName"`
	FieldType  FieldKind  `json:"fieldType"`
	Required   bool       `json:"required"`
	Active     bool       `json:"active"`
	Options    []string   `json:"optionsJson"`
}

// FieldValues maps fieldKey to the stored string value for one record.
// Boolean values are the literal strings "true"/"false", dates are YYYY-MM-DD,
// everything else is free text. Empty string means unset.
type FieldValues map[string]string
