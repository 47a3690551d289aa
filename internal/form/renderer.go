// Package form renders field definitions into input control descriptors the
// dashboard can draw without knowing the schema. Rendering is pure: it has
// no failure modes and performs no required-ness validation (the backend
// enforces that on submit).
package form

import (
	"crm-admin-gateway/internal/domain"
)

// ControlKind identifies the input widget a definition renders to
type ControlKind string

// ControlKind constants
const (
	ControlText   ControlKind = "text"
	ControlNumber ControlKind = "number"
	ControlToggle ControlKind = "toggle"
	ControlDate   ControlKind = "date"
	ControlSelect ControlKind = "select"
)

// Control describes one rendered input control. Value is always the stored
// string form: toggles emit the literal "true"/"false", dates emit
// YYYY-MM-DD, everything else passes raw text through.
type Control struct {
	FieldKey string      `json:"fieldKey"`
	Label    string      `json:"label"`
	Kind     ControlKind `json:"kind"`
	Required bool        `json:"required"`
	Value    string      `json:"value"`
	// Options is populated for select controls only and always starts with
	// the empty "unselected" choice
	Options []string `json:"options,omitempty"`
	// Pattern constrains free-form widgets that carry a text format
	Pattern string `json:"pattern,omitempty"`
}

// datePattern constrains date controls to ISO calendar dates
const datePattern = `\d{4}-\d{2}-\d{2}`

// RenderControl renders one input control for a definition and its current
// stored value. The switch over the field kind is exhaustive; the default
// arm is the deliberate fallback that maps unknown types to free text.
func RenderControl(definition domain.FieldDefinition, currentValue string) Control {
	control := Control{
		FieldKey: definition.FieldKey,
		Label:    definition.FieldName,
		Required: definition.Required,
		Value:    currentValue,
	}

	switch definition.FieldType {
	case domain.FieldBoolean:
		control.Kind = ControlToggle
		// Toggles emit the literal strings "true"/"false"; anything else
		// stored historically renders as off
		if currentValue != "true" {
			control.Value = "false"
		}
	case domain.FieldDropdown:
		control.Kind = ControlSelect
		control.Options = append([]string{""}, definition.Options...)
	case domain.FieldDate:
		control.Kind = ControlDate
		control.Pattern = datePattern
	case domain.FieldNumber:
		control.Kind = ControlNumber
	case domain.FieldText:
		control.Kind = ControlText
	default:
		control.Kind = ControlText
	}

	return control
}

// RenderForm renders controls for every active definition in order,
// resolving each control's current value from the record's value map.
// Inactive definitions are excluded but their stored values are retained
// server-side for history.
func RenderForm(definitions []domain.FieldDefinition, values domain.FieldValues) []Control {
	controls := make([]Control, 0, len(definitions))
	for _, definition := range definitions {
		if !definition.Active {
			continue
		}
		controls = append(controls, RenderControl(definition, values[definition.FieldKey]))
	}
	return controls
}
