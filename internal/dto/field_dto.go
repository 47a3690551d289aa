package dto

// CreateFieldDefinitionRequest represents the request to create a custom field definition
type CreateFieldDefinitionRequest struct {
	FieldKey  string   `json:"fieldKey" binding:"required,max=100"`
	FieldName string   `json:"fieldName" binding:"required,max=200"`
	FieldType string   `json:"fieldType" binding:"omitempty,max=50"`
	Required  bool     `json:"required"`
	Options   []string `json:"optionsJson"`
}

// UpdateFieldDefinitionRequest represents the request to update a custom field definition
type UpdateFieldDefinitionRequest struct {
	FieldName *string   `json:"fieldName" binding:"omitempty,max=200"`
	FieldType *string   `json:"fieldType" binding:"omitempty,max=50"`
	Required  *bool     `json:"required"`
	Active    *bool     `json:"active"`
	Options   *[]string `json:"optionsJson"`
}

// UpsertFieldValueRequest represents the request to store one record value.
// A null value is coerced to the empty string (unset).
type UpsertFieldValueRequest struct {
	FieldKey string  `json:"fieldKey" binding:"required,max=100"`
	Value    *string `json:"value"`
}
