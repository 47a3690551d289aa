package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/metrics"
)

// FieldDefinitionDraft is the wire shape for creating a definition
type FieldDefinitionDraft struct {
	FieldKey  string   `json:"fieldKey"`
	FieldName string   `json:"fieldName"`
	FieldType string   `json:"fieldType"`
	Required  bool     `json:"required"`
	Options   []string `json:"optionsJson,omitempty"`
}

// FieldDefinitionPatch is the wire shape for updating a definition; nil
// fields are omitted from the request
type FieldDefinitionPatch struct {
	FieldName *string   `json:"fieldName,omitempty"`
	FieldType *string   `json:"fieldType,omitempty"`
	Required  *bool     `json:"required,omitempty"`
	Active    *bool     `json:"active,omitempty"`
	Options   *[]string `json:"optionsJson,omitempty"`
}

// FieldClient is the CRM backend adapter for custom field definitions and
// per-record field values. It keeps no cache: every read re-fetches so
// schema edits by other sessions are visible immediately.
type FieldClient interface {
	FetchDefinitions(ctx context.Context, token string, entityType domain.EntityType) ([]domain.FieldDefinition, error)
	CreateDefinition(ctx context.Context, token string, entityType domain.EntityType, draft FieldDefinitionDraft) (*domain.FieldDefinition, error)
	UpdateDefinition(ctx context.Context, token string, entityType domain.EntityType, id string, patch FieldDefinitionPatch) (*domain.FieldDefinition, error)
	DeleteDefinition(ctx context.Context, token string, entityType domain.EntityType, id string) error
	FetchValues(ctx context.Context, token string, entityType domain.EntityType, recordID string) (domain.FieldValues, error)
	UpsertValue(ctx context.Context, token string, entityType domain.EntityType, recordID, fieldKey string, value *string) error
}

// fieldClient implements FieldClient
type fieldClient struct {
	apiClient
}

// NewFieldClient creates a new field definition/value API client
func NewFieldClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) FieldClient {
	return &fieldClient{apiClient: newAPIClient(baseURL, timeout, logger, m)}
}

// rawFieldDefinition is the tolerant wire shape of one definition
type rawFieldDefinition struct {
	ID        flexibleString  `json:"id"`
	FieldKey  string          `json:"fieldKey"`
	FieldName string          `json:"fieldName"`
	FieldType string          `json:"fieldType"`
	Required  bool            `json:"required"`
	Active    *bool           `json:"active"`
	Options   json.RawMessage `json:"optionsJson"`
}

// normalize converts the raw wire entry into the canonical shape
func (r rawFieldDefinition) normalize(entityType domain.EntityType) domain.FieldDefinition {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	kind := domain.NormalizeFieldKind(r.FieldType)
	options := []string{}
	if kind == domain.FieldDropdown {
		options = decodeStringList(r.Options)
	}
	return domain.FieldDefinition{
		ID:         string(r.ID),
		EntityType: entityType,
		FieldKey:   r.FieldKey,
		FieldName:  r.FieldName,
		FieldType:  kind,
		Required:   r.Required,
		Active:     active,
		Options:    options,
	}
}

// normalizeDefinitions converts raw backend entries into canonical
// definitions, dropping entries without a fieldKey
func normalizeDefinitions(entityType domain.EntityType, raws []rawFieldDefinition) []domain.FieldDefinition {
	definitions := make([]domain.FieldDefinition, 0, len(raws))
	for _, raw := range raws {
		if raw.FieldKey == "" {
			continue
		}
		definitions = append(definitions, raw.normalize(entityType))
	}
	return definitions
}

// FetchDefinitions retrieves and normalizes all field definitions for an entity type
func (c *fieldClient) FetchDefinitions(ctx context.Context, token string, entityType domain.EntityType) ([]domain.FieldDefinition, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s-fields", entityType), token, nil)
	if err != nil {
		return nil, err
	}

	var raws []rawFieldDefinition
	if err := decodeList(body, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode field definitions: %w", err)
	}
	return normalizeDefinitions(entityType, raws), nil
}

// CreateDefinition creates a new field definition
func (c *fieldClient) CreateDefinition(ctx context.Context, token string, entityType domain.EntityType, draft FieldDefinitionDraft) (*domain.FieldDefinition, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/%s-fields", entityType), token, draft)
	if err != nil {
		return nil, err
	}

	var raw rawFieldDefinition
	if err := decodeItem(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode created definition: %w", err)
	}
	definition := raw.normalize(entityType)
	return &definition, nil
}

// UpdateDefinition patches an existing field definition
func (c *fieldClient) UpdateDefinition(ctx context.Context, token string, entityType domain.EntityType, id string, patch FieldDefinitionPatch) (*domain.FieldDefinition, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/%s-fields/%s", entityType, url.PathEscape(id)), token, patch)
	if err != nil {
		return nil, err
	}

	var raw rawFieldDefinition
	if err := decodeItem(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode updated definition: %w", err)
	}
	definition := raw.normalize(entityType)
	return &definition, nil
}

// DeleteDefinition deletes a field definition
func (c *fieldClient) DeleteDefinition(ctx context.Context, token string, entityType domain.EntityType, id string) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s-fields/%s", entityType, url.PathEscape(id)), token, nil)
	return err
}

// rawFieldValue is the wire shape of one stored value entity
type rawFieldValue struct {
	FieldKey string          `json:"fieldKey"`
	Value    *flexibleString `json:"value"`
}

// FetchValues retrieves one record's values as a flat fieldKey -> value map.
// Keys the backend never stored are simply absent.
func (c *fieldClient) FetchValues(ctx context.Context, token string, entityType domain.EntityType, recordID string) (domain.FieldValues, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%ss/%s/fields", entityType, url.PathEscape(recordID)), token, nil)
	if err != nil {
		return nil, err
	}

	var raws []rawFieldValue
	if err := decodeList(body, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode field values: %w", err)
	}

	values := make(domain.FieldValues, len(raws))
	for _, raw := range raws {
		if raw.FieldKey == "" {
			continue
		}
		if raw.Value != nil {
			values[raw.FieldKey] = string(*raw.Value)
		} else {
			values[raw.FieldKey] = ""
		}
	}
	return values, nil
}

// UpsertValue stores one value for one record, keyed by fieldKey. A nil
// value transmits the empty string (unset).
func (c *fieldClient) UpsertValue(ctx context.Context, token string, entityType domain.EntityType, recordID, fieldKey string, value *string) error {
	coerced := ""
	if value != nil {
		coerced = *value
	}
	payload := map[string]string{
		"fieldKey": fieldKey,
		"value":    coerced,
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/%ss/%s/fields", entityType, url.PathEscape(recordID)), token, payload)
	return err
}
