package service

import (
	"context"

	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/form"
	"crm-admin-gateway/internal/response"
)

// FieldService defines the interface for custom field business logic. It
// validates entity types at this boundary, delegates everything else to the
// backend adapter, and keeps no cache so admin edits made elsewhere are
// visible immediately.
type FieldService interface {
	GetDefinitions(ctx context.Context, token string, entityType string) ([]domain.FieldDefinition, error)
	CreateDefinition(ctx context.Context, token string, entityType string, req *dto.CreateFieldDefinitionRequest) (*domain.FieldDefinition, error)
	UpdateDefinition(ctx context.Context, token string, entityType, id string, req *dto.UpdateFieldDefinitionRequest) (*domain.FieldDefinition, error)
	DeleteDefinition(ctx context.Context, token string, entityType, id string) error
	GetValues(ctx context.Context, token string, entityType, recordID string) (domain.FieldValues, error)
	UpsertValue(ctx context.Context, token string, entityType, recordID string, req *dto.UpsertFieldValueRequest) error
	RenderForm(ctx context.Context, token string, entityType, recordID string) ([]form.Control, error)
}

// fieldServiceImpl is the implementation of FieldService
type fieldServiceImpl struct {
	fieldClient client.FieldClient
}

// NewFieldService creates a new instance of FieldService
func NewFieldService(fieldClient client.FieldClient) FieldService {
	return &fieldServiceImpl{
		fieldClient: fieldClient,
	}
}

// resolveEntityType validates the raw entity key against the fixed enumeration
func resolveEntityType(raw string) (domain.EntityType, error) {
	entityType := domain.EntityType(raw)
	if !domain.IsValidEntityType(entityType) {
		return "", response.NewUnknownEntityTypeError(raw)
	}
	return entityType, nil
}

// GetDefinitions fetches and normalizes the field schema for an entity type
func (s *fieldServiceImpl) GetDefinitions(ctx context.Context, token string, entityType string) ([]domain.FieldDefinition, error) {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return nil, err
	}
	return s.fieldClient.FetchDefinitions(ctx, token, et)
}

// CreateDefinition creates a new field definition
func (s *fieldServiceImpl) CreateDefinition(ctx context.Context, token string, entityType string, req *dto.CreateFieldDefinitionRequest) (*domain.FieldDefinition, error) {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return nil, err
	}
	draft := client.FieldDefinitionDraft{
		FieldKey:  req.FieldKey,
		FieldName: req.FieldName,
		FieldType: string(domain.NormalizeFieldKind(req.FieldType)),
		Required:  req.Required,
		Options:   req.Options,
	}
	return s.fieldClient.CreateDefinition(ctx, token, et, draft)
}

// UpdateDefinition patches an existing field definition
func (s *fieldServiceImpl) UpdateDefinition(ctx context.Context, token string, entityType, id string, req *dto.UpdateFieldDefinitionRequest) (*domain.FieldDefinition, error) {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return nil, err
	}
	patch := client.FieldDefinitionPatch{
		FieldName: req.FieldName,
		Required:  req.Required,
		Active:    req.Active,
		Options:   req.Options,
	}
	if req.FieldType != nil {
		normalized := string(domain.NormalizeFieldKind(*req.FieldType))
		patch.FieldType = &normalized
	}
	return s.fieldClient.UpdateDefinition(ctx, token, et, id, patch)
}

// DeleteDefinition deletes a field definition
func (s *fieldServiceImpl) DeleteDefinition(ctx context.Context, token string, entityType, id string) error {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return err
	}
	return s.fieldClient.DeleteDefinition(ctx, token, et, id)
}

// GetValues fetches one record's stored values as a flat map
func (s *fieldServiceImpl) GetValues(ctx context.Context, token string, entityType, recordID string) (domain.FieldValues, error) {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return nil, err
	}
	return s.fieldClient.FetchValues(ctx, token, et, recordID)
}

// UpsertValue stores one value for one record
func (s *fieldServiceImpl) UpsertValue(ctx context.Context, token string, entityType, recordID string, req *dto.UpsertFieldValueRequest) error {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return err
	}
	return s.fieldClient.UpsertValue(ctx, token, et, recordID, req.FieldKey, req.Value)
}

// RenderForm fetches the schema and the record's values and renders the
// input controls for every active definition
func (s *fieldServiceImpl) RenderForm(ctx context.Context, token string, entityType, recordID string) ([]form.Control, error) {
	et, err := resolveEntityType(entityType)
	if err != nil {
		return nil, err
	}

	definitions, err := s.fieldClient.FetchDefinitions(ctx, token, et)
	if err != nil {
		return nil, err
	}
	values, err := s.fieldClient.FetchValues(ctx, token, et, recordID)
	if err != nil {
		return nil, err
	}
	return form.RenderForm(definitions, values), nil
}
