package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/response"
	"crm-admin-gateway/internal/service"
)

type FieldHandler struct {
	fieldService service.FieldService
}

func NewFieldHandler(fieldService service.FieldService) *FieldHandler {
	return &FieldHandler{
		fieldService: fieldService,
	}
}

// GetDefinitions godoc
// @Summary      List field definitions
// @Description  Returns the normalized custom field schema of an entity type
// @Tags         fields
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Success      200 {object} response.SuccessResponse{data=[]domain.FieldDefinition}
// @Failure      400 {object} response.ErrorResponse "Unknown entity type"
// @Failure      502 {object} response.ErrorResponse "Backend unavailable"
// @Security     BearerAuth
// @Router       /fields/{entityType} [get]
func (h *FieldHandler) GetDefinitions(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	definitions, err := h.fieldService.GetDefinitions(c.Request.Context(), auth.Token, c.Param("entityType"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, definitions)
}

// CreateDefinition godoc
// @Summary      Create a field definition
// @Description  Adds a custom field to an entity type's schema
// @Tags         fields
// @Accept       json
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Param        request body dto.CreateFieldDefinitionRequest true "Field definition"
// @Success      201 {object} response.SuccessResponse{data=domain.FieldDefinition}
// @Failure      400 {object} response.ErrorResponse "Invalid request or unknown entity type"
// @Security     BearerAuth
// @Router       /fields/{entityType} [post]
func (h *FieldHandler) CreateDefinition(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	var req dto.CreateFieldDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	definition, err := h.fieldService.CreateDefinition(c.Request.Context(), auth.Token, c.Param("entityType"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, definition)
}

// UpdateDefinition godoc
// @Summary      Update a field definition
// @Description  Patches a custom field definition
// @Tags         fields
// @Accept       json
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Param        id path string true "Field definition ID"
// @Param        request body dto.UpdateFieldDefinitionRequest true "Fields to update"
// @Success      200 {object} response.SuccessResponse{data=domain.FieldDefinition}
// @Failure      400 {object} response.ErrorResponse "Invalid request or unknown entity type"
// @Security     BearerAuth
// @Router       /fields/{entityType}/{id} [patch]
func (h *FieldHandler) UpdateDefinition(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	var req dto.UpdateFieldDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	definition, err := h.fieldService.UpdateDefinition(c.Request.Context(), auth.Token, c.Param("entityType"), c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, definition)
}

// DeleteDefinition godoc
// @Summary      Delete a field definition
// @Tags         fields
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Param        id path string true "Field definition ID"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse "Unknown entity type"
// @Security     BearerAuth
// @Router       /fields/{entityType}/{id} [delete]
func (h *FieldHandler) DeleteDefinition(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	if err := h.fieldService.DeleteDefinition(c.Request.Context(), auth.Token, c.Param("entityType"), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GetValues godoc
// @Summary      Get a record's custom field values
// @Description  Returns the stored field values of one record as a flat map
// @Tags         fields
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Param        recordId path string true "Record ID"
// @Success      200 {object} response.SuccessResponse{data=domain.FieldValues}
// @Failure      400 {object} response.ErrorResponse "Unknown entity type"
// @Security     BearerAuth
// @Router       /records/{entityType}/{recordId}/fields [get]
func (h *FieldHandler) GetValues(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	values, err := h.fieldService.GetValues(c.Request.Context(), auth.Token, c.Param("entityType"), c.Param("recordId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, values)
}

// UpsertValue godoc
// @Summary      Upsert one field value
// @Description  Stores a single custom field value for a record; a null value is persisted as an empty string
// @Tags         fields
// @Accept       json
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Param        recordId path string true "Record ID"
// @Param        request body dto.UpsertFieldValueRequest true "Field key and value"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse "Invalid request or unknown entity type"
// @Security     BearerAuth
// @Router       /records/{entityType}/{recordId}/fields [put]
func (h *FieldHandler) UpsertValue(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	var req dto.UpsertFieldValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.fieldService.UpsertValue(c.Request.Context(), auth.Token, c.Param("entityType"), c.Param("recordId"), &req); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"saved": true})
}

// GetForm godoc
// @Summary      Render a record's field form
// @Description  Combines the entity schema and the record's values into typed input control descriptors
// @Tags         fields
// @Produce      json
// @Param        entityType path string true "Entity type (product, bank, deal)"
// @Param        recordId path string true "Record ID"
// @Success      200 {object} response.SuccessResponse{data=[]form.Control}
// @Failure      400 {object} response.ErrorResponse "Unknown entity type"
// @Security     BearerAuth
// @Router       /records/{entityType}/{recordId}/form [get]
func (h *FieldHandler) GetForm(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	controls, err := h.fieldService.RenderForm(c.Request.Context(), auth.Token, c.Param("entityType"), c.Param("recordId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, controls)
}
