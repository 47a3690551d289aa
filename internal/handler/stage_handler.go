package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/response"
	"crm-admin-gateway/internal/service"
)

type StageHandler struct {
	stageService service.StageService
}

func NewStageHandler(stageService service.StageService) *StageHandler {
	return &StageHandler{
		stageService: stageService,
	}
}

// GetDepartments godoc
// @Summary      List departments
// @Description  Returns the department codes known to the stage registry; a backend failure yields an empty list with a warning
// @Tags         stages
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.DepartmentsResponse}
// @Security     BearerAuth
// @Router       /stages/departments [get]
func (h *StageHandler) GetDepartments(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	departments := h.stageService.GetDepartments(c.Request.Context(), auth.Token)
	response.SendSuccess(c, http.StatusOK, departments)
}

// GetStages godoc
// @Summary      List stages of a department
// @Description  Returns the department's stages ordered by stage order; cached for the lifetime of the process
// @Tags         stages
// @Produce      json
// @Param        department query string true "Department code"
// @Success      200 {object} response.SuccessResponse{data=[]domain.Stage}
// @Failure      400 {object} response.ErrorResponse "Missing department"
// @Failure      502 {object} response.ErrorResponse "Backend unavailable"
// @Security     BearerAuth
// @Router       /stages [get]
func (h *StageHandler) GetStages(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	department := c.Query("department")
	if department == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "department query parameter is required")
		return
	}

	stages, err := h.stageService.GetStages(c.Request.Context(), auth.Token, department)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, stages)
}

// GetPipeline godoc
// @Summary      Classified pipeline of a deal
// @Description  Classifies every stage of the department relative to the deal's current stage and marks clickable transition targets
// @Tags         deals
// @Produce      json
// @Param        dealId path string true "Deal ID"
// @Param        department query string true "Department code"
// @Param        current query string false "Current stage code of the deal"
// @Param        disabled query bool false "Disable transition clicks"
// @Success      200 {object} response.SuccessResponse{data=dto.PipelineResponse}
// @Failure      400 {object} response.ErrorResponse "Missing department"
// @Security     BearerAuth
// @Router       /deals/{dealId}/pipeline [get]
func (h *StageHandler) GetPipeline(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	department := c.Query("department")
	if department == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "department query parameter is required")
		return
	}
	currentStage := c.Query("current")
	disabled, _ := strconv.ParseBool(c.DefaultQuery("disabled", "false"))

	pipeline, err := h.stageService.GetPipeline(c.Request.Context(), auth.Token, department, currentStage, !disabled)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, pipeline)
}

// RequestTransition godoc
// @Summary      Request a stage transition
// @Description  Submits a stage change for a deal; the backend decides whether the move is legal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Param        dealId path string true "Deal ID"
// @Param        request body dto.TransitionRequest true "Target stage"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      502 {object} response.ErrorResponse "Backend rejected or unavailable"
// @Security     BearerAuth
// @Router       /deals/{dealId}/stages [post]
func (h *StageHandler) RequestTransition(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.stageService.RequestTransition(c.Request.Context(), auth.Token, c.Param("dealId"), &req); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"requested": true})
}

// GetTimeline godoc
// @Summary      Stage history of a deal
// @Tags         deals
// @Produce      json
// @Param        dealId path string true "Deal ID"
// @Success      200 {object} response.SuccessResponse{data=[]client.TimelineEvent}
// @Failure      502 {object} response.ErrorResponse "Backend unavailable"
// @Security     BearerAuth
// @Router       /deals/{dealId}/timeline [get]
func (h *StageHandler) GetTimeline(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	timeline, err := h.stageService.GetTimeline(c.Request.Context(), auth.Token, c.Param("dealId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, timeline)
}
