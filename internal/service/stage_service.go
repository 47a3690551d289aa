package service

import (
	"context"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/metrics"
	"crm-admin-gateway/internal/registry"
)

// StageService defines the interface for stage and pipeline business logic
type StageService interface {
	GetDepartments(ctx context.Context, token string) *dto.DepartmentsResponse
	GetStages(ctx context.Context, token string, department string) ([]domain.Stage, error)
	GetPipeline(ctx context.Context, token string, department, currentStage string, transitionsEnabled bool) (*dto.PipelineResponse, error)
	RequestTransition(ctx context.Context, token string, dealID string, req *dto.TransitionRequest) error
	GetTimeline(ctx context.Context, token string, dealID string) ([]client.TimelineEvent, error)
}

// stageServiceImpl is the implementation of StageService
type stageServiceImpl struct {
	stageRegistry *registry.StageRegistry
	dealClient    client.DealClient
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// NewStageService creates a new instance of StageService
func NewStageService(stageRegistry *registry.StageRegistry, dealClient client.DealClient, logger *zap.Logger, m *metrics.Metrics) StageService {
	return &stageServiceImpl{
		stageRegistry: stageRegistry,
		dealClient:    dealClient,
		logger:        logger,
		metrics:       m,
	}
}

// GetDepartments returns the known department codes. A backend failure
// degrades to an empty list with a warning instead of an error so the
// admin screens stay usable.
func (s *stageServiceImpl) GetDepartments(ctx context.Context, token string) *dto.DepartmentsResponse {
	departments := s.stageRegistry.FetchDepartments(ctx, token)
	resp := &dto.DepartmentsResponse{Departments: departments}
	if err := s.stageRegistry.LastError(); err != nil && len(departments) == 0 {
		resp.Warning = "department list unavailable"
		s.logger.Warn("departments fetch degraded", zap.Error(err))
	}
	return resp
}

// GetStages returns the ordered stage list for a department
func (s *stageServiceImpl) GetStages(ctx context.Context, token string, department string) ([]domain.Stage, error) {
	return s.stageRegistry.StagesForDepartment(ctx, token, department)
}

// GetPipeline classifies every stage of the department relative to the
// deal's current stage and marks which nodes accept a transition click
func (s *stageServiceImpl) GetPipeline(ctx context.Context, token string, department, currentStage string, transitionsEnabled bool) (*dto.PipelineResponse, error) {
	stages, err := s.stageRegistry.StagesForDepartment(ctx, token, department)
	if err != nil {
		return nil, err
	}
	return &dto.PipelineResponse{
		Department:   department,
		CurrentStage: currentStage,
		Nodes:        classifyStages(stages, currentStage, transitionsEnabled),
	}, nil
}

// classifyStages assigns a status to each stage relative to the current one.
// Stages before the current order are completed, the matching code is
// current, terminal stages elsewhere keep their terminal status, and the
// rest are upcoming. When the current stage is not found in the list no
// stage is completed and none is current.
func classifyStages(stages []domain.Stage, currentStage string, transitionsEnabled bool) []dto.PipelineNode {
	currentOrder := -1
	hasCurrent := false
	for _, stage := range stages {
		if stage.StageCode == currentStage {
			currentOrder = stage.StageOrder
			hasCurrent = true
			break
		}
	}

	nodes := make([]dto.PipelineNode, 0, len(stages))
	for _, stage := range stages {
		node := dto.PipelineNode{
			StageCode:  stage.StageCode,
			StageName:  stage.StageName,
			StageOrder: stage.StageOrder,
			IsTerminal: stage.IsTerminal,
		}
		switch {
		case hasCurrent && stage.StageCode == currentStage:
			node.Status = domain.StageCurrent
		case hasCurrent && !stage.IsTerminal && stage.StageOrder < currentOrder:
			node.Status = domain.StageCompleted
		case stage.IsTerminal:
			node.Status = domain.StageTerminal
		default:
			node.Status = domain.StageUpcoming
		}
		node.Clickable = transitionsEnabled && hasCurrent && node.Status != domain.StageCurrent && !stage.IsTerminal
		nodes = append(nodes, node)
	}
	return nodes
}

// RequestTransition submits a stage change for a deal. Validation of the
// move itself is the backend's job, the gateway only counts the attempt.
func (s *stageServiceImpl) RequestTransition(ctx context.Context, token string, dealID string, req *dto.TransitionRequest) error {
	s.metrics.IncrementTransitionsRequested()
	if err := s.dealClient.RequestTransition(ctx, token, dealID, req.NewStage, req.Department); err != nil {
		s.logger.Warn("stage transition rejected",
			zap.String("deal_id", dealID),
			zap.String("new_stage", req.NewStage),
			zap.Error(err))
		return err
	}
	return nil
}

// GetTimeline returns the stage history of a deal
func (s *stageServiceImpl) GetTimeline(ctx context.Context, token string, dealID string) ([]client.TimelineEvent, error) {
	return s.dealClient.FetchTimeline(ctx, token, dealID)
}
