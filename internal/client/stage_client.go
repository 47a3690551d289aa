package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/metrics"
)

// StageClient is the CRM backend adapter for the per-department stage catalog
type StageClient interface {
	FetchDepartments(ctx context.Context, token string) ([]string, error)
	FetchStages(ctx context.Context, token, department string) ([]domain.Stage, error)
}

// stageClient implements StageClient
type stageClient struct {
	apiClient
}

// NewStageClient creates a new stage catalog API client
func NewStageClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) StageClient {
	return &stageClient{apiClient: newAPIClient(baseURL, timeout, logger, m)}
}

// FetchDepartments retrieves the department identifiers that carry pipelines
func (c *stageClient) FetchDepartments(ctx context.Context, token string) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/stages/departments", token, nil)
	if err != nil {
		return nil, err
	}

	var departments []string
	if err := decodeList(body, &departments); err != nil {
		return nil, fmt.Errorf("failed to decode departments: %w", err)
	}
	if departments == nil {
		departments = []string{}
	}
	return departments, nil
}

// FetchStages retrieves the stage sequence for one department in whatever
// order the backend returns it; ordering is the registry's concern
func (c *stageClient) FetchStages(ctx context.Context, token, department string) ([]domain.Stage, error) {
	body, err := c.do(ctx, http.MethodGet, "/stages?department="+url.QueryEscape(department), token, nil)
	if err != nil {
		return nil, err
	}

	var stages []domain.Stage
	if err := decodeList(body, &stages); err != nil {
		return nil, fmt.Errorf("failed to decode stages: %w", err)
	}
	if stages == nil {
		stages = []domain.Stage{}
	}
	for i := range stages {
		if stages[i].Department == "" {
			stages[i].Department = department
		}
	}
	return stages, nil
}
