package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/metrics"
)

// TimelineEvent is one entry of a deal's activity timeline, owned by the
// backend and passed through unmodified beyond shape normalization
type TimelineEvent struct {
	ID          flexibleString         `json:"id"`
	EventType   string                 `json:"eventType"`
	Description string                 `json:"description"`
	Stage       string                 `json:"stage,omitempty"`
	ActorName   string                 `json:"actorName,omitempty"`
	OccurredAt  string                 `json:"occurredAt,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// DealClient is the CRM backend adapter for deal stage actions. Transition
// legality is the backend's determination; this client only submits requests.
type DealClient interface {
	RequestTransition(ctx context.Context, token, dealID, newStage, department string) error
	FetchTimeline(ctx context.Context, token, dealID string) ([]TimelineEvent, error)
}

// dealClient implements DealClient
type dealClient struct {
	apiClient
}

// NewDealClient creates a new deal stage-action API client
func NewDealClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) DealClient {
	return &dealClient{apiClient: newAPIClient(baseURL, timeout, logger, m)}
}

// RequestTransition submits a stage transition request for a deal
func (c *dealClient) RequestTransition(ctx context.Context, token, dealID, newStage, department string) error {
	payload := map[string]string{
		"newStage":   newStage,
		"department": department,
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/deals/%s/stages", url.PathEscape(dealID)), token, payload)
	return err
}

// FetchTimeline retrieves the activity timeline for a deal
func (c *dealClient) FetchTimeline(ctx context.Context, token, dealID string) ([]TimelineEvent, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/deals/%s/timeline", url.PathEscape(dealID)), token, nil)
	if err != nil {
		return nil, err
	}

	var events []TimelineEvent
	if err := decodeList(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %w", err)
	}
	if events == nil {
		events = []TimelineEvent{}
	}
	return events, nil
}
