// Package registry holds the session-lifetime caches over the CRM backend's
// stage catalog. The catalog is treated as immutable while the service runs:
// a department's stage list is fetched once, cached forever, and only a
// restart picks up server-side edits.
package registry

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/metrics"
)

// StageRegistry caches per-department ordered stage lists and answers
// derived lookups. Lookups never trigger a fetch; they fall back to sane
// defaults so callers tolerate absent data instead of blocking.
type StageRegistry struct {
	client  client.StageClient
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu          sync.RWMutex
	stages      map[string][]domain.Stage
	departments []string
	lastErr     error

	group singleflight.Group
}

// NewStageRegistry creates a new stage registry
func NewStageRegistry(stageClient client.StageClient, logger *zap.Logger, m *metrics.Metrics) *StageRegistry {
	return &StageRegistry{
		client:  stageClient,
		logger:  logger,
		metrics: m,
		stages:  make(map[string][]domain.Stage),
	}
}

// FetchDepartments refreshes the department list. Failures never propagate:
// the list degrades to empty and the error is captured in registry state for
// display.
func (r *StageRegistry) FetchDepartments(ctx context.Context, token string) []string {
	departments, err := r.client.FetchDepartments(ctx, token)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.logger.Warn("Failed to fetch departments, degrading to empty list", zap.Error(err))
		r.departments = []string{}
		r.lastErr = err
		return []string{}
	}
	r.departments = departments
	r.lastErr = nil
	return departments
}

// LastError returns the error captured by the most recent department fetch,
// or nil after a successful one
func (r *StageRegistry) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// StagesForDepartment returns the cached stage sequence for a department,
// fetching it exactly once per registry lifetime. Concurrent callers for the
// same department share a single in-flight request instead of racing
// independent fetches. The sequence is sorted ascending by stageOrder with a
// stable sort, so order ties keep the backend's relative order. An empty
// backend response is cached like any other result.
func (r *StageRegistry) StagesForDepartment(ctx context.Context, token, department string) ([]domain.Stage, error) {
	r.mu.RLock()
	cached, ok := r.stages[department]
	r.mu.RUnlock()
	if ok {
		if r.metrics != nil {
			r.metrics.RecordStageCacheHit()
		}
		return cached, nil
	}

	if r.metrics != nil {
		r.metrics.RecordStageCacheMiss()
	}

	result, err, _ := r.group.Do(department, func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have populated
		// the cache between the miss and this call.
		r.mu.RLock()
		cached, ok := r.stages[department]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		stages, err := r.client.FetchStages(ctx, token, department)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(stages, func(i, j int) bool {
			return stages[i].StageOrder < stages[j].StageOrder
		})

		r.mu.Lock()
		r.stages[department] = stages
		count := len(r.stages)
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.SetStageDepartmentsCached(count)
		}
		return stages, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Stage), nil
}

// lookup finds a cached stage by department and code
func (r *StageRegistry) lookup(department, stageCode string) (domain.Stage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stage := range r.stages[department] {
		if stage.StageCode == stageCode {
			return stage, true
		}
	}
	return domain.Stage{}, false
}

// StageName returns the human label for a stage, falling back to the code
// itself when the stage or department is not cached
func (r *StageRegistry) StageName(department, stageCode string) string {
	if stage, ok := r.lookup(department, stageCode); ok {
		return stage.StageName
	}
	return stageCode
}

// IsTerminalStage reports whether a stage is terminal, defaulting to false
// when the stage or department is not cached
func (r *StageRegistry) IsTerminalStage(department, stageCode string) bool {
	if stage, ok := r.lookup(department, stageCode); ok {
		return stage.IsTerminal
	}
	return false
}

// StageOrder returns a stage's position, defaulting to 0 when the stage or
// department is not cached
func (r *StageRegistry) StageOrder(department, stageCode string) int {
	if stage, ok := r.lookup(department, stageCode); ok {
		return stage.StageOrder
	}
	return 0
}
