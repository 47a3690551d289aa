package service

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/registry"
)

// mockStageClient is a func-field mock of the backend stage catalog
type mockStageClient struct {
	fetchDepartmentsFunc func(ctx context.Context, token string) ([]string, error)
	fetchStagesFunc      func(ctx context.Context, token, department string) ([]domain.Stage, error)
}

func (m *mockStageClient) FetchDepartments(ctx context.Context, token string) ([]string, error) {
	return m.fetchDepartmentsFunc(ctx, token)
}

func (m *mockStageClient) FetchStages(ctx context.Context, token, department string) ([]domain.Stage, error) {
	return m.fetchStagesFunc(ctx, token, department)
}

// mockDealClient is a func-field mock of the deal endpoints
type mockDealClient struct {
	requestTransitionFunc func(ctx context.Context, token, dealID, newStage, department string) error
	fetchTimelineFunc     func(ctx context.Context, token, dealID string) ([]client.TimelineEvent, error)
}

func (m *mockDealClient) RequestTransition(ctx context.Context, token, dealID, newStage, department string) error {
	return m.requestTransitionFunc(ctx, token, dealID, newStage, department)
}

func (m *mockDealClient) FetchTimeline(ctx context.Context, token, dealID string) ([]client.TimelineEvent, error) {
	return m.fetchTimelineFunc(ctx, token, dealID)
}

func pipelineStages() []domain.Stage {
	return []domain.Stage{
		{StageCode: "NEW", StageName: "New", StageOrder: 1, Department: "sales"},
		{StageCode: "QUALIFIED", StageName: "Qualified", StageOrder: 2, Department: "sales"},
		{StageCode: "NEGOTIATION", StageName: "Negotiation", StageOrder: 3, Department: "sales"},
		{StageCode: "WON", StageName: "Won", StageOrder: 4, IsTerminal: true, Department: "sales"},
		{StageCode: "LOST", StageName: "Lost", StageOrder: 5, IsTerminal: true, Department: "sales"},
	}
}

func statusByCode(nodes []dto.PipelineNode) map[string]domain.StageStatus {
	out := make(map[string]domain.StageStatus, len(nodes))
	for _, node := range nodes {
		out[node.StageCode] = node.Status
	}
	return out
}

func TestClassifyStages_MidPipeline(t *testing.T) {
	nodes := classifyStages(pipelineStages(), "NEGOTIATION", true)

	statuses := statusByCode(nodes)
	assert.Equal(t, domain.StageCompleted, statuses["NEW"])
	assert.Equal(t, domain.StageCompleted, statuses["QUALIFIED"])
	assert.Equal(t, domain.StageCurrent, statuses["NEGOTIATION"])
	assert.Equal(t, domain.StageTerminal, statuses["WON"])
	assert.Equal(t, domain.StageTerminal, statuses["LOST"])
}

func TestClassifyStages_AtStart(t *testing.T) {
	nodes := classifyStages(pipelineStages(), "NEW", true)

	statuses := statusByCode(nodes)
	assert.Equal(t, domain.StageCurrent, statuses["NEW"])
	assert.Equal(t, domain.StageUpcoming, statuses["QUALIFIED"])
	assert.Equal(t, domain.StageUpcoming, statuses["NEGOTIATION"])
	assert.Equal(t, domain.StageTerminal, statuses["WON"])
}

func TestClassifyStages_TerminalCurrent(t *testing.T) {
	nodes := classifyStages(pipelineStages(), "WON", true)

	statuses := statusByCode(nodes)
	assert.Equal(t, domain.StageCurrent, statuses["WON"])
	assert.Equal(t, domain.StageCompleted, statuses["NEW"])
	assert.Equal(t, domain.StageTerminal, statuses["LOST"])
}

func TestClassifyStages_UnknownCurrent(t *testing.T) {
	nodes := classifyStages(pipelineStages(), "ARCHIVED", true)

	for _, node := range nodes {
		assert.NotEqual(t, domain.StageCurrent, node.Status)
		assert.NotEqual(t, domain.StageCompleted, node.Status)
		assert.False(t, node.Clickable, "no clicks without a resolvable current stage")
	}
}

func TestClassifyStages_Clickability(t *testing.T) {
	nodes := classifyStages(pipelineStages(), "QUALIFIED", true)

	clickable := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		clickable[node.StageCode] = node.Clickable
	}

	assert.True(t, clickable["NEW"])
	assert.False(t, clickable["QUALIFIED"], "the current stage is not a transition target")
	assert.True(t, clickable["NEGOTIATION"])
	assert.False(t, clickable["WON"], "terminal stages are never click targets")
	assert.False(t, clickable["LOST"])
}

func TestClassifyStages_TransitionsDisabled(t *testing.T) {
	nodes := classifyStages(pipelineStages(), "QUALIFIED", false)

	for _, node := range nodes {
		assert.False(t, node.Clickable)
	}
}

func TestClassifyStages_Empty(t *testing.T) {
	assert.Empty(t, classifyStages(nil, "NEW", true))
}

// Property-based checks over arbitrary pipelines
func TestProperty_ClassifyStages(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	stageGen := gopter.CombineGens(
		gen.Identifier(),
		gen.IntRange(0, 20),
		gen.Bool(),
	).Map(func(values []interface{}) domain.Stage {
		return domain.Stage{
			StageCode:  values[0].(string),
			StageName:  values[0].(string),
			StageOrder: values[1].(int),
			IsTerminal: values[2].(bool),
			Department: "sales",
		}
	})
	stagesGen := gen.SliceOf(stageGen)

	properties.Property("at most one current node", prop.ForAll(
		func(stages []domain.Stage, current string) bool {
			count := 0
			for _, node := range classifyStages(stages, current, true) {
				if node.Status == domain.StageCurrent {
					count++
				}
			}
			return count <= 1
		},
		stagesGen,
		gen.Identifier(),
	))

	properties.Property("every node gets exactly one known status", prop.ForAll(
		func(stages []domain.Stage, current string) bool {
			nodes := classifyStages(stages, current, true)
			if len(nodes) != len(stages) {
				return false
			}
			for _, node := range nodes {
				switch node.Status {
				case domain.StageCompleted, domain.StageCurrent, domain.StageTerminal, domain.StageUpcoming:
				default:
					return false
				}
			}
			return true
		},
		stagesGen,
		gen.Identifier(),
	))

	properties.Property("no completed nodes without a current stage", prop.ForAll(
		func(stages []domain.Stage) bool {
			for _, node := range classifyStages(stages, "__absent__", true) {
				if node.Status == domain.StageCompleted || node.Status == domain.StageCurrent {
					return false
				}
			}
			return true
		},
		stagesGen,
	))

	properties.Property("terminal nodes are never clickable", prop.ForAll(
		func(stages []domain.Stage, current string) bool {
			for _, node := range classifyStages(stages, current, true) {
				if node.IsTerminal && node.Clickable {
					return false
				}
			}
			return true
		},
		stagesGen,
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func newStageService(stageClient *mockStageClient, dealClient *mockDealClient) StageService {
	logger := zap.NewNop()
	stageRegistry := registry.NewStageRegistry(stageClient, logger, nil)
	return NewStageService(stageRegistry, dealClient, logger, nil)
}

func TestGetDepartments_WarnsOnDegradedFetch(t *testing.T) {
	svc := newStageService(&mockStageClient{
		fetchDepartmentsFunc: func(ctx context.Context, token string) ([]string, error) {
			return nil, errors.New("backend down")
		},
	}, nil)

	resp := svc.GetDepartments(context.Background(), "tok")
	assert.Empty(t, resp.Departments)
	assert.NotEmpty(t, resp.Warning)
}

func TestGetDepartments_NoWarningOnSuccess(t *testing.T) {
	svc := newStageService(&mockStageClient{
		fetchDepartmentsFunc: func(ctx context.Context, token string) ([]string, error) {
			return []string{"sales"}, nil
		},
	}, nil)

	resp := svc.GetDepartments(context.Background(), "tok")
	assert.Equal(t, []string{"sales"}, resp.Departments)
	assert.Empty(t, resp.Warning)
}

func TestGetPipeline_ClassifiesCachedStages(t *testing.T) {
	svc := newStageService(&mockStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			return pipelineStages(), nil
		},
	}, nil)

	pipeline, err := svc.GetPipeline(context.Background(), "tok", "sales", "QUALIFIED", true)
	require.NoError(t, err)
	assert.Equal(t, "sales", pipeline.Department)
	assert.Equal(t, "QUALIFIED", pipeline.CurrentStage)
	require.Len(t, pipeline.Nodes, 5)
	assert.Equal(t, domain.StageCurrent, statusByCode(pipeline.Nodes)["QUALIFIED"])
}

func TestRequestTransition_RelaysWithoutPreValidation(t *testing.T) {
	var gotDeal, gotStage, gotDepartment string
	svc := newStageService(&mockStageClient{}, &mockDealClient{
		requestTransitionFunc: func(ctx context.Context, token, dealID, newStage, department string) error {
			gotDeal, gotStage, gotDepartment = dealID, newStage, department
			return nil
		},
	})

	err := svc.RequestTransition(context.Background(), "tok", "d-1", &dto.TransitionRequest{
		NewStage:   "WON",
		Department: "sales",
	})
	require.NoError(t, err)
	assert.Equal(t, "d-1", gotDeal)
	assert.Equal(t, "WON", gotStage)
	assert.Equal(t, "sales", gotDepartment)
}

func TestRequestTransition_PropagatesBackendRejection(t *testing.T) {
	svc := newStageService(&mockStageClient{}, &mockDealClient{
		requestTransitionFunc: func(ctx context.Context, token, dealID, newStage, department string) error {
			return errors.New("illegal transition")
		},
	})

	err := svc.RequestTransition(context.Background(), "tok", "d-1", &dto.TransitionRequest{
		NewStage:   "WON",
		Department: "sales",
	})
	assert.EqualError(t, err, "illegal transition")
}
