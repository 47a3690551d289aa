package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm-admin-gateway/internal/domain"
)

// stubStageClient is a func-field stub for the backend catalog
type stubStageClient struct {
	fetchDepartmentsFunc func(ctx context.Context, token string) ([]string, error)
	fetchStagesFunc      func(ctx context.Context, token, department string) ([]domain.Stage, error)
	stageFetches         int32
}

func (s *stubStageClient) FetchDepartments(ctx context.Context, token string) ([]string, error) {
	return s.fetchDepartmentsFunc(ctx, token)
}

func (s *stubStageClient) FetchStages(ctx context.Context, token, department string) ([]domain.Stage, error) {
	atomic.AddInt32(&s.stageFetches, 1)
	return s.fetchStagesFunc(ctx, token, department)
}

func salesStages() []domain.Stage {
	return []domain.Stage{
		{StageCode: "WON", StageName: "Won", StageOrder: 4, IsTerminal: true, Department: "sales"},
		{StageCode: "NEW", StageName: "New", StageOrder: 1, Department: "sales"},
		{StageCode: "NEGOTIATION", StageName: "Negotiation", StageOrder: 3, Department: "sales"},
		{StageCode: "QUALIFIED", StageName: "Qualified", StageOrder: 2, Department: "sales"},
	}
}

func TestStagesForDepartment_SortsByOrder(t *testing.T) {
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			return salesStages(), nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)

	stages, err := r.StagesForDepartment(context.Background(), "tok", "sales")
	require.NoError(t, err)

	codes := make([]string, len(stages))
	for i, stage := range stages {
		codes[i] = stage.StageCode
	}
	assert.Equal(t, []string{"NEW", "QUALIFIED", "NEGOTIATION", "WON"}, codes)
}

func TestStagesForDepartment_StableSortKeepsTieOrder(t *testing.T) {
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			return []domain.Stage{
				{StageCode: "A", StageOrder: 1},
				{StageCode: "B", StageOrder: 1},
				{StageCode: "C", StageOrder: 0},
			}, nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)

	stages, err := r.StagesForDepartment(context.Background(), "tok", "sales")
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "C", stages[0].StageCode)
	assert.Equal(t, "A", stages[1].StageCode)
	assert.Equal(t, "B", stages[2].StageCode)
}

func TestStagesForDepartment_FetchesOncePerDepartment(t *testing.T) {
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			return salesStages(), nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := r.StagesForDepartment(ctx, "tok", "sales")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.stageFetches))
}

func TestStagesForDepartment_ConcurrentCallersShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			<-release
			return salesStages(), nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stages, err := r.StagesForDepartment(context.Background(), "tok", "sales")
			assert.NoError(t, err)
			assert.Len(t, stages, 4)
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.stageFetches))
}

func TestStagesForDepartment_EmptyResultIsCached(t *testing.T) {
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			return []domain.Stage{}, nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)
	ctx := context.Background()

	first, err := r.StagesForDepartment(ctx, "tok", "ops")
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := r.StagesForDepartment(ctx, "tok", "ops")
	require.NoError(t, err)
	assert.Empty(t, second)

	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.stageFetches), "empty lists are cached like any other result")
}

func TestStagesForDepartment_ErrorIsNotCached(t *testing.T) {
	failing := true
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			if failing {
				return nil, errors.New("backend down")
			}
			return salesStages(), nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)
	ctx := context.Background()

	_, err := r.StagesForDepartment(ctx, "tok", "sales")
	require.Error(t, err)

	failing = false
	stages, err := r.StagesForDepartment(ctx, "tok", "sales")
	require.NoError(t, err)
	assert.Len(t, stages, 4)
}

func TestFetchDepartments_DegradesToEmpty(t *testing.T) {
	stub := &stubStageClient{
		fetchDepartmentsFunc: func(ctx context.Context, token string) ([]string, error) {
			return nil, errors.New("backend down")
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)

	departments := r.FetchDepartments(context.Background(), "tok")
	assert.Equal(t, []string{}, departments)
	assert.EqualError(t, r.LastError(), "backend down")
}

func TestFetchDepartments_SuccessClearsError(t *testing.T) {
	failing := true
	stub := &stubStageClient{
		fetchDepartmentsFunc: func(ctx context.Context, token string) ([]string, error) {
			if failing {
				return nil, errors.New("backend down")
			}
			return []string{"sales", "hr"}, nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)
	ctx := context.Background()

	r.FetchDepartments(ctx, "tok")
	require.Error(t, r.LastError())

	failing = false
	departments := r.FetchDepartments(ctx, "tok")
	assert.Equal(t, []string{"sales", "hr"}, departments)
	assert.NoError(t, r.LastError())
}

func TestLookups_DefaultWhenUncached(t *testing.T) {
	r := NewStageRegistry(&stubStageClient{}, zap.NewNop(), nil)

	assert.Equal(t, "WON", r.StageName("sales", "WON"), "name falls back to the code")
	assert.False(t, r.IsTerminalStage("sales", "WON"))
	assert.Equal(t, 0, r.StageOrder("sales", "WON"))
}

func TestLookups_UseCachedCatalog(t *testing.T) {
	stub := &stubStageClient{
		fetchStagesFunc: func(ctx context.Context, token, department string) ([]domain.Stage, error) {
			return salesStages(), nil
		},
	}
	r := NewStageRegistry(stub, zap.NewNop(), nil)

	_, err := r.StagesForDepartment(context.Background(), "tok", "sales")
	require.NoError(t, err)

	assert.Equal(t, "Won", r.StageName("sales", "WON"))
	assert.True(t, r.IsTerminalStage("sales", "WON"))
	assert.Equal(t, 4, r.StageOrder("sales", "WON"))
	assert.Equal(t, 1, r.StageOrder("sales", "NEW"))
}
