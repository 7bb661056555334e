package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
)

type stubSources struct {
	items []domain.DataSource
	err   error
}

func (s stubSources) ListAll(context.Context) ([]domain.DataSource, error) { return s.items, s.err }

type stubStorages struct {
	items []domain.Storage
	err   error
}

func (s stubStorages) ListAll(context.Context) ([]domain.Storage, error) { return s.items, s.err }

type stubExecutor struct {
	result *domain.ExecutionResult
	err    error
	gotCtx *Context
	calls  int
}

func (s *stubExecutor) Execute(_ context.Context, _ *domain.TaskMetadata, tc *Context) (*domain.ExecutionResult, error) {
	s.calls++
	s.gotCtx = tc
	return s.result, s.err
}

func TestDispatcher_RoutesByType(t *testing.T) {
	sqlExec := &stubExecutor{result: &domain.ExecutionResult{Success: true, Message: "sql"}}
	excelExec := &stubExecutor{result: &domain.ExecutionResult{Success: true, Message: "excel"}}
	d := NewDispatcher(
		stubSources{items: []domain.DataSource{{ID: "ds1", TenantID: "a"}, {ID: "ds2", TenantID: "b"}}},
		stubStorages{items: []domain.Storage{{ID: "st1"}}},
		sqlExec, excelExec, nil)

	meta := &domain.TaskMetadata{
		TaskID:      "task-1",
		NextActions: []domain.NextAction{{ActionType: "run", TargetTaskID: "task-2"}},
	}
	res, err := d.Execute(context.Background(), domain.TaskTypeSQL, meta)
	require.NoError(t, err)
	assert.Equal(t, "sql", res.Message)
	assert.Len(t, sqlExec.gotCtx.DataSources, 2, "context spans every tenant")
	assert.Len(t, sqlExec.gotCtx.Storages, 1)

	res, err = d.Execute(context.Background(), domain.TaskTypeExcel, meta)
	require.NoError(t, err)
	assert.Equal(t, "excel", res.Message)
	assert.Equal(t, 1, excelExec.calls)
}

func TestDispatcher_UnsupportedType(t *testing.T) {
	d := NewDispatcher(stubSources{}, stubStorages{}, &stubExecutor{}, &stubExecutor{}, nil)
	_, err := d.Execute(context.Background(), "python", &domain.TaskMetadata{})
	var ute *domain.UnsupportedTaskTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "Unsupported task type: python", err.Error())
}

func TestDispatcher_ContextFailure(t *testing.T) {
	exec := &stubExecutor{}
	d := NewDispatcher(stubSources{err: errors.New("db down")}, stubStorages{}, exec, exec, nil)
	_, err := d.Execute(context.Background(), domain.TaskTypeSQL, &domain.TaskMetadata{})
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Zero(t, exec.calls)
}

func TestDispatcher_ExecutorError(t *testing.T) {
	exec := &stubExecutor{err: domain.ErrValidation("Missing 'sql' in config")}
	d := NewDispatcher(stubSources{}, stubStorages{}, exec, exec, nil)
	_, err := d.Execute(context.Background(), domain.TaskTypeSQL, &domain.TaskMetadata{Config: json.RawMessage(`{}`)})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestContext_Lookup(t *testing.T) {
	tc := &Context{
		DataSources: []domain.DataSource{{ID: "ds1", Name: "main"}},
		Storages:    []domain.Storage{{ID: "st1", Name: "files"}},
	}
	ds, err := tc.DataSource("ds1")
	require.NoError(t, err)
	assert.Equal(t, "main", ds.Name)

	_, err = tc.DataSource("nope")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)

	st, err := tc.Storage("st1")
	require.NoError(t, err)
	assert.Equal(t, "files", st.Name)

	_, err = tc.Storage("nope")
	require.ErrorAs(t, err, &nf)
}
