// Package task runs one-shot ingestion tasks: raw SQL statements and
// spreadsheet imports against registered data sources.
package task

import (
	"context"
	"encoding/json"
	"log/slog"

	"lakehouse/internal/domain"
)

// Context holds the resources a task may reference by id. It is built per
// task from every registered data source and storage, regardless of tenant.
type Context struct {
	DataSources []domain.DataSource
	Storages    []domain.Storage
}

// DataSource returns the data source with the given id.
func (c *Context) DataSource(id string) (*domain.DataSource, error) {
	for i := range c.DataSources {
		if c.DataSources[i].ID == id {
			return &c.DataSources[i], nil
		}
	}
	return nil, domain.ErrNotFound("Data source %s not found", id)
}

// Storage returns the storage with the given id.
func (c *Context) Storage(id string) (*domain.Storage, error) {
	for i := range c.Storages {
		if c.Storages[i].ID == id {
			return &c.Storages[i], nil
		}
	}
	return nil, domain.ErrNotFound("Storage %s not found", id)
}

// Executor runs one task type.
type Executor interface {
	Execute(ctx context.Context, meta *domain.TaskMetadata, tc *Context) (*domain.ExecutionResult, error)
}

// DataSourceLister lists every registered data source.
type DataSourceLister interface {
	ListAll(ctx context.Context) ([]domain.DataSource, error)
}

// StorageLister lists every registered storage.
type StorageLister interface {
	ListAll(ctx context.Context) ([]domain.Storage, error)
}

// Dispatcher selects the executor for a task type and runs it.
type Dispatcher struct {
	sources   DataSourceLister
	storages  StorageLister
	executors map[string]Executor
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher for the sql and excel task types.
func NewDispatcher(sources DataSourceLister, storages StorageLister, sqlExec, excelExec Executor, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sources:  sources,
		storages: storages,
		executors: map[string]Executor{
			domain.TaskTypeSQL:   sqlExec,
			domain.TaskTypeExcel: excelExec,
		},
		logger: logger.With("component", "task"),
	}
}

// Execute runs meta with the executor registered for taskType. Unknown types
// are a *domain.UnsupportedTaskTypeError. Next actions of a successful task
// are logged and never dispatched.
func (d *Dispatcher) Execute(ctx context.Context, taskType string, meta *domain.TaskMetadata) (*domain.ExecutionResult, error) {
	exec, ok := d.executors[taskType]
	if !ok || exec == nil {
		return nil, &domain.UnsupportedTaskTypeError{TaskType: taskType}
	}
	if meta == nil {
		return nil, domain.ErrValidation("task metadata is required")
	}

	tc, err := d.buildContext(ctx)
	if err != nil {
		return nil, err
	}

	logger := d.logger.With("task_id", meta.TaskID, "task_type", taskType)
	logger.Info("executing task")

	result, err := exec.Execute(ctx, meta, tc)
	if err != nil {
		logger.Warn("task failed", "error", err)
		return nil, err
	}
	if result.Success {
		for _, action := range meta.NextActions {
			logger.Info("triggering next action",
				"action_type", action.ActionType, "target_task_id", action.TargetTaskID)
		}
	}
	return result, nil
}

func (d *Dispatcher) buildContext(ctx context.Context) (*Context, error) {
	sources, err := d.sources.ListAll(ctx)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to fetch data sources")
	}
	storages, err := d.storages.ListAll(ctx)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to fetch storages")
	}
	return &Context{DataSources: sources, Storages: storages}, nil
}

// decodeConfig unmarshals a task's config object into dst.
func decodeConfig(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return domain.ErrValidation("Missing config")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.ErrValidation("invalid task config: %v", err)
	}
	return nil
}
