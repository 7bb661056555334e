package query

import (
	"context"
	"database/sql"
	"fmt"

	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

// Canonical view names served by TabularStrategy.
const (
	ViewTabular        = "tabular"
	ViewComparableCard = "comparable_card"
)

// TabularResult is the generic {columns, rows} result shape.
type TabularResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// TabularStrategy compiles spec.sql, runs it on one data source and returns
// every row normalized by column type.
//
// The data source is spec.data_source when given, otherwise the one whose
// name sorts first.
type TabularStrategy struct {
	name string
}

// NewTabularStrategy creates a TabularStrategy registered under name.
func NewTabularStrategy(name string) *TabularStrategy {
	return &TabularStrategy{name: name}
}

// Name implements Strategy.
func (s *TabularStrategy) Name() string { return s.name }

// Execute implements Strategy.
func (s *TabularStrategy) Execute(ctx context.Context, qc *QueryContext) (any, error) {
	tmpl, ok := qc.Spec["sql"].(string)
	if !ok {
		return nil, domain.ErrValidation("invalid input: spec.sql is required")
	}
	var dsName string
	if v, present := qc.Spec["data_source"]; present {
		if dsName, ok = v.(string); !ok {
			return nil, domain.ErrValidation("invalid input: spec.data_source must be a string")
		}
	}

	pool, ok := qc.Pools.Default(dsName)
	if !ok {
		if dsName != "" {
			return nil, domain.ErrValidation("invalid input: data source %s not available for tenant %s", dsName, qc.TenantID)
		}
		return nil, domain.ErrDatabase(nil, "No data source available for tenant %s", qc.TenantID)
	}

	built, err := sqltemplate.Compile(tmpl, qc.Params, pool.Dialect)
	if err != nil {
		return nil, err
	}
	args, err := sqltemplate.Bind(built, qc.Params, pool.Dialect)
	if err != nil {
		return nil, domain.ErrExecution(err, "Query failed")
	}

	if qc.Logger != nil {
		qc.Logger.Debug("executing tabular query",
			"data_source", pool.Name, "dialect", string(pool.Dialect), "params", len(args))
	}

	rows, err := pool.DB.QueryContext(ctx, built.SQL, args...)
	if err != nil {
		return nil, domain.ErrExecution(err, "Query failed")
	}
	defer rows.Close() //nolint:errcheck

	result, err := scanTabular(rows)
	if err != nil {
		return nil, domain.ErrExecution(err, "Query failed")
	}
	return result, nil
}

func scanTabular(rows *sql.Rows) (*TabularResult, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(types))
	families := make([]valueFamily, len(types))
	for i, ct := range types {
		cols[i] = ct.Name()
		families[i] = familyOf(ct.DatabaseTypeName())
	}

	result := &TabularResult{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, v := range vals {
			row[cols[i]] = normalize(families[i], v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return result, nil
}
