package domain

import "time"

// DataTable is a table with a declared column schema living in a tenant's data source.
type DataTable struct {
	ID           string
	TenantID     string
	DataSourceID string
	Name         string
	Description  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DataTableColumn is the declared definition of one column of a data table.
// ColumnIndex and Name are unique per table.
type DataTableColumn struct {
	ID           string
	DataTableID  string
	ColumnIndex  int
	Name         string
	Description  *string
	DataType     string
	Nullable     bool
	DefaultValue *string
	Partitioner  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DataTableUsage records size statistics for a data table.
type DataTableUsage struct {
	ID             string
	DataTableID    string
	RowCount       int64
	PartitionCount int64
	StorageSize    int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DataTableDetails bundles a table with its columns and usage record.
type DataTableDetails struct {
	Table   DataTable
	Columns []DataTableColumn
	Usage   *DataTableUsage
}

// CreateDataTableRequest holds parameters for declaring a data table.
type CreateDataTableRequest struct {
	TenantID     string
	DataSourceID string
	Name         string
	Description  *string
}

// UpdateDataTableRequest holds the fields that may change on a data table.
type UpdateDataTableRequest struct {
	Name        *string
	Description *string
}

// CreateColumnRequest holds parameters for declaring a column.
type CreateColumnRequest struct {
	DataTableID  string
	ColumnIndex  int
	Name         string
	Description  *string
	DataType     string
	Nullable     bool
	DefaultValue *string
	Partitioner  bool
}

// UpdateColumnRequest holds the fields that may change on a column.
type UpdateColumnRequest struct {
	ColumnIndex  *int
	Name         *string
	Description  *string
	DataType     *string
	Nullable     *bool
	DefaultValue *string
	Partitioner  *bool
}

// UpsertUsageRequest replaces the usage statistics of a table.
type UpsertUsageRequest struct {
	DataTableID    string
	RowCount       int64
	PartitionCount int64
	StorageSize    int64
}

// UpdateUsageRequest holds the statistics that may change on a usage record.
type UpdateUsageRequest struct {
	RowCount       *int64
	PartitionCount *int64
	StorageSize    *int64
}

// SplitPartitionColumns separates partition columns from data columns,
// preserving the input order within each group.
func SplitPartitionColumns(cols []DataTableColumn) (partitions, data []DataTableColumn) {
	for _, c := range cols {
		if c.Partitioner {
			partitions = append(partitions, c)
		} else {
			data = append(data, c)
		}
	}
	return partitions, data
}
