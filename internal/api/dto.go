package api

import (
	"time"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
)

type dataSourceJSON struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	DBType           string         `json:"db_type"`
	ConnectionConfig map[string]any `json:"connection_config"`
	TenantID         string         `json:"tenant_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func dataSourceToAPI(ds domain.DataSource) dataSourceJSON {
	return dataSourceJSON{
		ID:               ds.ID,
		Name:             ds.Name,
		DBType:           ds.DBType,
		ConnectionConfig: datasource.Redact(ds.ConnectionConfig),
		TenantID:         ds.TenantID,
		CreatedAt:        ds.CreatedAt,
		UpdatedAt:        ds.UpdatedAt,
	}
}

type storageJSON struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	StorageType      string         `json:"storage_type"`
	UploadEndpoint   string         `json:"upload_endpoint"`
	DownloadEndpoint string         `json:"download_endpoint"`
	AuthConfig       map[string]any `json:"auth_config"`
	TenantID         string         `json:"tenant_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func storageToAPI(st domain.Storage) storageJSON {
	return storageJSON{
		ID:               st.ID,
		Name:             st.Name,
		StorageType:      st.StorageType,
		UploadEndpoint:   st.UploadEndpoint,
		DownloadEndpoint: st.DownloadEndpoint,
		AuthConfig:       datasource.Redact(st.AuthConfig),
		TenantID:         st.TenantID,
		CreatedAt:        st.CreatedAt,
		UpdatedAt:        st.UpdatedAt,
	}
}

type dataTableJSON struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	DataSourceID string    `json:"data_source_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func dataTableToAPI(t domain.DataTable) dataTableJSON {
	return dataTableJSON{
		ID:           t.ID,
		TenantID:     t.TenantID,
		DataSourceID: t.DataSourceID,
		Name:         t.Name,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type columnJSON struct {
	ID           string    `json:"id"`
	DataTableID  string    `json:"data_table_id"`
	ColumnIndex  int       `json:"column_index"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	DataType     string    `json:"data_type"`
	Nullable     bool      `json:"nullable"`
	DefaultValue *string   `json:"default_value"`
	Partitioner  bool      `json:"partitioner"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func columnToAPI(c domain.DataTableColumn) columnJSON {
	return columnJSON{
		ID:           c.ID,
		DataTableID:  c.DataTableID,
		ColumnIndex:  c.ColumnIndex,
		Name:         c.Name,
		Description:  c.Description,
		DataType:     c.DataType,
		Nullable:     c.Nullable,
		DefaultValue: c.DefaultValue,
		Partitioner:  c.Partitioner,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func columnsToAPI(cols []domain.DataTableColumn) []columnJSON {
	return mapSlice(cols, columnToAPI)
}

type usageJSON struct {
	ID             string    `json:"id"`
	DataTableID    string    `json:"data_table_id"`
	RowCount       int64     `json:"row_count"`
	PartitionCount int64     `json:"partition_count"`
	StorageSize    int64     `json:"storage_size"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func usageToAPI(u domain.DataTableUsage) usageJSON {
	return usageJSON{
		ID:             u.ID,
		DataTableID:    u.DataTableID,
		RowCount:       u.RowCount,
		PartitionCount: u.PartitionCount,
		StorageSize:    u.StorageSize,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type dataTableDetailsJSON struct {
	Table   dataTableJSON `json:"table"`
	Columns []columnJSON  `json:"columns"`
	Usage   *usageJSON    `json:"usage"`
}

func detailsToAPI(d domain.DataTableDetails) dataTableDetailsJSON {
	out := dataTableDetailsJSON{Table: dataTableToAPI(d.Table), Columns: columnsToAPI(d.Columns)}
	if d.Usage != nil {
		u := usageToAPI(*d.Usage)
		out.Usage = &u
	}
	return out
}

type viewJSON struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ViewCode  string    `json:"view_code"`
	ViewType  string    `json:"view_type"`
	ViewSQL   string    `json:"view_sql"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewToAPI(v domain.View) viewJSON {
	return viewJSON{
		ID:        v.ID,
		TenantID:  v.TenantID,
		ViewCode:  v.ViewCode,
		ViewType:  v.ViewType,
		ViewSQL:   v.ViewSQL,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// mapSlice converts a slice with f, returning [] rather than null for no items.
func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
