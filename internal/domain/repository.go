package domain

import "context"

// DataSourceRepository persists data source profiles.
type DataSourceRepository interface {
	Create(ctx context.Context, ds *DataSource) (*DataSource, error)
	GetByID(ctx context.Context, id string) (*DataSource, error)
	ListByTenant(ctx context.Context, tenantID string) ([]DataSource, error)
	ListAll(ctx context.Context) ([]DataSource, error)
	Update(ctx context.Context, ds *DataSource) (*DataSource, error)
	Delete(ctx context.Context, id string) error
}

// StorageRepository persists object-storage profiles.
type StorageRepository interface {
	Create(ctx context.Context, s *Storage) (*Storage, error)
	GetByID(ctx context.Context, id string) (*Storage, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Storage, error)
	ListAll(ctx context.Context) ([]Storage, error)
	Update(ctx context.Context, s *Storage) (*Storage, error)
	Delete(ctx context.Context, id string) error
}

// DataTableRepository persists data table declarations.
type DataTableRepository interface {
	Create(ctx context.Context, t *DataTable) (*DataTable, error)
	GetByID(ctx context.Context, id string) (*DataTable, error)
	ListByTenant(ctx context.Context, tenantID string) ([]DataTable, error)
	Update(ctx context.Context, t *DataTable) (*DataTable, error)
	Delete(ctx context.Context, id string) error
}

// DataTableColumnRepository persists column declarations.
type DataTableColumnRepository interface {
	Create(ctx context.Context, c *DataTableColumn) (*DataTableColumn, error)
	GetByID(ctx context.Context, id string) (*DataTableColumn, error)
	// ListByTable returns the columns of a table ordered by column_index.
	ListByTable(ctx context.Context, tableID string) ([]DataTableColumn, error)
	Update(ctx context.Context, c *DataTableColumn) (*DataTableColumn, error)
	Delete(ctx context.Context, id string) error
	DeleteByTable(ctx context.Context, tableID string) error
}

// DataTableUsageRepository persists usage statistics.
type DataTableUsageRepository interface {
	Upsert(ctx context.Context, u *DataTableUsage) (*DataTableUsage, error)
	GetByID(ctx context.Context, id string) (*DataTableUsage, error)
	GetByTable(ctx context.Context, tableID string) (*DataTableUsage, error)
	Update(ctx context.Context, u *DataTableUsage) (*DataTableUsage, error)
	Delete(ctx context.Context, id string) error
	DeleteByTable(ctx context.Context, tableID string) error
}

// ViewRepository persists stored views.
type ViewRepository interface {
	Create(ctx context.Context, v *View) (*View, error)
	GetByID(ctx context.Context, id string) (*View, error)
	GetByCode(ctx context.Context, tenantID, code string) (*View, error)
	ListByTenant(ctx context.Context, tenantID string) ([]View, error)
	Update(ctx context.Context, v *View) (*View, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository persists login identities.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByNickname(ctx context.Context, nickname string) (*User, error)
}
