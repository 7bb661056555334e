package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "lakehouse/internal/db"
	"lakehouse/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestDataTableRepo_CRUD(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewDataTableRepo(writeDB)
	ctx := context.Background()

	tbl, err := repo.Create(ctx, &domain.DataTable{
		TenantID:     "t1",
		DataSourceID: "ds-1",
		Name:         "sales",
		Description:  strPtr("daily sales"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tbl.ID, "t1-"), tbl.ID)

	got, err := repo.GetByID(ctx, tbl.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "daily sales", *got.Description)

	got.Description = nil
	got.Name = "sales_v2"
	_, err = repo.Update(ctx, got)
	require.NoError(t, err)

	list, err := repo.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sales_v2", list[0].Name)
	assert.Nil(t, list[0].Description)

	require.NoError(t, repo.Delete(ctx, tbl.ID))
	_, err = repo.GetByID(ctx, tbl.ID)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDataTableRepo_DuplicateName(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewDataTableRepo(writeDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.DataTable{TenantID: "t1", DataSourceID: "ds-1", Name: "sales"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.DataTable{TenantID: "t1", DataSourceID: "ds-1", Name: "sales"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = repo.Create(ctx, &domain.DataTable{TenantID: "t1", DataSourceID: "ds-2", Name: "sales"})
	require.NoError(t, err, "names are unique per data source")
}

func TestDataTableColumnRepo(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewDataTableColumnRepo(writeDB)
	ctx := context.Background()

	amount, err := repo.Create(ctx, &domain.DataTableColumn{DataTableID: "tbl", ColumnIndex: 2, Name: "amount", DataType: "int", Nullable: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.DataTableColumn{DataTableID: "tbl", ColumnIndex: 1, Name: "region", DataType: "text", Partitioner: true})
	require.NoError(t, err)

	t.Run("ordered by column_index", func(t *testing.T) {
		cols, err := repo.ListByTable(ctx, "tbl")
		require.NoError(t, err)
		require.Len(t, cols, 2)
		assert.Equal(t, "region", cols[0].Name)
		assert.True(t, cols[0].Partitioner)
		assert.Equal(t, "amount", cols[1].Name)
		assert.True(t, cols[1].Nullable)
	})

	t.Run("index and name unique per table", func(t *testing.T) {
		var conflict *domain.ConflictError
		_, err := repo.Create(ctx, &domain.DataTableColumn{DataTableID: "tbl", ColumnIndex: 2, Name: "other", DataType: "text"})
		require.ErrorAs(t, err, &conflict)
		_, err = repo.Create(ctx, &domain.DataTableColumn{DataTableID: "tbl", ColumnIndex: 3, Name: "amount", DataType: "text"})
		require.ErrorAs(t, err, &conflict)
		_, err = repo.Create(ctx, &domain.DataTableColumn{DataTableID: "tbl-2", ColumnIndex: 2, Name: "amount", DataType: "text"})
		require.NoError(t, err)
	})

	t.Run("update", func(t *testing.T) {
		amount.DefaultValue = strPtr("0")
		amount.DataType = "bigint"
		_, err := repo.Update(ctx, amount)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, amount.ID)
		require.NoError(t, err)
		assert.Equal(t, "bigint", got.DataType)
		require.NotNil(t, got.DefaultValue)
		assert.Equal(t, "0", *got.DefaultValue)
	})

	t.Run("delete by table", func(t *testing.T) {
		require.NoError(t, repo.DeleteByTable(ctx, "tbl"))
		cols, err := repo.ListByTable(ctx, "tbl")
		require.NoError(t, err)
		assert.Empty(t, cols)
		require.NoError(t, repo.DeleteByTable(ctx, "tbl"))
	})
}

func TestDataTableUsageRepo_Upsert(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewDataTableUsageRepo(writeDB)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, &domain.DataTableUsage{DataTableID: "tbl", RowCount: 10, PartitionCount: 1})
	require.NoError(t, err)
	assert.Equal(t, "tbl-usage", first.ID)

	second, err := repo.Upsert(ctx, &domain.DataTableUsage{DataTableID: "tbl", RowCount: 25, PartitionCount: 3, StorageSize: 4096})
	require.NoError(t, err)
	assert.Equal(t, int64(25), second.RowCount)
	assert.Equal(t, int64(3), second.PartitionCount)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := repo.GetByTable(ctx, "tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), got.StorageSize)

	got.RowCount = 1
	_, err = repo.Update(ctx, got)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByTable(ctx, "tbl"))
	_, err = repo.GetByID(ctx, "tbl-usage")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
