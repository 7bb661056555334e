package datasource

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
)

type fakeLister struct {
	sources []domain.DataSource
	err     error
}

func (f *fakeLister) ListByTenant(_ context.Context, _ string) ([]domain.DataSource, error) {
	return f.sources, f.err
}

// mockOpener hands out a fresh sqlmock pool per DSN and fails for DSNs
// containing a key of fail.
type mockOpener struct {
	mu    sync.Mutex
	fail  map[string]bool
	mocks map[string]sqlmock.Sqlmock
}

func (m *mockOpener) open(_ context.Context, _ string, dsn string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for host := range m.fail {
		if strings.Contains(dsn, host) {
			return nil, errors.New("connection refused")
		}
	}
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}
	mock.ExpectClose()
	if m.mocks == nil {
		m.mocks = map[string]sqlmock.Sqlmock{}
	}
	m.mocks[dsn] = mock
	return db, nil
}

func pgSource(name, host string) domain.DataSource {
	return domain.DataSource{
		Name: name, DBType: "postgresql", TenantID: "t1",
		ConnectionConfig: map[string]any{"host": host, "database": "warehouse", "username": "reader"},
	}
}

func TestResolver_OpensAllPools(t *testing.T) {
	opener := &mockOpener{}
	r := NewResolver(&fakeLister{sources: []domain.DataSource{
		pgSource("zeta", "z.internal"),
		pgSource("alpha", "a.internal"),
	}}, NewConnector(opener.open, 2, 0), nil)

	pools, err := r.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, pools.Len())
	assert.Equal(t, []string{"alpha", "zeta"}, pools.Names())

	def, ok := pools.Default("")
	require.True(t, ok)
	assert.Equal(t, "alpha", def.Name)

	named, ok := pools.Default("zeta")
	require.True(t, ok)
	assert.Equal(t, "zeta", named.Name)

	_, ok = pools.Default("missing")
	assert.False(t, ok)

	require.NoError(t, pools.Close())
	for _, mock := range opener.mocks {
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestResolver_NoSources(t *testing.T) {
	r := NewResolver(&fakeLister{}, NewConnector(nil, 0, 0), nil)
	_, err := r.Resolve(context.Background(), "t1")
	var dbErr *domain.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Contains(t, err.Error(), "No data source available for tenant t1")
}

func TestResolver_ListFailure(t *testing.T) {
	r := NewResolver(&fakeLister{err: errors.New("disk")}, NewConnector(nil, 0, 0), nil)
	_, err := r.Resolve(context.Background(), "t1")
	var dbErr *domain.DatabaseError
	require.ErrorAs(t, err, &dbErr)
}

func TestResolver_FailureClosesOpenedPools(t *testing.T) {
	opener := &mockOpener{fail: map[string]bool{"bad.internal": true}}
	r := NewResolver(&fakeLister{sources: []domain.DataSource{
		pgSource("good", "good.internal"),
		pgSource("bad", "bad.internal"),
	}}, NewConnector(opener.open, 0, 0), nil)

	_, err := r.Resolve(context.Background(), "t1")
	var dbErr *domain.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Contains(t, err.Error(), "Failed to connect to bad")

	// The good pool may or may not have opened before the group was cancelled;
	// if it did, it must have been closed.
	for dsn, mock := range opener.mocks {
		if strings.Contains(dsn, "good.internal") {
			assert.NoError(t, mock.ExpectationsWereMet())
		}
	}
}

func TestResolver_InvalidConfigIsDatabaseError(t *testing.T) {
	r := NewResolver(&fakeLister{sources: []domain.DataSource{{
		Name: "pg", DBType: "postgresql", ConnectionConfig: map[string]any{"host": "h"},
	}}}, NewConnector((&mockOpener{}).open, 0, 0), nil)

	_, err := r.Resolve(context.Background(), "t1")
	var dbErr *domain.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPools_CloseNil(t *testing.T) {
	var p *Pools
	assert.NoError(t, p.Close())
}
