package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/fragment"
	"github.com/syssam/sqlmodel/schema"
	"github.com/syssam/sqlmodel/service"
)

func sqliteUsers(t *testing.T, rows ...[]any) *service.Service[user] {
	t.Helper()
	ctx := context.Background()
	drv, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)", []any{}, nil))
	for _, r := range rows {
		require.NoError(t, drv.Exec(ctx, "INSERT INTO users (id, name, age) VALUES (?, ?, ?)", r, nil))
	}
	s, err := service.New[user](drv, service.WithRegistry(registry(t)))
	require.NoError(t, err)
	return s
}

var userCmp = cmp.Comparer(func(a, b schema.Opt[int]) bool { return a == b })

func TestSQLiteModifyModes(t *testing.T) {
	ctx := context.Background()
	s := sqliteUsers(t, []any{1, "Alice", 30})

	ok, err := s.ModifySelectiveByOnlyPrimaryKey(ctx, &user{ID: 1, Age: schema.Some(31)})
	require.NoError(t, err)
	require.True(t, ok)
	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Alice", *u.Name)
	assert.Equal(t, schema.Some(31), u.Age)

	ok, err = s.ModifyByOnlyPrimaryKey(ctx, &user{ID: 1, Age: schema.Some(32)})
	require.NoError(t, err)
	require.True(t, ok)
	u, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, u.Name)
	assert.Equal(t, schema.Some(32), u.Age)

	_, err = s.ModifySelectiveByOnlyPrimaryKey(ctx, &user{ID: 1, Age: schema.NullOpt[int]()})
	require.NoError(t, err)
	age, err := service.FindFirstSingleColumnByOnlyPrimaryKey[user, int](ctx, s, "age", 1)
	require.NoError(t, err)
	assert.Equal(t, schema.StateNull, age.State())
}

func TestSQLiteSelectiveKeepsAbsent(t *testing.T) {
	ctx := context.Background()
	s := sqliteUsers(t, []any{1, "Alice", 30}, []any{2, "Bob", 40})

	n, err := s.ModifySelectiveByCondition(ctx, &user{Name: ptr("Carol")}, fragment.EQ("id", 2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	u, err := s.FindByOnlyPrimaryKey(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Carol", *u.Name)
	assert.Equal(t, schema.Some(40), u.Age)

	n, err = s.ModifyValuesByCondition(ctx, map[string]any{"age": schema.Some(41)}, fragment.EQ("name", "Carol"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	age, err := service.FindFirstSingleColumnByOnlyPrimaryKey[user, int](ctx, s, "age", 2)
	require.NoError(t, err)
	assert.Equal(t, schema.Some(41), age)
}

func TestSQLiteKeys(t *testing.T) {
	ctx := context.Background()
	s := sqliteUsers(t, []any{1, "Alice", 30}, []any{2, "Bob", 40})

	n, err := s.CountByOnlyPrimaryKeys(ctx, []any{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := s.ExistByOnlyPrimaryKeys(ctx, []any{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ExistByIds(ctx, []any{})
	require.NoError(t, err)
	assert.True(t, ok, "ExistByIds with an empty key list")

	n, err = s.CountByIds(ctx, []any{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteFindRemoveExist(t *testing.T) {
	ctx := context.Background()
	s := sqliteUsers(t, []any{1, "Alice", 30}, []any{2, "Bob", 40})

	for _, id := range []int64{1, 2} {
		u, err := s.FindByOnlyPrimaryKey(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, u)
		ok, err := s.RemoveByOnlyPrimaryKey(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.ExistByOnlyPrimaryKey(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	_, err := s.Get(ctx, 1)
	assert.True(t, sqlmodel.IsNotFound(err))
}

func TestSQLitePagination(t *testing.T) {
	ctx := context.Background()
	s := sqliteUsers(t,
		[]any{1, "Alice", 30},
		[]any{2, "Bob", 25},
		[]any{3, "Carol", 35},
		[]any{4, "Dave", 25},
		[]any{5, nil, 50},
	)
	order := fragment.Asc("age").Then(fragment.Desc("id"))
	all, err := s.FindBySqlFragment(ctx, fragment.Condition{}, order)
	require.NoError(t, err)
	require.Len(t, all, 5)

	first, err := s.FindPageBySqlFragment(ctx, fragment.Condition{}, order, 1, 3)
	require.NoError(t, err)
	if diff := cmp.Diff(all[:3], first, userCmp); diff != "" {
		t.Errorf("first page mismatch (-want +got):\n%s", diff)
	}
	second, err := s.FindPageBySort(ctx, order, 2, 3)
	require.NoError(t, err)
	if diff := cmp.Diff(all[3:], second, userCmp); diff != "" {
		t.Errorf("second page mismatch (-want +got):\n%s", diff)
	}
	empty, err := s.FindPage(ctx, 3, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)

	top, err := s.FindFirstBySqlFragment(ctx, fragment.NotNull("name"), fragment.Desc("age"))
	require.NoError(t, err)
	assert.Equal(t, "Carol", *top.Name)
}

func TestSQLiteTemplatesAndLike(t *testing.T) {
	ctx := context.Background()
	s := sqliteUsers(t,
		[]any{1, "50% off", 30},
		[]any{2, "500 club", 40},
		[]any{3, "a_b", 20},
	)

	found, err := s.FindByCondition(ctx, fragment.Contains("name", "50%"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].ID)

	found, err = s.FindByCondition(ctx, fragment.HasSuffix("name", "_b"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(3), found[0].ID)

	m := fragment.Model(fragment.GTE("age", 30), fragment.Desc("id"))
	rows, err := s.FindBySqlModel(ctx, "SELECT id, name FROM users", m)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.True(t, rows[0].Age.IsAbsent())

	page, err := s.FindPageBySqlModel(ctx, "SELECT * FROM users", m, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].ID)

	n, err := s.CountBySQL(ctx, "SELECT COUNT(*) FROM users", m)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	names, err := service.FindSingleColumn[user, *string](ctx, s, "name", fragment.LT("age", 35), fragment.Asc("id"))
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "50% off", *names[0])
}

func TestSQLiteCommitDropsCachedReads(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "users.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	drv, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)", []any{}, nil))
	require.NoError(t, drv.Exec(ctx, "INSERT INTO users (id, name, age) VALUES (1, 'Alice', 30), (2, 'Bob', 40)", []any{}, nil))
	s, err := service.New[user](drv, service.WithRegistry(registry(t)), service.WithCache(sqlmodel.NewMemoryCache(0)))
	require.NoError(t, err)

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	ok, err := s.Using(tx).RemoveByOnlyPrimaryKey(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the removal is not visible before the commit")
	require.NoError(t, tx.Commit())

	n, err = s.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	u, err := s.FindByOnlyPrimaryKey(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, u)

	tx, err = drv.Tx(ctx)
	require.NoError(t, err)
	_, err = s.Using(tx).RemoveAll(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	n, err = s.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
