package sql

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/dialect"
)

func mockStats(t *testing.T, opts ...StatsOption) (*StatsDriver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStatsDriver(OpenDB(dialect.SQLite, db), opts...), mock
}

func TestStatsDriver(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockStats(t, WithSlowThreshold(time.Hour))
	assert.Equal(t, time.Hour, drv.SlowThreshold())

	mock.ExpectQuery("SELECT id FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM posts").WillReturnError(errors.New("no such table"))

	var rows Rows
	require.NoError(t, drv.Query(ctx, "SELECT id FROM users", []any{}, &rows))
	require.NoError(t, rows.Close())
	require.NoError(t, drv.Exec(ctx, "DELETE FROM users", []any{}, nil))
	require.Error(t, drv.Exec(ctx, "DELETE FROM posts", []any{}, nil))
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	assert.EqualValues(t, 1, s.TotalQueries)
	assert.EqualValues(t, 2, s.TotalExecs)
	assert.EqualValues(t, 1, s.Errors)
	assert.Zero(t, s.SlowQueries)
	assert.Equal(t, s.TotalDuration/3, s.AvgQueryDuration())
	assert.Contains(t, s.String(), "queries=1 execs=2")

	drv.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, drv.QueryStats().Stats())
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
}

func TestStatsDriverSlowHook(t *testing.T) {
	ctx := context.Background()
	var got []string
	drv, mock := mockStats(t, WithSlowQueryHook(func(_ context.Context, query string, args []any, _ time.Duration) {
		got = append(got, fmt.Sprint(query, args))
	}))
	assert.Equal(t, 100*time.Millisecond, drv.SlowThreshold())
	drv.SetSlowThreshold(-1)

	mock.ExpectExec("UPDATE users").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, drv.Exec(ctx, "UPDATE users SET a = ?", []any{1}, nil))
	assert.Equal(t, []string{"UPDATE users SET a = ?[1]"}, got)
	assert.EqualValues(t, 1, drv.QueryStats().Stats().SlowQueries)
}

func TestStatsTx(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockStats(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	assert.IsType(t, &StatsTx{}, tx)
	assert.Equal(t, dialect.SQLite, dialect.Of(tx))
	require.NoError(t, tx.Exec(ctx, "INSERT INTO users DEFAULT VALUES", []any{}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
	assert.EqualValues(t, 1, drv.QueryStats().Stats().TotalExecs)
}

func TestStatsDriverMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	drv, mock := mockStats(t, WithMetrics())
	mock.ExpectExec("DELETE FROM users").WillReturnError(errors.New("locked"))
	require.Error(t, drv.Exec(context.Background(), "DELETE FROM users", []any{}, nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "sqlmodel_statements_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["dialect"] == dialect.SQLite && labels["kind"] == "exec" && labels["status"] == "error" {
				found = true
				assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)
			}
		}
	}
	assert.True(t, found, "statement counter was not sampled")
}

func TestDebugDriver(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var logs []string
	drv := NewDebugDriver(OpenDB(dialect.MySQL, db), DebugWithLog(func(_ context.Context, v ...any) {
		logs = append(logs, fmt.Sprint(v...))
	}))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	var rows Rows
	require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, &rows))
	require.NoError(t, rows.Close())
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, dialect.Of(tx))
	require.NoError(t, tx.Exec(ctx, "DELETE FROM users WHERE id = ?", []any{1}, nil))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{
		"query: SELECT 1 args: []",
		"begin transaction",
		"tx exec: DELETE FROM users WHERE id = ? args: [1]",
		"rollback transaction",
	}, logs)
}
