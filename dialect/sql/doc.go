// Package sql provides the SQL statement builders and the database/sql
// driver used by the model collectors.
//
// # Builder Types
//
//   - Builder: Low-level SQL string builder with identifier quoting and placeholders
//   - Selector: SELECT statement builder with ordering and pagination
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE statement builder with WHERE predicates
//
// # Dialect Support
//
// Identifiers are quoted with backticks on MySQL and double quotes
// elsewhere. Arguments are bound with "$n" on PostgreSQL and "?" elsewhere:
//
//	q, args, err := sql.Select(dialect.Postgres, "id", "name").
//	    From("users").
//	    OrderBy(sql.OrderTerm{Column: "id", Desc: true}).
//	    Limit(10).
//	    Query()
//	// SELECT "id", "name" FROM "users" ORDER BY "id" DESC LIMIT 10
//
// # Predicates
//
// A Predicate writes a boolean expression into a Builder. The predicates of
// package fragment render into it:
//
//	p := fragment.EQ("name", "a8m").Predicate(resolver)
//	sql.Update(dialect.MySQL, "users").Set("age", 30).Where(p).Query()
//	// UPDATE `users` SET `age` = ? WHERE `name` = ?
//
// # Templates
//
// SelectTemplate appends the WHERE, ORDER BY and pagination clauses to a
// caller-trusted `SELECT ... FROM ...` text:
//
//	sql.SelectTemplate(dialect.SQLite, "SELECT u.* FROM users u JOIN teams t ON t.id = u.team_id")
//
// # Drivers
//
// Driver adapts a *database/sql.DB to dialect.Driver. StatsDriver records
// statement statistics, logs slow statements and samples prometheus metrics;
// DebugDriver logs every statement:
//
//	drv, err := sql.Open("sqlite", "file:app.db")
//	stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond), sql.WithSlowQueryLog(nil))
//	users, err := service.New[User](sql.NewDebugDriver(stats))
package sql
