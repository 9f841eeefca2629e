// Package service exposes the remove, modify, count, exist and find
// surface of a registered model type.
//
// A Service is built from a dialect.ExecQuerier, usually a *sql.Driver:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	...
//	users, err := service.New[User](drv)
//	...
//	ok, err := users.ModifySelectiveByOnlyPrimaryKey(ctx, &User{ID: 1, Age: schema.Some(31)})
//	adults, err := users.FindPageBySqlFragment(ctx, fragment.GTE("age", 18), fragment.Asc("name"), 1, 20)
//
// Each method builds one collector with the collector package and runs it
// with Collect. Collect evaluates the privacy policy of the service, logs
// the statement at debug level and, when a cache is configured, serves
// reads from it. Modify methods come in pairs: ModifyX writes every
// non-key field and ModifySelectiveX writes only the present ones.
//
// Single-column reads are free functions over a service:
//
//	names, err := service.FindSingleColumn[User, string](ctx, users, "name", fragment.Condition{}, fragment.Asc("name"))
package service
