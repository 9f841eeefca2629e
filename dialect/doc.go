// Package dialect defines the execution substrate that model collectors
// run against.
//
// The core of sqlmodel never opens connections or demarcates transactions.
// It renders a collector into a query string plus bound arguments and hands
// both to an ExecQuerier. Anything that satisfies the interface can serve:
// a *sql.Driver from dialect/sql, one of its transactions, or a test double.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres" // $1, $2 placeholders, "ident" quoting
//	dialect.MySQL    = "mysql"    // ? placeholders, `ident` quoting
//	dialect.SQLite   = "sqlite"   // ? placeholders, "ident" quoting
//
// # Interfaces
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	users, err := service.New[User](drv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Running several operations in one transaction only requires binding the
// service to the transaction. Cached reads of the modified tables are
// dropped again once the transaction commits:
//
//	tx, err := drv.Tx(ctx)
//	...
//	_, err = users.Using(tx).RemoveByOnlyPrimaryKey(ctx, id)
package dialect
