package database

import "context"

// Driver is the single-session seam the handles talk through. An
// implementation wraps exactly one live connection; it is not required to be
// safe for concurrent use, and the handles do no locking of their own.
type Driver interface {
	// Connect establishes the session to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the session.
	Close(ctx context.Context) error

	// Ping checks if the session is alive.
	Ping(ctx context.Context) error

	// DatabaseName returns the name of the connected database.
	DatabaseName() string

	// ListSchemas returns all non-system schemas.
	ListSchemas(ctx context.Context) ([]string, error)

	// ListTables returns all table names in a schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// GetColumns returns column metadata for a table, in ordinal order.
	GetColumns(ctx context.Context, schema, table string) ([]Column, error)

	// GetIndexes returns the indexes defined on a table.
	GetIndexes(ctx context.Context, schema, table string) ([]Index, error)

	// GetPrimaryKey returns the ordered columns of the primary key
	// constraint, or an empty slice if none is defined.
	GetPrimaryKey(ctx context.Context, schema, table string) ([]string, error)

	// CreateSchema issues schema-creation DDL.
	CreateSchema(ctx context.Context, name string) error

	// DropSchema issues schema-drop DDL, cascading if requested.
	DropSchema(ctx context.Context, name string, cascade bool) error

	// CreateTable creates a table with the given column definitions.
	CreateTable(ctx context.Context, schema, table string, defs []ColumnDef) error

	// DropTable drops a table.
	DropTable(ctx context.Context, schema, table string) error

	// AddColumn adds a column to an existing table.
	AddColumn(ctx context.Context, schema, table string, def ColumnDef) error

	// DropColumn drops a column from an existing table.
	DropColumn(ctx context.Context, schema, table, column string) error

	// AddPrimaryKey adds a primary key constraint on a single column.
	AddPrimaryKey(ctx context.Context, schema, table, column string) error

	// CreateIndex creates a named btree index over the given columns.
	CreateIndex(ctx context.Context, schema, table, name string, columns []string) error

	// CreateGeomIndex creates a named GIST index over a geometry column.
	CreateGeomIndex(ctx context.Context, schema, table, name, column string) error

	// Exec runs a statement where nothing is expected back.
	Exec(ctx context.Context, sql string, args ...any) error

	// ExecMany runs one statement once per parameter set.
	ExecMany(ctx context.Context, sql string, argSets [][]any) error

	// Query runs a statement and fetches all resulting rows.
	Query(ctx context.Context, sql string, args ...any) (*Result, error)

	// QueryOne runs a statement and fetches the first row, or nil if the
	// result is empty.
	QueryOne(ctx context.Context, sql string, args ...any) (Row, error)
}
