package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Database owns one driver session and acts as the schema catalog and table
// resolver. The default schema is an explicit field set at construction; it
// is never process-global state.
type Database struct {
	driver  Driver
	dsn     string
	schema  string
	queries map[string]string
	log     *slog.Logger
	session string
}

// Option configures a Database at Open time.
type Option func(*Database)

// WithSchema sets the default schema used for unqualified table references
// and for Tables and WipeSchema.
func WithSchema(schema string) Option {
	return func(db *Database) {
		db.schema = schema
	}
}

// WithLogger sets the logger for operation events. Records carry the
// handle's session id. Default is a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		db.log = l
	}
}

// Open connects the driver to dsn and returns the database handle. The DSN
// is parsed once by the driver; the handle holds the single session for its
// lifetime.
func Open(ctx context.Context, driver Driver, dsn string, opts ...Option) (*Database, error) {
	db := &Database{
		driver:  driver,
		dsn:     dsn,
		queries: make(map[string]string),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if err := driver.Connect(ctx, dsn); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	db.log = db.log.With("session", db.session, "database", driver.DatabaseName())
	return db, nil
}

// Close closes the underlying session.
func (db *Database) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}

// Ping checks the underlying session.
func (db *Database) Ping(ctx context.Context) error {
	return db.driver.Ping(ctx)
}

// Name returns the connected database's name.
func (db *Database) Name() string {
	return db.driver.DatabaseName()
}

// Schema returns the configured default schema, empty if none.
func (db *Database) Schema() string {
	return db.schema
}

// defaultSchema is the schema used when a reference carries none and no
// default was configured.
const defaultSchema = "public"

func (db *Database) effectiveSchema(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if db.schema != "" {
		return db.schema
	}
	return defaultSchema
}

// Schemas returns all non-system schemas in the database.
func (db *Database) Schemas(ctx context.Context) ([]string, error) {
	return db.driver.ListSchemas(ctx)
}

// TablesInSchema returns the table names in the given schema.
func (db *Database) TablesInSchema(ctx context.Context, schema string) ([]string, error) {
	schema, err := ValidateName(schema)
	if err != nil {
		return nil, err
	}
	return db.driver.ListTables(ctx, schema)
}

// Tables lists tables: unqualified names in the default schema when one is
// configured, otherwise the schema-qualified union across all user schemas.
func (db *Database) Tables(ctx context.Context) ([]string, error) {
	if db.schema != "" {
		return db.driver.ListTables(ctx, db.schema)
	}
	schemas, err := db.driver.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, schema := range schemas {
		names, err := db.driver.ListTables(ctx, schema)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			tables = append(tables, schema+"."+name)
		}
	}
	return tables, nil
}

// Table resolves a possibly schema-qualified reference to a table handle.
// An existing table returns an autoloaded handle; a miss returns an inert
// placeholder with an empty name rather than an error. Callers must check
// Exists() before reading through the handle.
func (db *Database) Table(ctx context.Context, ref string) (*Table, error) {
	ref, err := ValidateName(ref)
	if err != nil {
		return nil, err
	}
	schema, name, err := ParseQualifiedName(ref)
	if err != nil {
		return nil, err
	}
	schema = db.effectiveSchema(schema)
	tables, err := db.driver.ListTables(ctx, schema)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t == name {
			return newTable(ctx, db, schema, name, nil)
		}
	}
	return newTable(ctx, db, schema, "", nil)
}

// CreateTable creates a table with the given column definitions and returns
// its handle. If the table already exists the existing one is autoloaded and
// returned as-is; the requested definitions are not compared against it.
func (db *Database) CreateTable(ctx context.Context, ref string, defs []ColumnDef) (*Table, error) {
	ref, err := ValidateName(ref)
	if err != nil {
		return nil, err
	}
	schema, name, err := ParseQualifiedName(ref)
	if err != nil {
		return nil, err
	}
	schema = db.effectiveSchema(schema)
	tables, err := db.driver.ListTables(ctx, schema)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t == name {
			return newTable(ctx, db, schema, name, nil)
		}
	}
	return newTable(ctx, db, schema, name, defs)
}

// CreateSchema creates the schema if it does not already exist.
func (db *Database) CreateSchema(ctx context.Context, name string) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	schemas, err := db.driver.ListSchemas(ctx)
	if err != nil {
		return err
	}
	for _, s := range schemas {
		if s == name {
			return nil
		}
	}
	if err := db.driver.CreateSchema(ctx, name); err != nil {
		return &OperationError{Op: "create schema " + name, Cause: err}
	}
	db.log.Info("created schema", "schema", name)
	return nil
}

// DropSchema drops the schema if it exists, cascading dependent objects only
// when requested.
func (db *Database) DropSchema(ctx context.Context, name string, cascade bool) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	schemas, err := db.driver.ListSchemas(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, s := range schemas {
		if s == name {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if err := db.driver.DropSchema(ctx, name, cascade); err != nil {
		return &OperationError{Op: "drop schema " + name, Cause: err}
	}
	db.log.Info("dropped schema", "schema", name, "cascade", cascade)
	return nil
}

// WipeSchema drops every table in the default schema, one DROP TABLE per
// table through its own handle. The first failure aborts the loop and is
// returned with the failing table's name; tables dropped before it stay
// dropped, so a partial wipe is observable by the caller.
func (db *Database) WipeSchema(ctx context.Context) error {
	schema := db.effectiveSchema("")
	tables, err := db.driver.ListTables(ctx, schema)
	if err != nil {
		return err
	}
	for _, name := range tables {
		t, err := newTable(ctx, db, schema, name, nil)
		if err != nil {
			return fmt.Errorf("wipe schema %s: load %s: %w", schema, name, err)
		}
		if err := t.Drop(ctx); err != nil {
			return fmt.Errorf("wipe schema %s: drop %s: %w", schema, name, err)
		}
	}
	return nil
}

// Execute runs a statement where nothing is expected back.
func (db *Database) Execute(ctx context.Context, sql string, args ...any) error {
	return db.driver.Exec(ctx, sql, args...)
}

// ExecuteMany runs one statement once per parameter set.
func (db *Database) ExecuteMany(ctx context.Context, sql string, argSets [][]any) error {
	return db.driver.ExecMany(ctx, sql, argSets)
}

// Query runs an arbitrary statement and fetches all results eagerly.
func (db *Database) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	return db.driver.Query(ctx, sql, args...)
}

// QueryOne fetches just one row, nil if the result is empty.
func (db *Database) QueryOne(ctx context.Context, sql string, args ...any) (Row, error) {
	return db.driver.QueryOne(ctx, sql, args...)
}

// LoadQueries reads every *.sql file in dir into the named fragment store,
// keyed by file name without extension.
func (db *Database) LoadQueries(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("load queries: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("load queries: %w", err)
		}
		key := strings.TrimSuffix(entry.Name(), ".sql")
		db.queries[key] = string(text)
	}
	return nil
}

// QueryText returns a named SQL fragment previously loaded with LoadQueries.
func (db *Database) QueryText(name string) (string, bool) {
	text, ok := db.queries[name]
	return text, ok
}

// BuildQuery replaces $key tokens in sql with the names in lookup. This is
// for object names only; values must always go through driver parameters.
func (db *Database) BuildQuery(sql string, lookup map[string]string) string {
	for key, val := range lookup {
		sql = strings.ReplaceAll(sql, "$"+key, val)
	}
	return sql
}
