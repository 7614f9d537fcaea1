package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joacominatel/pgdb/internal/database"
)

// Driver implements database.Driver on a single PostgreSQL session. DDL is
// autocommitted statement by statement; there is no pooling and no
// transaction spanning multiple operations.
type Driver struct {
	conn   *pgx.Conn
	dbName string
}

var _ database.Driver = (*Driver)(nil)

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect establishes the session.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("ping: %w", err)
	}

	d.conn = conn
	d.dbName = cfg.Database
	return nil
}

// Close closes the session.
func (d *Driver) Close(ctx context.Context) error {
	if d.conn != nil {
		return d.conn.Close(ctx)
	}
	return nil
}

// Ping checks if the session is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.conn == nil {
		return fmt.Errorf("not connected")
	}
	return d.conn.Ping(ctx)
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

// ListSchemas returns all non-system schemas.
func (d *Driver) ListSchemas(ctx context.Context) ([]string, error) {
	return d.stringColumn(ctx, "list schemas", queryListSchemas)
}

// ListTables returns all table names in a schema.
func (d *Driver) ListTables(ctx context.Context, schema string) ([]string, error) {
	return d.stringColumn(ctx, "list tables", queryListTables, schema)
}

// GetColumns returns column metadata for a table, in ordinal order.
func (d *Driver) GetColumns(ctx context.Context, schema, table string) ([]database.Column, error) {
	rows, err := d.conn.Query(ctx, queryGetColumns, schema, table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default, &col.OrdinalPos, &col.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetIndexes returns the indexes defined on a table with their columns in
// index order.
func (d *Driver) GetIndexes(ctx context.Context, schema, table string) ([]database.Index, error) {
	rows, err := d.conn.Query(ctx, queryGetIndexes, schema, table)
	if err != nil {
		return nil, fmt.Errorf("get indexes: %w", err)
	}
	defer rows.Close()

	var indexes []database.Index
	byName := make(map[string]int)
	for rows.Next() {
		var index, column string
		if err := rows.Scan(&index, &column); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		i, ok := byName[index]
		if !ok {
			i = len(indexes)
			byName[index] = i
			indexes = append(indexes, database.Index{Name: index})
		}
		indexes[i].Columns = append(indexes[i].Columns, column)
	}
	return indexes, rows.Err()
}

// GetPrimaryKey returns the ordered columns of the primary key constraint.
func (d *Driver) GetPrimaryKey(ctx context.Context, schema, table string) ([]string, error) {
	return d.stringColumn(ctx, "get primary key", queryGetPrimaryKey, schema, table)
}

// Exec runs a statement where nothing is expected back.
func (d *Driver) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := d.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

// ExecMany runs one statement once per parameter set, pipelined in a single
// batch round-trip.
func (d *Driver) ExecMany(ctx context.Context, sql string, argSets [][]any) error {
	batch := &pgx.Batch{}
	for _, args := range argSets {
		batch.Queue(sql, args...)
	}
	results := d.conn.SendBatch(ctx, batch)
	for range argSets {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("execute many: %w", err)
		}
	}
	return results.Close()
}

// Query runs a statement and fetches all resulting rows eagerly.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) (*database.Result, error) {
	start := time.Now()

	rows, err := d.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var resultRows []database.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(database.Row, len(values))
		for i, v := range values {
			row[columns[i]] = v
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &database.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// QueryOne runs a statement and fetches the first row, nil if none.
func (d *Driver) QueryOne(ctx context.Context, sql string, args ...any) (database.Row, error) {
	res, err := d.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	return res.Rows[0], nil
}

func (d *Driver) stringColumn(ctx context.Context, op, sql string, args ...any) ([]string, error) {
	rows, err := d.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
