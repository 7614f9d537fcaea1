package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/joacominatel/pgdb/internal/database"
)

// typeNames maps portable column-type tags to PostgreSQL type names.
// Unknown tags pass through unchanged so callers can reach types the enum
// does not cover.
var typeNames = map[database.ColumnType]string{
	database.Integer:     "integer",
	database.BigInt:      "bigint",
	database.Serial:      "serial",
	database.Text:        "text",
	database.Varchar:     "character varying",
	database.Boolean:     "boolean",
	database.Timestamp:   "timestamp without time zone",
	database.TimestampTZ: "timestamp with time zone",
	database.Date:        "date",
	database.Numeric:     "numeric",
	database.Float:       "double precision",
	database.JSONB:       "jsonb",
	database.Bytes:       "bytea",
	database.UUID:        "uuid",
	database.Geometry:    "geometry",
}

func typeName(t database.ColumnType) string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return string(t)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func qualify(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

func columnDDL(def database.ColumnDef) string {
	s := quoteIdent(def.Name) + " " + typeName(def.Type)
	if def.NotNull {
		s += " NOT NULL"
	}
	if def.Default != "" {
		s += " DEFAULT " + def.Default
	}
	return s
}

// CreateSchema issues CREATE SCHEMA.
func (d *Driver) CreateSchema(ctx context.Context, name string) error {
	return d.Exec(ctx, "CREATE SCHEMA "+quoteIdent(name))
}

// DropSchema issues DROP SCHEMA, cascading when requested.
func (d *Driver) DropSchema(ctx context.Context, name string, cascade bool) error {
	sql := "DROP SCHEMA " + quoteIdent(name)
	if cascade {
		sql += " CASCADE"
	}
	return d.Exec(ctx, sql)
}

// CreateTable creates a table with the given column definitions.
func (d *Driver) CreateTable(ctx context.Context, schema, table string, defs []database.ColumnDef) error {
	parts := make([]string, len(defs))
	for i, def := range defs {
		parts[i] = columnDDL(def)
	}
	sql := fmt.Sprintf("CREATE TABLE %s (%s)", qualify(schema, table), strings.Join(parts, ", "))
	return d.Exec(ctx, sql)
}

// DropTable drops a table.
func (d *Driver) DropTable(ctx context.Context, schema, table string) error {
	return d.Exec(ctx, "DROP TABLE "+qualify(schema, table))
}

// AddColumn adds a column to an existing table.
func (d *Driver) AddColumn(ctx context.Context, schema, table string, def database.ColumnDef) error {
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", qualify(schema, table), columnDDL(def))
	return d.Exec(ctx, sql)
}

// DropColumn drops a column from an existing table.
func (d *Driver) DropColumn(ctx context.Context, schema, table, column string) error {
	sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", qualify(schema, table), quoteIdent(column))
	return d.Exec(ctx, sql)
}

// AddPrimaryKey adds a primary key constraint on a single column.
func (d *Driver) AddPrimaryKey(ctx context.Context, schema, table, column string) error {
	sql := fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", qualify(schema, table), quoteIdent(column))
	return d.Exec(ctx, sql)
}

// CreateIndex creates a named btree index over the given columns.
func (d *Driver) CreateIndex(ctx context.Context, schema, table, name string, columns []string) error {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		quoteIdent(name), qualify(schema, table), strings.Join(quoted, ", "))
	return d.Exec(ctx, sql)
}

// CreateGeomIndex creates a named GIST index over a geometry column.
func (d *Driver) CreateGeomIndex(ctx context.Context, schema, table, name, column string) error {
	sql := fmt.Sprintf("CREATE INDEX %s ON %s USING GIST (%s)",
		quoteIdent(name), qualify(schema, table), quoteIdent(column))
	return d.Exec(ctx, sql)
}
