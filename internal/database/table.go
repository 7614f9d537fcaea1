package database

import (
	"context"
	"fmt"
)

// Table binds a (schema, name) pair to cached structural metadata and exposes
// idempotent DDL against it. A handle is either autoloaded from an existing
// table or constructed with column definitions, in which case the table is
// created as part of construction.
//
// After Drop the handle is permanently inert: every operation other than the
// accessors returns TableDroppedError. The cached metadata is not safe for
// concurrent mutation, and two handles over the same physical table each hold
// their own view; callers needing concurrent safety must serialize access to
// a handle.
type Table struct {
	db         *Database
	schema     string
	name       string
	columns    []Column
	indexes    map[string]*Index
	primaryKey []string
	dropped    bool
}

// newTable autoloads metadata when defs is nil, otherwise creates the table
// first. An empty name yields an inert placeholder for a failed lookup.
func newTable(ctx context.Context, db *Database, schema, name string, defs []ColumnDef) (*Table, error) {
	t := &Table{
		db:      db,
		schema:  schema,
		name:    name,
		indexes: make(map[string]*Index),
	}
	if name == "" {
		return t, nil
	}
	if defs != nil {
		if err := db.driver.CreateTable(ctx, schema, name, defs); err != nil {
			return nil, &OperationError{Op: "create table " + t.qualified(), Cause: err}
		}
		db.log.Info("created table", "table", t.qualified())
	}
	if err := t.refresh(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Schema returns the schema the handle is bound to.
func (t *Table) Schema() string {
	return t.schema
}

// Name returns the table name, empty for a placeholder handle.
func (t *Table) Name() string {
	return t.name
}

// Exists reports whether the handle is bound to a concrete table. A lookup
// miss produces a handle with Exists() == false; check it before reading.
func (t *Table) Exists() bool {
	return t.name != ""
}

// Dropped reports whether Drop has been called on this handle.
func (t *Table) Dropped() bool {
	return t.dropped
}

// Columns returns the cached column names in ordinal order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnInfo returns the cached column descriptors.
func (t *Table) ColumnInfo() []Column {
	return t.columns
}

// Indexes returns the cached index descriptors keyed by name. Entries with
// Failed set record creation attempts that errored. Callers must not modify
// the map.
func (t *Table) Indexes() map[string]*Index {
	return t.indexes
}

// PrimaryKey returns the ordered columns of the primary key constraint,
// empty if none is defined.
func (t *Table) PrimaryKey() []string {
	return t.primaryKey
}

func (t *Table) qualified() string {
	return t.schema + "." + t.name
}

func (t *Table) checkDropped() error {
	if t.dropped {
		return &TableDroppedError{Schema: t.schema, Table: t.name}
	}
	return nil
}

func (t *Table) checkUsable() error {
	if err := t.checkDropped(); err != nil {
		return err
	}
	if t.name == "" {
		return &InvalidNameError{Name: ""}
	}
	return nil
}

// refresh reloads all cached structure from the database.
func (t *Table) refresh(ctx context.Context) error {
	if err := t.refreshColumns(ctx); err != nil {
		return err
	}
	if err := t.refreshIndexes(ctx); err != nil {
		return err
	}
	return t.refreshPrimaryKey(ctx)
}

func (t *Table) refreshColumns(ctx context.Context) error {
	cols, err := t.db.driver.GetColumns(ctx, t.schema, t.name)
	if err != nil {
		return &OperationError{Op: "load columns of " + t.qualified(), Cause: err}
	}
	t.columns = cols
	return nil
}

// refreshIndexes rebuilds the index cache from the catalog. Failure sentinels
// are carried over: an attempted-and-failed name must stay claimed so a
// repeated request does not re-issue the DDL.
func (t *Table) refreshIndexes(ctx context.Context) error {
	idxs, err := t.db.driver.GetIndexes(ctx, t.schema, t.name)
	if err != nil {
		return &OperationError{Op: "load indexes of " + t.qualified(), Cause: err}
	}
	m := make(map[string]*Index, len(idxs))
	for i := range idxs {
		ix := idxs[i]
		m[ix.Name] = &ix
	}
	for name, ix := range t.indexes {
		if ix != nil && ix.Failed {
			if _, ok := m[name]; !ok {
				m[name] = ix
			}
		}
	}
	t.indexes = m
	return nil
}

func (t *Table) refreshPrimaryKey(ctx context.Context) error {
	pk, err := t.db.driver.GetPrimaryKey(ctx, t.schema, t.name)
	if err != nil {
		return &OperationError{Op: "load primary key of " + t.qualified(), Cause: err}
	}
	t.primaryKey = pk
	return nil
}

// AddPrimaryKey adds a primary key constraint on the named column, "id" when
// empty. No DDL is issued if the table already has a primary key.
func (t *Table) AddPrimaryKey(ctx context.Context, column string) error {
	if err := t.checkUsable(); err != nil {
		return err
	}
	if column == "" {
		column = "id"
	}
	if len(t.primaryKey) > 0 {
		return nil
	}
	if err := t.db.driver.AddPrimaryKey(ctx, t.schema, t.name, column); err != nil {
		return &OperationError{Op: fmt.Sprintf("add primary key (%s) to %s", column, t.qualified()), Cause: err}
	}
	t.db.log.Info("added primary key", "table", t.qualified(), "column", column)
	return t.refreshPrimaryKey(ctx)
}

// CreateColumn adds a column of the given type. The existence check compares
// normalized names, so a request for "ID" is a no-op when "id" exists; the
// DDL itself always uses the name as given.
func (t *Table) CreateColumn(ctx context.Context, name string, typ ColumnType) error {
	if err := t.checkUsable(); err != nil {
		return err
	}
	norm := NormalizeColumnName(name)
	for _, c := range t.columns {
		if NormalizeColumnName(c.Name) == norm {
			return nil
		}
	}
	def := ColumnDef{Name: name, Type: typ}
	if err := t.db.driver.AddColumn(ctx, t.schema, t.name, def); err != nil {
		return &OperationError{Op: fmt.Sprintf("add column %s to %s", name, t.qualified()), Cause: err}
	}
	t.db.log.Info("added column", "table", t.qualified(), "column", name, "type", string(typ))
	return t.refreshColumns(ctx)
}

// DropColumn drops the named column. The existence check is an exact match;
// a name not present in the cache is a no-op.
func (t *Table) DropColumn(ctx context.Context, name string) error {
	if err := t.checkUsable(); err != nil {
		return err
	}
	found := false
	for _, c := range t.columns {
		if c.Name == name {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if err := t.db.driver.DropColumn(ctx, t.schema, t.name, name); err != nil {
		return &OperationError{Op: fmt.Sprintf("drop column %s from %s", name, t.qualified()), Cause: err}
	}
	t.db.log.Info("dropped column", "table", t.qualified(), "column", name)
	return t.refreshColumns(ctx)
}

// CreateIndex creates an index over the given columns, deriving a name when
// none is supplied. A name already present in the cache returns the cached
// descriptor without issuing DDL, which makes repeated calls idempotent.
//
// When creation fails the failure is cached under the derived name as a
// descriptor with Failed set, and the error is returned alongside it; a later
// call with the same columns finds the sentinel and issues nothing.
func (t *Table) CreateIndex(ctx context.Context, columns []string, name string) (*Index, error) {
	if err := t.checkUsable(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("create index on %s: no columns given", t.qualified())
	}
	name = DeriveIndexName(t.name, columns, name)
	if ix, ok := t.indexes[name]; ok {
		return ix, nil
	}

	fail := func(cause error) (*Index, error) {
		ix := &Index{Name: name, Columns: columns, Failed: true}
		t.indexes[name] = ix
		return ix, &OperationError{Op: fmt.Sprintf("create index %s on %s", name, t.qualified()), Cause: cause}
	}

	// Resolve each requested column against the declared ones before
	// touching the database.
	for _, c := range columns {
		known := false
		for _, col := range t.columns {
			if col.Name == c {
				known = true
				break
			}
		}
		if !known {
			return fail(fmt.Errorf("no column %q", c))
		}
	}

	if err := t.db.driver.CreateIndex(ctx, t.schema, t.name, name, columns); err != nil {
		return fail(err)
	}
	t.db.log.Info("created index", "table", t.qualified(), "index", name)
	if err := t.refreshIndexes(ctx); err != nil {
		return nil, err
	}
	ix, ok := t.indexes[name]
	if !ok {
		ix = &Index{Name: name, Columns: columns}
		t.indexes[name] = ix
	}
	return ix, nil
}

// CreateIndexGeom creates a GIST index on a geometry column, "geom" when
// empty. Unlike CreateIndex it always issues DDL; the caller is responsible
// for not creating it twice.
func (t *Table) CreateIndexGeom(ctx context.Context, column string) error {
	if err := t.checkUsable(); err != nil {
		return err
	}
	if column == "" {
		column = "geom"
	}
	name := fmt.Sprintf("idx_%s_%s", t.name, column)
	if err := t.db.driver.CreateGeomIndex(ctx, t.schema, t.name, name, column); err != nil {
		return &OperationError{Op: fmt.Sprintf("create geometry index %s on %s", name, t.qualified()), Cause: err}
	}
	t.db.log.Info("created geometry index", "table", t.qualified(), "index", name)
	return nil
}

// Drop drops the table and marks the handle dropped. A second Drop returns
// TableDroppedError rather than a silent no-op, to catch use-after-drop bugs
// early.
func (t *Table) Drop(ctx context.Context) error {
	if err := t.checkUsable(); err != nil {
		return err
	}
	if err := t.db.driver.DropTable(ctx, t.schema, t.name); err != nil {
		return &OperationError{Op: "drop table " + t.qualified(), Cause: err}
	}
	t.dropped = true
	t.db.log.Info("dropped table", "table", t.qualified())
	return nil
}
