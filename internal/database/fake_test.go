package database

import (
	"context"
	"sort"
)

// fakeDriver is an in-memory Driver that records every call so tests can
// assert how many DDL statements an operation issued.
type fakeDriver struct {
	name    string
	schemas []string
	tables  map[string]map[string][]Column // schema -> table -> columns
	indexes map[string][]Index             // schema.table -> indexes
	pks     map[string][]string            // schema.table -> pk columns
	cascade bool                           // last DropSchema cascade flag

	calls  map[string]int
	failOn map[string]error // method (or "method:target") -> error
	result *Result          // canned Query result
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		name:    "testdb",
		schemas: []string{"public"},
		tables:  map[string]map[string][]Column{"public": {}},
		indexes: make(map[string][]Index),
		pks:     make(map[string][]string),
		calls:   make(map[string]int),
		failOn:  make(map[string]error),
	}
}

func (f *fakeDriver) addTable(schema, table string, columns ...Column) {
	if f.tables[schema] == nil {
		f.tables[schema] = make(map[string][]Column)
		f.schemas = append(f.schemas, schema)
	}
	f.tables[schema][table] = columns
}

func key(schema, table string) string {
	return schema + "." + table
}

func (f *fakeDriver) Connect(ctx context.Context, dsn string) error {
	f.calls["Connect"]++
	return f.failOn["Connect"]
}

func (f *fakeDriver) Close(ctx context.Context) error { return nil }
func (f *fakeDriver) Ping(ctx context.Context) error  { return nil }
func (f *fakeDriver) DatabaseName() string            { return f.name }

func (f *fakeDriver) ListSchemas(ctx context.Context) ([]string, error) {
	f.calls["ListSchemas"]++
	out := append([]string(nil), f.schemas...)
	sort.Strings(out)
	return out, f.failOn["ListSchemas"]
}

func (f *fakeDriver) ListTables(ctx context.Context, schema string) ([]string, error) {
	f.calls["ListTables"]++
	var names []string
	for name := range f.tables[schema] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, f.failOn["ListTables"]
}

func (f *fakeDriver) GetColumns(ctx context.Context, schema, table string) ([]Column, error) {
	f.calls["GetColumns"]++
	return append([]Column(nil), f.tables[schema][table]...), f.failOn["GetColumns"]
}

func (f *fakeDriver) GetIndexes(ctx context.Context, schema, table string) ([]Index, error) {
	f.calls["GetIndexes"]++
	return append([]Index(nil), f.indexes[key(schema, table)]...), f.failOn["GetIndexes"]
}

func (f *fakeDriver) GetPrimaryKey(ctx context.Context, schema, table string) ([]string, error) {
	f.calls["GetPrimaryKey"]++
	return append([]string(nil), f.pks[key(schema, table)]...), f.failOn["GetPrimaryKey"]
}

func (f *fakeDriver) CreateSchema(ctx context.Context, name string) error {
	f.calls["CreateSchema"]++
	if err := f.failOn["CreateSchema"]; err != nil {
		return err
	}
	f.schemas = append(f.schemas, name)
	f.tables[name] = make(map[string][]Column)
	return nil
}

func (f *fakeDriver) DropSchema(ctx context.Context, name string, cascade bool) error {
	f.calls["DropSchema"]++
	if err := f.failOn["DropSchema"]; err != nil {
		return err
	}
	f.cascade = cascade
	delete(f.tables, name)
	for i, s := range f.schemas {
		if s == name {
			f.schemas = append(f.schemas[:i], f.schemas[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDriver) CreateTable(ctx context.Context, schema, table string, defs []ColumnDef) error {
	f.calls["CreateTable"]++
	if err := f.failOn["CreateTable"]; err != nil {
		return err
	}
	columns := make([]Column, len(defs))
	for i, def := range defs {
		columns[i] = Column{Name: def.Name, DataType: string(def.Type), OrdinalPos: i + 1}
	}
	f.addTable(schema, table, columns...)
	return nil
}

func (f *fakeDriver) DropTable(ctx context.Context, schema, table string) error {
	f.calls["DropTable"]++
	if err := f.failOn["DropTable:"+table]; err != nil {
		return err
	}
	if err := f.failOn["DropTable"]; err != nil {
		return err
	}
	delete(f.tables[schema], table)
	return nil
}

func (f *fakeDriver) AddColumn(ctx context.Context, schema, table string, def ColumnDef) error {
	f.calls["AddColumn"]++
	if err := f.failOn["AddColumn"]; err != nil {
		return err
	}
	cols := f.tables[schema][table]
	f.tables[schema][table] = append(cols, Column{
		Name:       def.Name,
		DataType:   string(def.Type),
		OrdinalPos: len(cols) + 1,
	})
	return nil
}

func (f *fakeDriver) DropColumn(ctx context.Context, schema, table, column string) error {
	f.calls["DropColumn"]++
	if err := f.failOn["DropColumn"]; err != nil {
		return err
	}
	cols := f.tables[schema][table]
	for i, c := range cols {
		if c.Name == column {
			f.tables[schema][table] = append(cols[:i:i], cols[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDriver) AddPrimaryKey(ctx context.Context, schema, table, column string) error {
	f.calls["AddPrimaryKey"]++
	if err := f.failOn["AddPrimaryKey"]; err != nil {
		return err
	}
	f.pks[key(schema, table)] = []string{column}
	return nil
}

func (f *fakeDriver) CreateIndex(ctx context.Context, schema, table, name string, columns []string) error {
	f.calls["CreateIndex"]++
	if err := f.failOn["CreateIndex"]; err != nil {
		return err
	}
	k := key(schema, table)
	f.indexes[k] = append(f.indexes[k], Index{Name: name, Columns: columns})
	return nil
}

func (f *fakeDriver) CreateGeomIndex(ctx context.Context, schema, table, name, column string) error {
	f.calls["CreateGeomIndex"]++
	return f.failOn["CreateGeomIndex"]
}

func (f *fakeDriver) Exec(ctx context.Context, sql string, args ...any) error {
	f.calls["Exec"]++
	return f.failOn["Exec"]
}

func (f *fakeDriver) ExecMany(ctx context.Context, sql string, argSets [][]any) error {
	f.calls["ExecMany"]++
	return f.failOn["ExecMany"]
}

func (f *fakeDriver) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	f.calls["Query"]++
	if err := f.failOn["Query"]; err != nil {
		return nil, err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &Result{}, nil
}

func (f *fakeDriver) QueryOne(ctx context.Context, sql string, args ...any) (Row, error) {
	res, err := f.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	return res.Rows[0], nil
}

var _ Driver = (*fakeDriver)(nil)
