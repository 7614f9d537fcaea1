package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTableResolvesExisting(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("public", "orders",
		Column{Name: "id", DataType: "integer", OrdinalPos: 1},
		Column{Name: "total", DataType: "numeric", OrdinalPos: 2},
	)
	db := newTestDB(t, f)

	tbl, err := db.Table(ctx, "orders")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if !tbl.Exists() {
		t.Fatal("Exists() = false for existing table")
	}
	if tbl.Schema() != "public" || tbl.Name() != "orders" {
		t.Errorf("resolved to %s.%s, want public.orders", tbl.Schema(), tbl.Name())
	}
	if got := tbl.Columns(); !reflect.DeepEqual(got, []string{"id", "total"}) {
		t.Errorf("Columns() = %v, want [id total]", got)
	}
}

func TestTableQualifiedReference(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("sales", "orders", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	db := newTestDB(t, f)

	tbl, err := db.Table(ctx, "sales.orders")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if !tbl.Exists() || tbl.Schema() != "sales" {
		t.Errorf("resolved to %s.%s (exists=%v), want sales.orders", tbl.Schema(), tbl.Name(), tbl.Exists())
	}
}

func TestTableUsesDefaultSchema(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("sales", "orders", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	db := newTestDB(t, f, WithSchema("sales"))

	tbl, err := db.Table(ctx, "orders")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if !tbl.Exists() || tbl.Schema() != "sales" {
		t.Errorf("resolved to %s.%s (exists=%v), want sales.orders", tbl.Schema(), tbl.Name(), tbl.Exists())
	}
}

func TestTableInvalidName(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, newFakeDriver())

	for _, bad := range []string{"", "   "} {
		var invalid *InvalidNameError
		if _, err := db.Table(ctx, bad); !errors.As(err, &invalid) {
			t.Errorf("Table(%q) err = %v, want InvalidNameError", bad, err)
		}
	}
}

func TestCreateTable(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	db := newTestDB(t, f)

	defs := []ColumnDef{
		{Name: "id", Type: Integer},
		{Name: "name", Type: Text},
	}
	tbl, err := db.CreateTable(ctx, "customers", defs)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if got := f.calls["CreateTable"]; got != 1 {
		t.Fatalf("CreateTable issued %d times, want 1", got)
	}
	if got := tbl.Columns(); !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("Columns() = %v, want [id name]", got)
	}
}

func TestCreateTableIdempotent(t *testing.T) {
	// An existing table comes back autoloaded; the requested definitions
	// are not compared against it.
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("public", "customers", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	db := newTestDB(t, f)

	tbl, err := db.CreateTable(ctx, "customers", []ColumnDef{{Name: "other", Type: Text}})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if got := f.calls["CreateTable"]; got != 0 {
		t.Errorf("CreateTable issued %d times for existing table, want 0", got)
	}
	if got := tbl.Columns(); !reflect.DeepEqual(got, []string{"id"}) {
		t.Errorf("Columns() = %v, want the existing [id]", got)
	}
}

func TestCreateSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	db := newTestDB(t, f)

	if err := db.CreateSchema(ctx, "public"); err != nil {
		t.Fatalf("CreateSchema existing: %v", err)
	}
	if got := f.calls["CreateSchema"]; got != 0 {
		t.Errorf("CreateSchema issued %d times for existing schema, want 0", got)
	}

	if err := db.CreateSchema(ctx, "staging"); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	if got := f.calls["CreateSchema"]; got != 1 {
		t.Errorf("CreateSchema issued %d times, want 1", got)
	}
}

func TestDropSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	db := newTestDB(t, f)

	if err := db.DropSchema(ctx, "nope", false); err != nil {
		t.Fatalf("DropSchema absent: %v", err)
	}
	if got := f.calls["DropSchema"]; got != 0 {
		t.Errorf("DropSchema issued %d times for absent schema, want 0", got)
	}

	if err := db.DropSchema(ctx, "public", true); err != nil {
		t.Fatalf("DropSchema: %v", err)
	}
	if got := f.calls["DropSchema"]; got != 1 {
		t.Errorf("DropSchema issued %d times, want 1", got)
	}
	if !f.cascade {
		t.Error("cascade flag not passed through")
	}
}

func TestWipeSchema(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("public", "a", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	f.addTable("public", "b", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	db := newTestDB(t, f)

	if err := db.WipeSchema(ctx); err != nil {
		t.Fatalf("WipeSchema: %v", err)
	}
	if got := f.calls["DropTable"]; got != 2 {
		t.Errorf("DropTable issued %d times, want 2 (one per table)", got)
	}
	if len(f.tables["public"]) != 0 {
		t.Errorf("tables remain after wipe: %v", f.tables["public"])
	}
}

func TestWipeSchemaPartialFailure(t *testing.T) {
	// Tables drop in order a, b, c. The failure on b must surface with its
	// name, leave a dropped, and leave c untouched.
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("public", "a", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	f.addTable("public", "b", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	f.addTable("public", "c", Column{Name: "id", DataType: "integer", OrdinalPos: 1})
	f.failOn["DropTable:b"] = errors.New("b is referenced by a view")
	db := newTestDB(t, f)

	err := db.WipeSchema(ctx)
	if err == nil {
		t.Fatal("WipeSchema succeeded despite failing drop")
	}
	if !strings.Contains(err.Error(), "b") {
		t.Errorf("error %q does not name the failing table", err)
	}
	if _, ok := f.tables["public"]["a"]; ok {
		t.Error("first table not dropped before the failure")
	}
	if _, ok := f.tables["public"]["b"]; !ok {
		t.Error("failing table should remain")
	}
	if _, ok := f.tables["public"]["c"]; !ok {
		t.Error("later table should remain after abort")
	}
	if got := f.calls["DropTable"]; got != 2 {
		t.Errorf("DropTable issued %d times, want 2 (abort after failure)", got)
	}
}

func TestTablesQualifiedUnion(t *testing.T) {
	ctx := context.Background()
	f := newFakeDriver()
	f.addTable("public", "orders")
	f.addTable("sales", "invoices")

	// No default schema: qualified names across all user schemas.
	db := newTestDB(t, f)
	got, err := db.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	want := []string{"public.orders", "sales.invoices"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tables() = %v, want %v", got, want)
	}

	// Default schema configured: unqualified names within it.
	scoped := newTestDB(t, f, WithSchema("sales"))
	got, err = scoped.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"invoices"}) {
		t.Errorf("Tables() = %v, want [invoices]", got)
	}
}

func TestBuildQuery(t *testing.T) {
	db := newTestDB(t, newFakeDriver())
	sql := db.BuildQuery(
		"SELECT $field FROM $table WHERE $field > $1",
		map[string]string{"field": "total", "table": "orders"},
	)
	want := "SELECT total FROM orders WHERE total > $1"
	if sql != want {
		t.Errorf("BuildQuery = %q, want %q", sql, want)
	}
}

func TestLoadQueries(t *testing.T) {
	dir := t.TempDir()
	write := func(name, text string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("totals.sql", "SELECT sum(total) FROM orders")
	write("latest.sql", "SELECT * FROM orders ORDER BY id DESC LIMIT 1")
	write("notes.txt", "not a query")

	db := newTestDB(t, newFakeDriver())
	if err := db.LoadQueries(dir); err != nil {
		t.Fatalf("LoadQueries: %v", err)
	}

	if got, ok := db.QueryText("totals"); !ok || got != "SELECT sum(total) FROM orders" {
		t.Errorf("QueryText(totals) = %q, %v", got, ok)
	}
	if _, ok := db.QueryText("latest"); !ok {
		t.Error("QueryText(latest) missing")
	}
	if _, ok := db.QueryText("notes"); ok {
		t.Error("non-sql file loaded into fragment store")
	}
}
