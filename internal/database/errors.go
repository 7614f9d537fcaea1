package database

import "fmt"

// InvalidNameError reports an empty, absent, or malformed table, schema, or
// column name. It is raised before any database round-trip.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name: %q", e.Name)
}

// TableDroppedError reports an operation on a table handle after Drop. The
// handle is permanently inert once dropped; the name may already refer to a
// different object.
type TableDroppedError struct {
	Schema string
	Table  string
}

func (e *TableDroppedError) Error() string {
	return fmt.Sprintf("table %s.%s has been dropped; this handle must not be used again", e.Schema, e.Table)
}

// OperationError wraps a driver failure with the operation that caused it.
type OperationError struct {
	Op    string
	Cause error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}
