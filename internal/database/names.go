package database

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// indexSignatureDelim joins column names into the hashed index signature.
const indexSignatureDelim = "||"

// ParseQualifiedName splits a possibly schema-qualified table reference on
// the first dot. An unqualified reference returns an empty schema and the
// caller substitutes its default.
func ParseQualifiedName(ref string) (schema, table string, err error) {
	if i := strings.Index(ref, "."); i >= 0 {
		schema, table = ref[:i], ref[i+1:]
	} else {
		table = ref
	}
	if strings.TrimSpace(table) == "" {
		return "", "", &InvalidNameError{Name: ref}
	}
	return schema, table, nil
}

// ValidateName trims an externally supplied name and rejects empty input.
// Every table name crosses this before any lookup or DDL.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &InvalidNameError{Name: name}
	}
	return trimmed, nil
}

// NormalizeColumnName produces the form used for column existence checks.
// DDL always uses the original declared name, never the normalized one.
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(name), `"`))
}

// DeriveIndexName returns a stable identifier for an index on the given
// columns. An explicit name wins verbatim; a single column gets "<col>_idx";
// multiple columns get "ix_<table>_<hash>" where the hash is the first 16 hex
// characters of blake3 over the joined column names. Column order is
// significant: the same columns in a different order name a different index.
// The content hash keeps the name identical across processes, which a runtime
// hash does not guarantee.
func DeriveIndexName(table string, columns []string, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if len(columns) == 1 {
		return columns[0] + "_idx"
	}
	sig := strings.Join(columns, indexSignatureDelim)
	sum := blake3.Sum256([]byte(sig))
	return "ix_" + table + "_" + hex.EncodeToString(sum[:])[:16]
}
