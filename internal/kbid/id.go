// Package kbid provides a type-safe knowledge-base identifier. The backend
// treats the identifier as opaque; this package consolidates the
// normalization applied on every ingestion path (trim + Unicode NFC) and
// gives compile-time safety over raw string usage.
//
// This is a leaf package imported by tenant/, api/, cache/, and snow/.
package kbid

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID is a normalized knowledge-base identifier. The zero value (ID{})
// represents an absent or unknown knowledge base.
type ID struct {
	value string
}

// New creates a normalized ID from a raw identifier string. Surrounding
// whitespace is trimmed and the value is NFC-normalized so that two
// renditions of the same identifier compare equal. Empty input returns the
// zero ID, which is the single representation for "absent/unknown".
func New(raw string) ID {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ID{}
	}

	return ID{value: norm.NFC.String(trimmed)}
}

// String returns the normalized identifier string.
func (id ID) String() string {
	return id.value
}

// IsZero reports whether this is the zero-value ID.
func (id ID) IsZero() bool {
	return id.value == ""
}

// Equal reports whether two IDs are identical.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The input is
// normalized just like New().
func (id *ID) UnmarshalText(text []byte) error {
	*id = New(string(text))
	return nil
}

// Value implements driver.Valuer for SQL storage.
func (id ID) Value() (driver.Value, error) {
	return id.value, nil
}

// Scan implements sql.Scanner. Accepts string, []byte, and NULL (which
// scans to the zero ID).
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ID{}
		return nil
	case string:
		*id = New(v)
		return nil
	case []byte:
		*id = New(string(v))
		return nil
	default:
		return fmt.Errorf("kbid: cannot scan %T into ID", src)
	}
}

// Compile-time interface checks.
var (
	_ driver.Valuer = ID{}
	_ sql.Scanner   = (*ID)(nil)
)
