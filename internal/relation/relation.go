package relation

import "fmt"

// Handle identifies a row in a relation. It is issued by the storage
// layer and stays stable for the lifetime of the row: PageID is the heap
// page number, SlotID is the row slot within that page.
type Handle struct {
	PageID uint32
	SlotID uint16
}

// Relation is a named table with an ordered schema. Implementations must
// keep handles stable across unrelated inserts and deletes.
type Relation interface {
	// Create makes the physical object. It fails if one already exists.
	Create() error

	// CreateIfNotExists makes the physical object unless it already exists.
	CreateIfNotExists() error

	// Drop destroys the physical object and its rows.
	Drop() error

	// Insert stores a row and returns its handle. Columns omitted from
	// the row default to the zero value of their declared type.
	Insert(row Row) (Handle, error)

	// Delete removes the row behind the handle.
	Delete(h Handle) error

	// Select returns the handles of all rows matching the equality
	// predicate, in scan order. A nil predicate matches every row.
	Select(where Row) ([]Handle, error)

	// Project materializes the named columns of the row behind the handle.
	Project(h Handle, columns []string) (Row, error)

	// ColumnNames returns the schema's column names in declaration order.
	ColumnNames() []string

	// ColumnAttributes returns the declared types, parallel to ColumnNames.
	ColumnAttributes() []DataType
}

// IndexKind selects the secondary-index structure.
type IndexKind int

const (
	Btree IndexKind = iota
	Hash
)

func (k IndexKind) String() string {
	if k == Hash {
		return "HASH"
	}
	return "BTREE"
}

// Unique reports whether the kind enforces key uniqueness. BTREE indices
// are unique, HASH indices are not.
func (k IndexKind) Unique() bool {
	return k == Btree
}

// ParseIndexKind maps an index_type string back to an IndexKind.
func ParseIndexKind(s string) (IndexKind, error) {
	switch s {
	case "BTREE":
		return Btree, nil
	case "HASH":
		return Hash, nil
	default:
		return 0, fmt.Errorf("unrecognized index type %q", s)
	}
}

// Index is a named secondary structure over a subset of a relation's
// columns. It stores row handles keyed by the indexed column values.
type Index interface {
	// Create makes the physical structure and bulk-loads every existing
	// row of the base relation.
	Create() error

	// Drop destroys the structure.
	Drop() error

	// Insert adds the row behind the handle to the index.
	Insert(h Handle) error

	// Delete removes the row behind the handle from the index.
	Delete(h Handle) error

	// Lookup returns the handles of all rows whose indexed columns equal
	// the corresponding values in key.
	Lookup(key Row) ([]Handle, error)
}
