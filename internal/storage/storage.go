package storage

import "minirel/internal/relation"

// Store hands out relation and index objects by name. Construction is
// cheap and does not touch the physical object; Create/Drop semantics
// live on the returned objects. That split is what lets the catalog
// instantiate relations on demand from schema rows, and lets CREATE
// TABLE insert catalog rows before the physical object exists.
//
// Different implementations are possible:
//   - in-memory (memstore, for tests and throwaway sessions)
//   - on-disk slotted-page heap files (heapstore)
type Store interface {
	// Table returns a relation object for name with the given schema.
	// Two calls with the same name address the same underlying data.
	Table(name string, columns []string, attributes []relation.DataType) relation.Relation

	// Index returns a secondary index named indexName over keyColumns of
	// table. The relation is consulted to extract key values from row
	// handles.
	Index(table relation.Relation, tableName, indexName string, keyColumns []string, kind relation.IndexKind) relation.Index
}
