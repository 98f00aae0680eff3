package memindex

import (
	"encoding/binary"
	"strings"

	"minirel/internal/relation"
)

// Index is an in-memory secondary index. It maps encoded key tuples to
// the handles of the rows carrying those key values. BTREE indices
// enforce key uniqueness; HASH indices permit duplicates. Neither
// exposes key order: the engine only ever probes for equality.
type Index struct {
	rel     relation.Relation
	table   string
	name    string
	columns []string
	kind    relation.IndexKind

	entries map[string][]relation.Handle
}

// New returns an index object over keyColumns of rel. The structure does
// not exist until Create is called.
func New(rel relation.Relation, table, name string, keyColumns []string, kind relation.IndexKind) *Index {
	return &Index{
		rel:     rel,
		table:   table,
		name:    name,
		columns: append([]string(nil), keyColumns...),
		kind:    kind,
	}
}

// Create builds the structure and bulk-loads every existing row of the
// base relation.
func (ix *Index) Create() error {
	if ix.entries != nil {
		return relation.Errorf("index %s on %s already exists", ix.name, ix.table)
	}
	ix.entries = make(map[string][]relation.Handle)

	handles, err := ix.rel.Select(nil)
	if err != nil {
		ix.entries = nil
		return err
	}
	for _, h := range handles {
		if err := ix.Insert(h); err != nil {
			ix.entries = nil
			return err
		}
	}
	return nil
}

// Drop discards the structure.
func (ix *Index) Drop() error {
	if ix.entries == nil {
		return relation.Errorf("index %s on %s does not exist", ix.name, ix.table)
	}
	ix.entries = nil
	return nil
}

// Insert adds the row behind h, keyed by its indexed column values.
func (ix *Index) Insert(h relation.Handle) error {
	if ix.entries == nil {
		return relation.Errorf("index %s on %s does not exist", ix.name, ix.table)
	}

	key, err := ix.keyOf(h)
	if err != nil {
		return err
	}
	if ix.kind.Unique() && len(ix.entries[key]) > 0 {
		return relation.Errorf("duplicate entry for unique index %s on %s", ix.name, ix.table)
	}
	ix.entries[key] = append(ix.entries[key], h)
	return nil
}

// Delete removes h from the index. The base row may already be gone, in
// which case the key cannot be recomputed and the entries are scanned.
func (ix *Index) Delete(h relation.Handle) error {
	if ix.entries == nil {
		return relation.Errorf("index %s on %s does not exist", ix.name, ix.table)
	}

	if key, err := ix.keyOf(h); err == nil {
		if ix.removeAt(key, h) {
			return nil
		}
	}
	for key := range ix.entries {
		if ix.removeAt(key, h) {
			return nil
		}
	}
	return nil
}

// Lookup returns the handles of rows whose indexed columns equal the
// corresponding values in key.
func (ix *Index) Lookup(key relation.Row) ([]relation.Handle, error) {
	if ix.entries == nil {
		return nil, relation.Errorf("index %s on %s does not exist", ix.name, ix.table)
	}

	enc, err := encodeKey(key, ix.columns)
	if err != nil {
		return nil, relation.Errorf("index %s on %s: %s", ix.name, ix.table, err)
	}
	return append([]relation.Handle(nil), ix.entries[enc]...), nil
}

func (ix *Index) keyOf(h relation.Handle) (string, error) {
	row, err := ix.rel.Project(h, ix.columns)
	if err != nil {
		return "", err
	}
	enc, err := encodeKey(row, ix.columns)
	if err != nil {
		return "", relation.Errorf("index %s on %s: %s", ix.name, ix.table, err)
	}
	return enc, nil
}

func (ix *Index) removeAt(key string, h relation.Handle) bool {
	handles := ix.entries[key]
	for i, have := range handles {
		if have == h {
			ix.entries[key] = append(handles[:i:i], handles[i+1:]...)
			if len(ix.entries[key]) == 0 {
				delete(ix.entries, key)
			}
			return true
		}
	}
	return false
}

// encodeKey flattens the key columns of row into a comparable string.
// Values are tagged and length-delimited so distinct tuples never
// collide.
func encodeKey(row relation.Row, columns []string) (string, error) {
	var b strings.Builder
	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			return "", relation.Errorf("key is missing column %s", col)
		}
		b.WriteByte(byte(v.Type))
		switch v.Type {
		case relation.Int:
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], uint32(v.N))
			b.Write(buf[:])
		case relation.Text:
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], uint32(len(v.S)))
			b.Write(buf[:])
			b.WriteString(v.S)
		case relation.Boolean:
			if v.B {
				b.WriteByte(1)
			} else {
				b.WriteByte(0)
			}
		default:
			return "", relation.Errorf("cannot index value of type %s", v.Type)
		}
	}
	return b.String(), nil
}
