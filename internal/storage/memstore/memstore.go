package memstore

import (
	"sync"

	"minirel/internal/index/memindex"
	"minirel/internal/relation"
)

// Rows are addressed by synthetic (page, slot) handles with a fixed
// fan-out, so handles look the same as heapstore's.
const slotsPerPage = 256

type rowSlot struct {
	row  relation.Row
	live bool
}

type tableData struct {
	columns []string
	attrs   []relation.DataType
	slots   []rowSlot
}

// Store is an in-memory relation store. Deleted rows leave tombstones
// behind so the handles of surviving rows never move.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*tableData
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{tables: make(map[string]*tableData)}
}

// Table returns a relation view over name. The physical object is only
// materialized by Create on the returned relation.
func (s *Store) Table(name string, columns []string, attributes []relation.DataType) relation.Relation {
	return &Table{
		store:   s,
		name:    name,
		columns: columns,
		attrs:   attributes,
	}
}

// Index returns an in-memory secondary index over table.
func (s *Store) Index(table relation.Relation, tableName, indexName string, keyColumns []string, kind relation.IndexKind) relation.Index {
	return memindex.New(table, tableName, indexName, keyColumns, kind)
}

// Table is a handle-addressed heap over an in-memory slot array.
type Table struct {
	store   *Store
	name    string
	columns []string
	attrs   []relation.DataType
}

func (t *Table) ColumnNames() []string                 { return t.columns }
func (t *Table) ColumnAttributes() []relation.DataType { return t.attrs }

func (t *Table) Create() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, exists := t.store.tables[t.name]; exists {
		return relation.Errorf("table %s already exists", t.name)
	}
	t.store.tables[t.name] = &tableData{
		columns: append([]string(nil), t.columns...),
		attrs:   append([]relation.DataType(nil), t.attrs...),
	}
	return nil
}

func (t *Table) CreateIfNotExists() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, exists := t.store.tables[t.name]; exists {
		return nil
	}
	t.store.tables[t.name] = &tableData{
		columns: append([]string(nil), t.columns...),
		attrs:   append([]relation.DataType(nil), t.attrs...),
	}
	return nil
}

func (t *Table) Drop() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, exists := t.store.tables[t.name]; !exists {
		return relation.Errorf("table %s does not exist", t.name)
	}
	delete(t.store.tables, t.name)
	return nil
}

func (t *Table) data() (*tableData, error) {
	d, ok := t.store.tables[t.name]
	if !ok {
		return nil, relation.Errorf("table %s does not exist", t.name)
	}
	return d, nil
}

// Insert validates the row against the schema, fills omitted columns
// with the zero value of their declared type, and appends a new slot.
func (t *Table) Insert(row relation.Row) (relation.Handle, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	d, err := t.data()
	if err != nil {
		return relation.Handle{}, err
	}

	full, err := materialize(d, row, t.name)
	if err != nil {
		return relation.Handle{}, err
	}

	d.slots = append(d.slots, rowSlot{row: full, live: true})
	return slotHandle(len(d.slots) - 1), nil
}

func (t *Table) Delete(h relation.Handle) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	d, err := t.data()
	if err != nil {
		return err
	}

	i, err := slotIndex(d, h, t.name)
	if err != nil {
		return err
	}
	d.slots[i].live = false
	return nil
}

func (t *Table) Select(where relation.Row) ([]relation.Handle, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	d, err := t.data()
	if err != nil {
		return nil, err
	}

	var handles []relation.Handle
	for i, slot := range d.slots {
		if !slot.live {
			continue
		}
		if matches(slot.row, where) {
			handles = append(handles, slotHandle(i))
		}
	}
	return handles, nil
}

func (t *Table) Project(h relation.Handle, columns []string) (relation.Row, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	d, err := t.data()
	if err != nil {
		return nil, err
	}

	i, err := slotIndex(d, h, t.name)
	if err != nil {
		return nil, err
	}

	row := d.slots[i].row
	if columns == nil {
		return row.Clone(), nil
	}

	out := make(relation.Row, len(columns))
	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			return nil, relation.Errorf("table %s does not have a column named %s", t.name, col)
		}
		out[col] = v
	}
	return out, nil
}

// materialize builds the full stored row from a possibly-partial input.
func materialize(d *tableData, row relation.Row, table string) (relation.Row, error) {
	for col := range row {
		if !hasColumn(d.columns, col) {
			return nil, relation.Errorf("table %s does not have a column named %s", table, col)
		}
	}

	full := make(relation.Row, len(d.columns))
	for i, col := range d.columns {
		v, ok := row[col]
		if !ok {
			full[col] = relation.Value{Type: d.attrs[i]}
			continue
		}
		if v.Type != d.attrs[i] {
			return nil, relation.Errorf("type mismatch for column %s: expected %s, got %s",
				col, d.attrs[i], v.Type)
		}
		full[col] = v
	}
	return full, nil
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func matches(row, where relation.Row) bool {
	for col, want := range where {
		got, ok := row[col]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

func slotHandle(i int) relation.Handle {
	return relation.Handle{
		PageID: uint32(i / slotsPerPage),
		SlotID: uint16(i % slotsPerPage),
	}
}

func slotIndex(d *tableData, h relation.Handle, table string) (int, error) {
	i := int(h.PageID)*slotsPerPage + int(h.SlotID)
	if i < 0 || i >= len(d.slots) || !d.slots[i].live {
		return 0, relation.Errorf("table %s has no row at page %d slot %d", table, h.PageID, h.SlotID)
	}
	return i, nil
}
