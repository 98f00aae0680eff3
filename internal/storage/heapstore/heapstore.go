package heapstore

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"minirel/internal/index/memindex"
	"minirel/internal/relation"
)

// Store is an on-disk relation store: one slotted-page heap file per
// table under dir. Row handles are (page id, slot index) and stay
// stable for the life of the row.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on the
// first table creation.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Table returns a relation view over name. The physical file is only
// touched by Create or by the first read/write operation.
func (s *Store) Table(name string, columns []string, attributes []relation.DataType) relation.Relation {
	return &Table{
		dir:     s.dir,
		name:    name,
		path:    filepath.Join(s.dir, name+".tbl"),
		columns: columns,
		attrs:   attributes,
	}
}

// Index returns an in-memory secondary index over table. Indices are
// rebuilt from the heap on creation rather than persisted.
func (s *Store) Index(table relation.Relation, tableName, indexName string, keyColumns []string, kind relation.IndexKind) relation.Index {
	return memindex.New(table, tableName, indexName, keyColumns, kind)
}

// Table is a heap file of slotted pages:
//
//	[schema header][page 0][page 1]...
type Table struct {
	dir     string
	name    string
	path    string
	columns []string
	attrs   []relation.DataType

	file      *os.File
	headerLen int
	pages     []pageBuf
}

func (t *Table) ColumnNames() []string                 { return t.columns }
func (t *Table) ColumnAttributes() []relation.DataType { return t.attrs }

func (t *Table) Create() error {
	if t.file != nil {
		return relation.Errorf("table %s already exists", t.name)
	}
	if _, err := os.Stat(t.path); err == nil {
		return relation.Errorf("table %s already exists", t.name)
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return relation.Errorf("create table %s: %s", t.name, err)
	}

	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return relation.Errorf("create table %s: %s", t.name, err)
	}

	var hdr bytes.Buffer
	if err := writeHeader(&hdr, t.columns, t.attrs); err != nil {
		f.Close()
		os.Remove(t.path)
		return relation.Errorf("create table %s: %s", t.name, err)
	}
	if _, err := f.Write(hdr.Bytes()); err != nil {
		f.Close()
		os.Remove(t.path)
		return relation.Errorf("create table %s: %s", t.name, err)
	}

	t.file = f
	t.headerLen = hdr.Len()
	t.pages = nil
	return nil
}

func (t *Table) CreateIfNotExists() error {
	if t.file != nil {
		return nil
	}
	if _, err := os.Stat(t.path); err == nil {
		return t.open()
	}
	return t.Create()
}

func (t *Table) Drop() error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	t.file.Close()
	t.file = nil
	t.pages = nil
	if err := os.Remove(t.path); err != nil {
		return relation.Errorf("drop table %s: %s", t.name, err)
	}
	return nil
}

// open reads the header and loads every page. The schema stored in the
// file wins over the schema the view was constructed with.
func (t *Table) open() error {
	f, err := os.OpenFile(t.path, os.O_RDWR, 0o644)
	if err != nil {
		return relation.Errorf("open table %s: %s", t.name, err)
	}

	columns, attrs, headerLen, err := readHeader(f)
	if err != nil {
		f.Close()
		return relation.Errorf("open table %s: %s", t.name, err)
	}

	var pages []pageBuf
	for {
		buf := make([]byte, PageSize)
		_, err := io.ReadFull(f, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return relation.Errorf("open table %s: %s", t.name, err)
		}
		pages = append(pages, pageBuf(buf))
	}

	t.file = f
	t.columns = columns
	t.attrs = attrs
	t.headerLen = headerLen
	t.pages = pages
	return nil
}

func (t *Table) ensureOpen() error {
	if t.file != nil {
		return nil
	}
	if _, err := os.Stat(t.path); err != nil {
		return relation.Errorf("table %s does not exist", t.name)
	}
	return t.open()
}

func (t *Table) Insert(row relation.Row) (relation.Handle, error) {
	if err := t.ensureOpen(); err != nil {
		return relation.Handle{}, err
	}

	full, err := t.materialize(row)
	if err != nil {
		return relation.Handle{}, err
	}

	rowBytes, err := encodeRow(full, t.columns, t.attrs)
	if err != nil {
		return relation.Handle{}, relation.Errorf("insert into %s: %s", t.name, err)
	}
	if len(rowBytes)+4 > PageSize-pageHeaderLen {
		return relation.Handle{}, relation.Errorf("insert into %s: row too large for a page", t.name)
	}

	for i, p := range t.pages {
		if !p.hasRoom(len(rowBytes)) {
			continue
		}
		slot, err := p.insertRow(rowBytes)
		if err != nil {
			return relation.Handle{}, relation.Errorf("insert into %s: %s", t.name, err)
		}
		if err := t.flushPage(i); err != nil {
			return relation.Handle{}, err
		}
		return relation.Handle{PageID: uint32(i), SlotID: slot}, nil
	}

	p := newHeapPage(uint32(len(t.pages)))
	slot, err := p.insertRow(rowBytes)
	if err != nil {
		return relation.Handle{}, relation.Errorf("insert into %s: %s", t.name, err)
	}
	t.pages = append(t.pages, p)
	if err := t.flushPage(len(t.pages) - 1); err != nil {
		return relation.Handle{}, err
	}
	return relation.Handle{PageID: uint32(len(t.pages) - 1), SlotID: slot}, nil
}

func (t *Table) Delete(h relation.Handle) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}

	p, err := t.page(h)
	if err != nil {
		return err
	}
	if _, err := p.rowBytes(h.SlotID); err != nil {
		return relation.Errorf("table %s has no row at page %d slot %d", t.name, h.PageID, h.SlotID)
	}
	p.deleteSlot(h.SlotID)
	return t.flushPage(int(h.PageID))
}

func (t *Table) Select(where relation.Row) ([]relation.Handle, error) {
	if err := t.ensureOpen(); err != nil {
		return nil, err
	}

	var handles []relation.Handle
	for i, p := range t.pages {
		pageID := uint32(i)
		err := p.iterateRows(func(slot uint16, rowBytes []byte) error {
			row, err := decodeRow(rowBytes, t.columns, t.attrs)
			if err != nil {
				return err
			}
			if matches(row, where) {
				handles = append(handles, relation.Handle{PageID: pageID, SlotID: slot})
			}
			return nil
		})
		if err != nil {
			return nil, relation.Errorf("scan %s: %s", t.name, err)
		}
	}
	return handles, nil
}

func (t *Table) Project(h relation.Handle, columns []string) (relation.Row, error) {
	if err := t.ensureOpen(); err != nil {
		return nil, err
	}

	p, err := t.page(h)
	if err != nil {
		return nil, err
	}
	rowBytes, err := p.rowBytes(h.SlotID)
	if err != nil {
		return nil, relation.Errorf("table %s has no row at page %d slot %d", t.name, h.PageID, h.SlotID)
	}
	row, err := decodeRow(rowBytes, t.columns, t.attrs)
	if err != nil {
		return nil, relation.Errorf("read %s: %s", t.name, err)
	}

	if columns == nil {
		return row, nil
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

func (t *Table) page(h relation.Handle) (pageBuf, error) {
	if int(h.PageID) >= len(t.pages) {
		return nil, relation.Errorf("table %s has no page %d", t.name, h.PageID)
	}
	return t.pages[h.PageID], nil
}

func (t *Table) flushPage(i int) error {
	offset := int64(t.headerLen) + int64(i)*PageSize
	if _, err := t.file.WriteAt(t.pages[i], offset); err != nil {
		return relation.Errorf("write %s: %s", t.name, err)
	}
	return nil
}

// materialize builds the full stored row from a possibly-partial input,
// defaulting omitted columns to the zero value of their declared type.
func (t *Table) materialize(row relation.Row) (relation.Row, error) {
	for col := range row {
		found := false
		for _, c := range t.columns {
			if c == col {
				found = true
				break
			}
		}
		if !found {
			return nil, relation.Errorf("table %s does not have a column named %s", t.name, col)
		}
	}

	full := make(relation.Row, len(t.columns))
	for i, col := range t.columns {
		v, ok := row[col]
		if !ok {
			full[col] = relation.Value{Type: t.attrs[i]}
			continue
		}
		if v.Type != t.attrs[i] {
			return nil, relation.Errorf("type mismatch for column %s: expected %s, got %s",
				col, t.attrs[i], v.Type)
		}
		full[col] = v
	}
	return full, nil
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
