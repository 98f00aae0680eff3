package catalog

import (
	"fmt"
	"sort"

	"minirel/internal/relation"
	"minirel/internal/storage"
)

// Indices behaves as a Relation over _indices and keeps a cache of open
// index objects keyed by (table, index).
type Indices struct {
	rel    relation.Relation // the _indices relation
	tables *Tables
	store  storage.Store
	cache  map[string]relation.Index
}

func cacheKey(table, index string) string {
	return table + "." + index
}

func (ix *Indices) Create() error            { return ix.rel.Create() }
func (ix *Indices) CreateIfNotExists() error { return ix.rel.CreateIfNotExists() }
func (ix *Indices) Drop() error              { return ix.rel.Drop() }

func (ix *Indices) ColumnNames() []string                 { return ix.rel.ColumnNames() }
func (ix *Indices) ColumnAttributes() []relation.DataType { return ix.rel.ColumnAttributes() }

func (ix *Indices) Insert(row relation.Row) (relation.Handle, error) {
	return ix.rel.Insert(row)
}

// Delete removes an _indices row and evicts the open index it belongs
// to, so dropped names can be reused cleanly.
func (ix *Indices) Delete(h relation.Handle) error {
	if row, err := ix.rel.Project(h, []string{"table_name", "index_name"}); err == nil {
		delete(ix.cache, cacheKey(row["table_name"].S, row["index_name"].S))
	}
	return ix.rel.Delete(h)
}

func (ix *Indices) Select(where relation.Row) ([]relation.Handle, error) {
	return ix.rel.Select(where)
}

func (ix *Indices) Project(h relation.Handle, columns []string) (relation.Row, error) {
	return ix.rel.Project(h, columns)
}

// GetIndexNames returns the distinct index names on table, in the scan
// order of _indices. Callers must not depend on the order.
func (ix *Indices) GetIndexNames(table string) ([]string, error) {
	where := relation.Row{"table_name": relation.TextValue(table)}
	handles, err := ix.rel.Select(where)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, h := range handles {
		row, err := ix.rel.Project(h, []string{"index_name"})
		if err != nil {
			return nil, err
		}
		name := row["index_name"].S
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// GetIndex returns an open index object for (table, index),
// materializing it from its _indices rows on first use: key columns in
// ascending seq_in_index, kind from index_type.
func (ix *Indices) GetIndex(table, index string) (relation.Index, error) {
	key := cacheKey(table, index)
	if idx, ok := ix.cache[key]; ok {
		return idx, nil
	}

	where := relation.Row{
		"table_name": relation.TextValue(table),
		"index_name": relation.TextValue(index),
	}
	handles, err := ix.rel.Select(where)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("unknown index %s on %s", index, table)
	}

	type indexColumn struct {
		seq  int32
		name string
	}
	columns := make([]indexColumn, 0, len(handles))
	var kindName string
	for _, h := range handles {
		row, err := ix.rel.Project(h, []string{"seq_in_index", "column_name", "index_type"})
		if err != nil {
			return nil, err
		}
		columns = append(columns, indexColumn{
			seq:  row["seq_in_index"].N,
			name: row["column_name"].S,
		})
		kindName = row["index_type"].S
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].seq < columns[j].seq })

	keyColumns := make([]string, len(columns))
	for i, c := range columns {
		keyColumns[i] = c.name
	}

	kind, err := relation.ParseIndexKind(kindName)
	if err != nil {
		return nil, err
	}

	rel, err := ix.tables.GetTable(table)
	if err != nil {
		return nil, err
	}

	idx := ix.store.Index(rel, table, index, keyColumns, kind)
	ix.cache[key] = idx
	return idx, nil
}
