package catalog

import (
	"fmt"

	"minirel/internal/relation"
	"minirel/internal/storage"
)

// Tables behaves as a Relation over _tables and keeps an in-memory
// cache of open user relations keyed by name. The catalog rows are
// authoritative for a table's existence; the cache is authoritative for
// the open object.
type Tables struct {
	rel     relation.Relation // the _tables relation
	columns relation.Relation // the _columns relation
	indices *Indices
	store   storage.Store
	cache   map[string]relation.Relation
}

func (t *Tables) Create() error            { return t.rel.Create() }
func (t *Tables) CreateIfNotExists() error { return t.rel.CreateIfNotExists() }
func (t *Tables) Drop() error              { return t.rel.Drop() }

func (t *Tables) ColumnNames() []string                 { return t.rel.ColumnNames() }
func (t *Tables) ColumnAttributes() []relation.DataType { return t.rel.ColumnAttributes() }

func (t *Tables) Insert(row relation.Row) (relation.Handle, error) {
	return t.rel.Insert(row)
}

// Delete removes a _tables row and evicts the named relation from the
// open-object cache, so a later table of the same name is re-opened
// from its own catalog rows.
func (t *Tables) Delete(h relation.Handle) error {
	if row, err := t.rel.Project(h, []string{"table_name"}); err == nil {
		delete(t.cache, row["table_name"].S)
	}
	return t.rel.Delete(h)
}

func (t *Tables) Select(where relation.Row) ([]relation.Handle, error) {
	return t.rel.Select(where)
}

func (t *Tables) Project(h relation.Handle, columns []string) (relation.Row, error) {
	return t.rel.Project(h, columns)
}

// GetTable returns an open relation for name. The meta-relations map to
// the catalog objects themselves; anything else is instantiated from
// its _columns rows on first use and cached.
func (t *Tables) GetTable(name string) (relation.Relation, error) {
	switch name {
	case TablesName:
		return t, nil
	case ColumnsName:
		return t.columns, nil
	case IndicesName:
		return t.indices, nil
	}

	if rel, ok := t.cache[name]; ok {
		return rel, nil
	}

	columns, attrs, err := t.schemaOf(name)
	if err != nil {
		return nil, err
	}

	rel := t.store.Table(name, columns, attrs)
	t.cache[name] = rel
	return rel, nil
}

// schemaOf reads a table's schema from _columns. Scan order is
// insertion order, which is declaration order.
func (t *Tables) schemaOf(name string) ([]string, []relation.DataType, error) {
	where := relation.Row{"table_name": relation.TextValue(name)}
	handles, err := t.columns.Select(where)
	if err != nil {
		return nil, nil, err
	}
	if len(handles) == 0 {
		return nil, nil, fmt.Errorf("unknown table %s", name)
	}

	columns := make([]string, 0, len(handles))
	attrs := make([]relation.DataType, 0, len(handles))
	for _, h := range handles {
		row, err := t.columns.Project(h, []string{"column_name", "data_type"})
		if err != nil {
			return nil, nil, err
		}
		dt, err := relation.ParseDataType(row["data_type"].S)
		if err != nil {
			return nil, nil, err
		}
		columns = append(columns, row["column_name"].S)
		attrs = append(attrs, dt)
	}
	return columns, attrs, nil
}
