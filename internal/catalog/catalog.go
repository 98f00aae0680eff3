// Package catalog implements the self-describing schema: the three
// meta-relations _tables, _columns and _indices are ordinary relations
// in the same store as user tables, and their rows define every
// relation's schema, including their own.
package catalog

import (
	"minirel/internal/relation"
	"minirel/internal/storage"
)

const (
	TablesName  = "_tables"
	ColumnsName = "_columns"
	IndicesName = "_indices"
)

var (
	tablesColumns = []string{"table_name"}
	tablesAttrs   = []relation.DataType{relation.Text}

	columnsColumns = []string{"table_name", "column_name", "data_type"}
	columnsAttrs   = []relation.DataType{relation.Text, relation.Text, relation.Text}

	indicesColumns = []string{"table_name", "index_name", "seq_in_index", "column_name", "index_type", "is_unique"}
	indicesAttrs   = []relation.DataType{relation.Text, relation.Text, relation.Int, relation.Text, relation.Text, relation.Boolean}
)

// IsSchemaTable reports whether name is one of the meta-relations.
func IsSchemaTable(name string) bool {
	return name == TablesName || name == ColumnsName || name == IndicesName
}

// New opens (or bootstraps) the catalog on top of store. On a fresh
// store the meta-relations are created and seeded with the rows that
// describe themselves.
func New(store storage.Store) (*Tables, *Indices, error) {
	tablesRel := store.Table(TablesName, tablesColumns, tablesAttrs)
	columnsRel := store.Table(ColumnsName, columnsColumns, columnsAttrs)
	indicesRel := store.Table(IndicesName, indicesColumns, indicesAttrs)

	for _, rel := range []relation.Relation{tablesRel, columnsRel, indicesRel} {
		if err := rel.CreateIfNotExists(); err != nil {
			return nil, nil, err
		}
	}

	tables := &Tables{
		rel:     tablesRel,
		columns: columnsRel,
		store:   store,
		cache:   make(map[string]relation.Relation),
	}
	indices := &Indices{
		rel:    indicesRel,
		tables: tables,
		store:  store,
		cache:  make(map[string]relation.Index),
	}
	tables.indices = indices

	if err := bootstrap(tables); err != nil {
		return nil, nil, err
	}
	return tables, indices, nil
}

// bootstrap seeds the meta-relations' self-rows on a fresh store.
func bootstrap(t *Tables) error {
	handles, err := t.rel.Select(nil)
	if err != nil {
		return err
	}
	if len(handles) > 0 {
		return nil
	}

	for _, name := range []string{TablesName, ColumnsName, IndicesName} {
		if _, err := t.rel.Insert(relation.Row{"table_name": relation.TextValue(name)}); err != nil {
			return err
		}
	}

	seed := func(table string, columns []string, attrs []relation.DataType) error {
		for i, col := range columns {
			row := relation.Row{
				"table_name":  relation.TextValue(table),
				"column_name": relation.TextValue(col),
				"data_type":   relation.TextValue(attrs[i].String()),
			}
			if _, err := t.columns.Insert(row); err != nil {
				return err
			}
		}
		return nil
	}

	if err := seed(TablesName, tablesColumns, tablesAttrs); err != nil {
		return err
	}
	if err := seed(ColumnsName, columnsColumns, columnsAttrs); err != nil {
		return err
	}
	return seed(IndicesName, indicesColumns, indicesAttrs)
}
