package engine

import (
	"fmt"

	"minirel/internal/catalog"
	"minirel/internal/relation"
	"minirel/internal/sql"
)

// dropTable removes the table's indices and their _indices rows, then
// its _columns rows, then the physical relation, and finally its _tables
// row. The meta-relations themselves are off limits.
func (e *Engine) dropTable(s *sql.DropTableStmt) (Result, error) {
	tableName := s.TableName
	if catalog.IsSchemaTable(tableName) {
		return nil, fmt.Errorf("cannot drop a schema table")
	}

	where := relation.Row{"table_name": relation.TextValue(tableName)}

	rel, err := e.tables.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	// Drop any indices before the heap goes away.
	indexNames, err := e.indices.GetIndexNames(tableName)
	if err != nil {
		return nil, err
	}
	for _, indexName := range indexNames {
		idx, err := e.indices.GetIndex(tableName, indexName)
		if err != nil {
			return nil, err
		}
		if err := idx.Drop(); err != nil {
			return nil, err
		}
	}
	handles, err := e.indices.Select(where)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if err := e.indices.Delete(h); err != nil {
			return nil, err
		}
	}

	// Remove from the _columns schema.
	columnsRel, err := e.tables.GetTable(catalog.ColumnsName)
	if err != nil {
		return nil, err
	}
	handles, err = columnsRel.Select(where)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if err := columnsRel.Delete(h); err != nil {
			return nil, err
		}
	}

	// Remove the physical relation.
	if err := rel.Drop(); err != nil {
		return nil, err
	}

	// Finally, remove from the _tables schema; expect a single row.
	handles, err = e.tables.Select(where)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if err := e.tables.Delete(h); err != nil {
			return nil, err
		}
	}

	return &MessageResult{Msg: "dropped " + tableName}, nil
}

// dropIndex drops the physical index and removes its _indices rows.
func (e *Engine) dropIndex(s *sql.DropIndexStmt) (Result, error) {
	idx, err := e.indices.GetIndex(s.TableName, s.IndexName)
	if err != nil {
		return nil, err
	}
	if err := idx.Drop(); err != nil {
		return nil, err
	}

	where := relation.Row{
		"table_name": relation.TextValue(s.TableName),
		"index_name": relation.TextValue(s.IndexName),
	}
	handles, err := e.indices.Select(where)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if err := e.indices.Delete(h); err != nil {
			return nil, err
		}
	}

	return &MessageResult{Msg: "dropped index " + s.IndexName}, nil
}
