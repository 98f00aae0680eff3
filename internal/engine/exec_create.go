package engine

import (
	"fmt"

	"minirel/internal/catalog"
	"minirel/internal/relation"
	"minirel/internal/sql"
)

// createTable adds the table to _tables and _columns, then creates the
// physical relation. The catalog inserts are rolled back in reverse
// order if any later step fails; rollback failures are swallowed so the
// original error wins.
func (e *Engine) createTable(s *sql.CreateTableStmt) (Result, error) {
	tableName := s.TableName

	columnNames := make([]string, 0, len(s.Columns))
	columnAttrs := make([]relation.DataType, 0, len(s.Columns))
	for _, def := range s.Columns {
		switch def.Type {
		case "INT":
			columnAttrs = append(columnAttrs, relation.Int)
		case "TEXT":
			columnAttrs = append(columnAttrs, relation.Text)
		default:
			return nil, fmt.Errorf("unrecognized data type")
		}
		columnNames = append(columnNames, def.Name)
	}

	if s.IfNotExists {
		existing, err := e.tables.Select(relation.Row{"table_name": relation.TextValue(tableName)})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return &MessageResult{Msg: "created " + tableName}, nil
		}
	}

	// Add to schema: _tables first, then one _columns row per column.
	tHandle, err := e.tables.Insert(relation.Row{"table_name": relation.TextValue(tableName)})
	if err != nil {
		return nil, err
	}

	columnsRel, err := e.tables.GetTable(catalog.ColumnsName)
	if err != nil {
		return nil, err
	}

	var cHandles []relation.Handle
	build := func() error {
		for i, col := range columnNames {
			row := relation.Row{
				"table_name":  relation.TextValue(tableName),
				"column_name": relation.TextValue(col),
				"data_type":   relation.TextValue(columnAttrs[i].String()),
			}
			h, err := columnsRel.Insert(row)
			if err != nil {
				return err
			}
			cHandles = append(cHandles, h)
		}

		// Finally, actually create the relation.
		rel, err := e.tables.GetTable(tableName)
		if err != nil {
			return err
		}
		if s.IfNotExists {
			return rel.CreateIfNotExists()
		}
		return rel.Create()
	}

	if err := build(); err != nil {
		for i := len(cHandles) - 1; i >= 0; i-- {
			_ = columnsRel.Delete(cHandles[i])
		}
		_ = e.tables.Delete(tHandle)
		return nil, err
	}

	return &MessageResult{Msg: "created " + tableName}, nil
}

// createIndex records one _indices row per key column, then creates the
// physical index. On failure the inserted rows are removed best-effort
// and the original error is rethrown.
func (e *Engine) createIndex(s *sql.CreateIndexStmt) (Result, error) {
	rel, err := e.tables.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	tableColumns := rel.ColumnNames()
	for _, col := range s.Columns {
		found := false
		for _, have := range tableColumns {
			if have == col {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("Column '%s' does not exist in %s", col, s.TableName)
		}
	}

	kind, err := relation.ParseIndexKind(s.IndexType)
	if err != nil {
		return nil, err
	}

	var iHandles []relation.Handle
	build := func() error {
		for seq, col := range s.Columns {
			row := relation.Row{
				"table_name":   relation.TextValue(s.TableName),
				"index_name":   relation.TextValue(s.IndexName),
				"seq_in_index": relation.IntValue(int32(seq + 1)),
				"column_name":  relation.TextValue(col),
				"index_type":   relation.TextValue(kind.String()),
				"is_unique":    relation.BoolValue(kind.Unique()),
			}
			h, err := e.indices.Insert(row)
			if err != nil {
				return err
			}
			iHandles = append(iHandles, h)
		}

		idx, err := e.indices.GetIndex(s.TableName, s.IndexName)
		if err != nil {
			return err
		}
		return idx.Create()
	}

	if err := build(); err != nil {
		for _, h := range iHandles {
			_ = e.indices.Delete(h)
		}
		return nil, err
	}

	return &MessageResult{Msg: "created index " + s.IndexName}, nil
}
