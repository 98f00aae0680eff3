package engine

import (
	"fmt"

	"minirel/internal/relation"
	"minirel/internal/sql"
)

// insert builds a row from the statement's column/value lists, stores
// it, and adds its handle to every index on the table. The column list
// may name columns in any order; columns it omits are left to the
// storage layer's defaulting policy.
func (e *Engine) insert(s *sql.InsertStmt) (Result, error) {
	rel, err := e.tables.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	columnNames := rel.ColumnNames()
	columnAttrs := rel.ColumnAttributes()

	row := make(relation.Row, len(s.Columns))
	for i, col := range s.Columns {
		attr, ok := attributeOf(columnNames, columnAttrs, col)
		if !ok {
			return nil, fmt.Errorf("unknown column %s", col)
		}
		v := s.Values[i]
		switch attr {
		case relation.Int:
			if v.Type != sql.LiteralInt {
				return nil, fmt.Errorf("don't know how to handle data type in INSERT")
			}
			row[col] = relation.IntValue(int32(v.I64))
		case relation.Text:
			if v.Type != sql.LiteralString {
				return nil, fmt.Errorf("don't know how to handle data type in INSERT")
			}
			row[col] = relation.TextValue(v.S)
		default:
			return nil, fmt.Errorf("don't know how to handle data type in INSERT")
		}
	}

	handle, err := rel.Insert(row)
	if err != nil {
		return nil, err
	}

	// Add the new handle to every index on the table.
	indexNames, err := e.indices.GetIndexNames(s.TableName)
	if err != nil {
		return nil, err
	}
	for _, indexName := range indexNames {
		idx, err := e.indices.GetIndex(s.TableName, indexName)
		if err != nil {
			return nil, err
		}
		if err := idx.Insert(handle); err != nil {
			return nil, err
		}
	}

	msg := "successfully inserted 1 row into " + s.TableName
	if len(indexNames) > 0 {
		msg += fmt.Sprintf(" and from %d indices", len(indexNames))
	}
	return &MessageResult{Msg: msg}, nil
}
