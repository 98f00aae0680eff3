package engine

import (
	"fmt"

	"minirel/internal/catalog"
	"minirel/internal/relation"
	"minirel/internal/sql"
)

// showTables lists the user tables in _tables. The meta-relations are
// filtered out of the rows, and the reported count assumes exactly the
// three of them were removed.
func (e *Engine) showTables() (Result, error) {
	columnNames := []string{"table_name"}

	handles, err := e.tables.Select(nil)
	if err != nil {
		return nil, err
	}
	n := len(handles) - 3

	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := e.tables.Project(h, columnNames)
		if err != nil {
			return nil, err
		}
		if !catalog.IsSchemaTable(row["table_name"].S) {
			rows = append(rows, row)
		}
	}

	return &RowsResult{
		ColumnNames:      columnNames,
		ColumnAttributes: []relation.DataType{relation.Text},
		Rows:             rows,
		Msg:              fmt.Sprintf("successfully returned %d rows", n),
	}, nil
}

// showColumns lists a table's _columns rows.
func (e *Engine) showColumns(s *sql.ShowColumnsStmt) (Result, error) {
	columnsRel, err := e.tables.GetTable(catalog.ColumnsName)
	if err != nil {
		return nil, err
	}

	columnNames := []string{"table_name", "column_name", "data_type"}

	where := relation.Row{"table_name": relation.TextValue(s.TableName)}
	handles, err := columnsRel.Select(where)
	if err != nil {
		return nil, err
	}

	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := columnsRel.Project(h, columnNames)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &RowsResult{
		ColumnNames:      columnNames,
		ColumnAttributes: []relation.DataType{relation.Text, relation.Text, relation.Text},
		Rows:             rows,
		Msg:              fmt.Sprintf("successfully returned %d rows", len(handles)),
	}, nil
}

// showIndex lists a table's _indices rows.
func (e *Engine) showIndex(s *sql.ShowIndexStmt) (Result, error) {
	columnNames := []string{"table_name", "index_name", "column_name", "seq_in_index", "index_type", "is_unique"}
	columnAttrs := []relation.DataType{
		relation.Text, relation.Text, relation.Text,
		relation.Int, relation.Text, relation.Boolean,
	}

	where := relation.Row{"table_name": relation.TextValue(s.TableName)}
	handles, err := e.indices.Select(where)
	if err != nil {
		return nil, err
	}

	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := e.indices.Project(h, columnNames)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &RowsResult{
		ColumnNames:      columnNames,
		ColumnAttributes: columnAttrs,
		Rows:             rows,
		Msg:              fmt.Sprintf("successfully returned %d rows", len(handles)),
	}, nil
}
