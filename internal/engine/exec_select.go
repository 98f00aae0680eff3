package engine

import (
	"fmt"

	"minirel/internal/plan"
	"minirel/internal/relation"
	"minirel/internal/sql"
)

// selectRows evaluates a projection over an optionally-filtered table
// scan. "*" expands to all table columns in declaration order; an
// explicit list keeps its own order. Attributes are resolved after the
// list is expanded so they always line up with the output columns.
func (e *Engine) selectRows(s *sql.SelectStmt) (Result, error) {
	rel, err := e.tables.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	var p plan.Plan = &plan.TableScan{Table: rel}
	if s.Where != nil {
		where, err := plan.WhereConjunction(s.Where)
		if err != nil {
			return nil, err
		}
		p = &plan.Select{Where: where, Child: p}
	}

	var columnNames []string
	if s.Star {
		columnNames = append(columnNames, rel.ColumnNames()...)
	} else {
		columnNames = append(columnNames, s.Columns...)
	}

	tableColumns := rel.ColumnNames()
	tableAttrs := rel.ColumnAttributes()
	columnAttrs := make([]relation.DataType, 0, len(columnNames))
	for _, col := range columnNames {
		attr, ok := attributeOf(tableColumns, tableAttrs, col)
		if !ok {
			return nil, fmt.Errorf("unknown column %s", col)
		}
		columnAttrs = append(columnAttrs, attr)
	}

	p = &plan.Project{Columns: columnNames, Child: p}
	rows, err := p.Optimize().Evaluate()
	if err != nil {
		return nil, err
	}

	return &RowsResult{
		ColumnNames:      columnNames,
		ColumnAttributes: columnAttrs,
		Rows:             rows,
		Msg:              fmt.Sprintf("successfully returned %d rows", len(rows)),
	}, nil
}
