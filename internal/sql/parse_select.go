package sql

import (
	"fmt"
	"strings"
)

// parseSelect parses a single-table SELECT (case-insensitive, flexible
// spaces):
//
//	SELECT * FROM users;
//	SELECT id, name FROM users;
//	SELECT * FROM users WHERE id = 1 AND name = 'Alice';
func parseSelect(query string) (Statement, error) {
	// query is trimmed and has no trailing semicolon here.

	upper := strings.ToUpper(query)

	idxFrom := strings.Index(upper, "FROM")
	if idxFrom == -1 {
		return nil, fmt.Errorf("SELECT: FROM not found")
	}

	selectList := strings.TrimSpace(query[len("SELECT"):idxFrom])
	if selectList == "" {
		return nil, fmt.Errorf("SELECT: empty select list")
	}

	afterFrom := strings.TrimSpace(query[idxFrom+len("FROM"):])
	if afterFrom == "" {
		return nil, fmt.Errorf("SELECT: missing table name")
	}

	// Check if there's a WHERE clause in the part after FROM.
	upperAfter := strings.ToUpper(afterFrom)
	idxWhere := strings.Index(upperAfter, "WHERE")

	var tableName string
	var wherePart string

	if idxWhere == -1 {
		toks := strings.Fields(afterFrom)
		if len(toks) != 1 {
			return nil, fmt.Errorf("SELECT: expected a single table name")
		}
		tableName = toks[0]
	} else {
		toks := strings.Fields(strings.TrimSpace(afterFrom[:idxWhere]))
		if len(toks) != 1 {
			return nil, fmt.Errorf("SELECT: expected a single table name before WHERE")
		}
		tableName = toks[0]

		wherePart = strings.TrimSpace(afterFrom[idxWhere+len("WHERE"):])
		if wherePart == "" {
			return nil, fmt.Errorf("SELECT: empty WHERE clause")
		}
	}

	stmt := &SelectStmt{TableName: tableName}

	if selectList == "*" {
		stmt.Star = true
	} else {
		stmt.Columns = splitCommaSeparated(selectList)
		if len(stmt.Columns) == 0 {
			return nil, fmt.Errorf("SELECT: empty select list")
		}
	}

	if wherePart != "" {
		w, err := parseWhereClause(wherePart)
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}

	return stmt, nil
}
