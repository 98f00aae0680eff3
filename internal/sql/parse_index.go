package sql

import (
	"fmt"
	"strings"
)

// parseCreateIndex parses:
//
//	CREATE INDEX ix ON t (col, ...)
//	CREATE INDEX ix ON t USING BTREE (col, ...)
//	CREATE INDEX ix ON t USING HASH (col, ...)
func parseCreateIndex(query string) (Statement, error) {
	openIdx := strings.Index(query, "(")
	if openIdx == -1 {
		return nil, fmt.Errorf("CREATE INDEX: missing column list")
	}
	closeIdx := strings.LastIndex(query, ")")
	if closeIdx == -1 || closeIdx <= openIdx {
		return nil, fmt.Errorf("CREATE INDEX: missing or misplaced ')'")
	}

	head := strings.Fields(strings.TrimSpace(query[:openIdx]))
	colsPart := strings.TrimSpace(query[openIdx+1 : closeIdx])

	// CREATE INDEX ix ON t [USING kind]
	if len(head) < 5 ||
		!strings.EqualFold(head[0], "CREATE") ||
		!strings.EqualFold(head[1], "INDEX") ||
		!strings.EqualFold(head[3], "ON") {
		return nil, fmt.Errorf("CREATE INDEX: invalid syntax")
	}

	stmt := &CreateIndexStmt{
		IndexName: head[2],
		TableName: head[4],
		IndexType: "BTREE",
	}

	switch {
	case len(head) == 5:
		// no USING clause, BTREE by default
	case len(head) == 7 && strings.EqualFold(head[5], "USING"):
		stmt.IndexType = strings.ToUpper(head[6])
	default:
		return nil, fmt.Errorf("CREATE INDEX: invalid syntax")
	}

	cols := splitCommaSeparated(colsPart)
	if len(cols) == 0 {
		return nil, fmt.Errorf("CREATE INDEX: empty column list")
	}
	stmt.Columns = cols

	return stmt, nil
}
