package sql

import (
	"fmt"
	"strings"
)

// parseShow parses:
//
//	SHOW TABLES
//	SHOW COLUMNS FROM t
//	SHOW INDEX FROM t
func parseShow(query string) (Statement, error) {
	parts := strings.Fields(query)
	if len(parts) < 2 {
		return nil, fmt.Errorf("SHOW: incomplete statement")
	}

	switch strings.ToUpper(parts[1]) {
	case "TABLES":
		if len(parts) != 2 {
			return nil, fmt.Errorf("SHOW TABLES: unexpected trailing tokens")
		}
		return &ShowTablesStmt{}, nil
	case "COLUMNS":
		if len(parts) != 4 || !strings.EqualFold(parts[2], "FROM") {
			return nil, fmt.Errorf("SHOW COLUMNS: expected SHOW COLUMNS FROM <table>")
		}
		return &ShowColumnsStmt{TableName: parts[3]}, nil
	case "INDEX":
		if len(parts) != 4 || !strings.EqualFold(parts[2], "FROM") {
			return nil, fmt.Errorf("SHOW INDEX: expected SHOW INDEX FROM <table>")
		}
		return &ShowIndexStmt{TableName: parts[3]}, nil
	default:
		return nil, fmt.Errorf("SHOW: unrecognized SHOW type %q", parts[1])
	}
}
