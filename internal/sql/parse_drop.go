package sql

import (
	"fmt"
	"strings"
)

// parseDropTable parses: DROP TABLE name
func parseDropTable(query string) (Statement, error) {
	parts := strings.Fields(query)
	if len(parts) != 3 {
		return nil, fmt.Errorf("DROP TABLE: expected a single table name")
	}
	return &DropTableStmt{TableName: parts[2]}, nil
}

// parseDropIndex parses: DROP INDEX ix FROM t
func parseDropIndex(query string) (Statement, error) {
	parts := strings.Fields(query)
	if len(parts) != 5 || !strings.EqualFold(parts[3], "FROM") {
		return nil, fmt.Errorf("DROP INDEX: expected DROP INDEX <index> FROM <table>")
	}
	return &DropIndexStmt{
		IndexName: parts[2],
		TableName: parts[4],
	}, nil
}
