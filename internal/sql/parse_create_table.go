package sql

import (
	"fmt"
	"strings"
)

// parseCreateTable parses:
//
//	CREATE TABLE [IF NOT EXISTS] name (col TYPE, ...)
func parseCreateTable(query string) (Statement, error) {
	// At this point:
	// - query has been trimmed
	// - trailing ';' removed
	// - we already know it's some form of CREATE TABLE

	// Find the opening parenthesis for column list.
	openIdx := strings.Index(query, "(")
	if openIdx == -1 {
		return nil, fmt.Errorf("CREATE TABLE: missing '('")
	}

	// Find the closing parenthesis.
	closeIdx := strings.LastIndex(query, ")")
	if closeIdx == -1 || closeIdx <= openIdx {
		return nil, fmt.Errorf("CREATE TABLE: missing or misplaced ')'")
	}

	// "head" contains: CREATE TABLE [IF NOT EXISTS] name
	head := strings.TrimSpace(query[:openIdx])
	colsPart := strings.TrimSpace(query[openIdx+1 : closeIdx])
	if colsPart == "" {
		return nil, fmt.Errorf("CREATE TABLE: no column definitions")
	}

	headTokens := strings.Fields(head)
	if len(headTokens) < 3 {
		return nil, fmt.Errorf("CREATE TABLE: missing table name")
	}
	if !strings.EqualFold(headTokens[0], "CREATE") || !strings.EqualFold(headTokens[1], "TABLE") {
		return nil, fmt.Errorf("CREATE TABLE: invalid syntax")
	}

	ifNotExists := false
	rest := headTokens[2:]
	if len(rest) >= 3 &&
		strings.EqualFold(rest[0], "IF") &&
		strings.EqualFold(rest[1], "NOT") &&
		strings.EqualFold(rest[2], "EXISTS") {
		ifNotExists = true
		rest = rest[3:]
	}
	if len(rest) != 1 {
		return nil, fmt.Errorf("CREATE TABLE: missing table name")
	}
	tableName := rest[0]

	colDefs := splitCommaSeparated(colsPart)
	if len(colDefs) == 0 {
		return nil, fmt.Errorf("CREATE TABLE: no valid columns")
	}

	columns := make([]ColumnDef, 0, len(colDefs))
	for _, def := range colDefs {
		parts := strings.Fields(def)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid column definition: %q", def)
		}
		// The type token is not validated here; the executor owns the
		// "unrecognized data type" error.
		columns = append(columns, ColumnDef{
			Name: parts[0],
			Type: strings.ToUpper(parts[1]),
		})
	}

	return &CreateTableStmt{
		TableName:   tableName,
		Columns:     columns,
		IfNotExists: ifNotExists,
	}, nil
}
