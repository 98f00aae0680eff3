package sql

import (
	"fmt"
	"strings"
)

// parseInsert parses an INSERT INTO ... VALUES (...) statement.
// Example supported syntax:
//
//	INSERT INTO users (id, name) VALUES (1, 'Alice');
//
// The column list is required; the executor maps listed columns onto the
// values positionally, so they may appear in any order relative to the
// table definition.
func parseInsert(query string) (Statement, error) {
	// At this point:
	// - query is trimmed
	// - trailing ';' removed

	upper := strings.ToUpper(query)

	idxInto := strings.Index(upper, "INTO")
	if idxInto == -1 {
		return nil, fmt.Errorf("INSERT: missing INTO")
	}

	afterInto := strings.TrimSpace(query[idxInto+len("INTO"):])

	upperAfterInto := strings.ToUpper(afterInto)
	idxValues := strings.Index(upperAfterInto, "VALUES")
	if idxValues == -1 {
		return nil, fmt.Errorf("INSERT: missing VALUES")
	}

	headPart := strings.TrimSpace(afterInto[:idxValues])
	if headPart == "" {
		return nil, fmt.Errorf("INSERT: missing table name")
	}

	// headPart is "t (a, b)" — split table name from column list.
	openIdx := strings.Index(headPart, "(")
	if openIdx == -1 {
		return nil, fmt.Errorf("INSERT: missing column list")
	}
	closeIdx := strings.LastIndex(headPart, ")")
	if closeIdx == -1 || closeIdx <= openIdx {
		return nil, fmt.Errorf("INSERT: missing ')' after column list")
	}

	tableName := strings.TrimSpace(headPart[:openIdx])
	if tableName == "" {
		return nil, fmt.Errorf("INSERT: missing table name")
	}
	columns := splitCommaSeparated(headPart[openIdx+1 : closeIdx])
	if len(columns) == 0 {
		return nil, fmt.Errorf("INSERT: empty column list")
	}

	rest := strings.TrimSpace(afterInto[idxValues+len("VALUES"):])
	if !strings.HasPrefix(rest, "(") {
		return nil, fmt.Errorf("INSERT: expected '(' after VALUES")
	}
	valClose := strings.LastIndex(rest, ")")
	if valClose == -1 {
		return nil, fmt.Errorf("INSERT: missing closing ')'")
	}

	valuesPart := strings.TrimSpace(rest[1:valClose])
	if valuesPart == "" {
		return nil, fmt.Errorf("INSERT: empty VALUES list")
	}

	rawVals := splitCommaSeparated(valuesPart)
	vals := make([]Value, 0, len(rawVals))
	for _, rv := range rawVals {
		v, err := parseLiteral(rv)
		if err != nil {
			return nil, fmt.Errorf("invalid literal %q: %w", rv, err)
		}
		vals = append(vals, v)
	}

	if len(vals) != len(columns) {
		return nil, fmt.Errorf("INSERT: %d columns but %d values", len(columns), len(vals))
	}

	return &InsertStmt{
		TableName: tableName,
		Columns:   columns,
		Values:    vals,
	}, nil
}
