package sql

import (
	"fmt"
	"strings"
)

// Parse parses a single SQL statement string into an AST Statement.
func Parse(query string) (Statement, error) {
	// Trim leading & trailing whitespace
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}

	// Remove trailing semicolon if present
	if strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(q[:len(q)-1])
	}

	upper := strings.ToUpper(q)
	tokens := strings.Fields(upper)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("invalid SQL statement")
	}

	switch tokens[0] {
	case "CREATE":
		if len(tokens) >= 2 && tokens[1] == "TABLE" {
			return parseCreateTable(q)
		}
		if len(tokens) >= 2 && tokens[1] == "INDEX" {
			return parseCreateIndex(q)
		}
		return nil, fmt.Errorf("CREATE: expected TABLE or INDEX")
	case "DROP":
		if len(tokens) >= 2 && tokens[1] == "TABLE" {
			return parseDropTable(q)
		}
		if len(tokens) >= 2 && tokens[1] == "INDEX" {
			return parseDropIndex(q)
		}
		return nil, fmt.Errorf("DROP: expected TABLE or INDEX")
	case "INSERT":
		if len(tokens) >= 2 && tokens[1] == "INTO" {
			return parseInsert(q)
		}
		return nil, fmt.Errorf("INSERT: expected INTO")
	case "SELECT":
		return parseSelect(q)
	case "DELETE":
		return parseDelete(q)
	case "SHOW":
		return parseShow(q)
	default:
		return nil, fmt.Errorf("invalid SQL statement")
	}
}
