package engine

import (
	"strconv"
	"strings"

	"minirel/internal/relation"
)

// Result is what Execute hands back: either a bare message or a tabular
// result with column metadata.
type Result interface {
	// Message returns the human-readable status line.
	Message() string

	// String renders the result for a terminal.
	String() string
}

// MessageResult is a message-only result.
type MessageResult struct {
	Msg string
}

func (r *MessageResult) Message() string { return r.Msg }
func (r *MessageResult) String() string  { return r.Msg }

// RowsResult is a tabular result. ColumnAttributes is parallel to
// ColumnNames; rows are keyed by column name and rendered in
// ColumnNames order.
type RowsResult struct {
	ColumnNames      []string
	ColumnAttributes []relation.DataType
	Rows             []relation.Row
	Msg              string
}

func (r *RowsResult) Message() string { return r.Msg }

func (r *RowsResult) String() string {
	var b strings.Builder
	for _, name := range r.ColumnNames {
		b.WriteString(name)
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
	b.WriteByte('+')
	for range r.ColumnNames {
		b.WriteString("----------+")
	}
	b.WriteByte('\n')
	for _, row := range r.Rows {
		for _, name := range r.ColumnNames {
			b.WriteString(formatValue(row[name]))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteString(r.Msg)
	return b.String()
}

func formatValue(v relation.Value) string {
	switch v.Type {
	case relation.Int:
		return strconv.FormatInt(int64(v.N), 10)
	case relation.Text:
		return "\"" + v.S + "\""
	case relation.Boolean:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return "???"
	}
}
