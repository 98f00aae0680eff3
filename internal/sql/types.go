package sql

// LiteralType tags a parsed literal. The parser accepts more literal
// kinds than the engine's data model; rejecting the extras is the
// executor's job, which keeps parse errors and execution errors apart.
type LiteralType int

const (
	LiteralInt LiteralType = iota
	LiteralFloat
	LiteralString
	LiteralBool
	LiteralNull
)

// Value is a literal as it appears in the statement text. Only the field
// matching Type should be read; other fields remain at their zero values.
type Value struct {
	Type LiteralType

	I64 int64   // for LiteralInt
	F64 float64 // for LiteralFloat
	S   string  // for LiteralString
	B   bool    // for LiteralBool
}
