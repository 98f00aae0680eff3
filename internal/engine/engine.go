// Package engine executes parsed SQL statements against the catalog and
// the relation/index stores.
package engine

import (
	"errors"
	"fmt"

	"minirel/internal/catalog"
	"minirel/internal/relation"
	"minirel/internal/sql"
	"minirel/internal/storage"
)

// Engine is the statement executor. It owns the catalog, which is
// bootstrapped lazily on the first Execute call. Statements must be
// executed one at a time; the engine holds process-wide mutable state
// without locking.
type Engine struct {
	store   storage.Store
	tables  *catalog.Tables
	indices *catalog.Indices
}

// New creates an engine on top of a relation store. The catalog is not
// touched until the first Execute.
func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// Execute runs one parsed statement and returns its result. The caller
// owns the result. Storage failures come back wrapped with a
// "DbRelationError: " prefix; statement kinds the engine does not
// handle come back as a message-only result, not an error.
func (e *Engine) Execute(stmt sql.Statement) (Result, error) {
	if e.tables == nil {
		tables, indices, err := catalog.New(e.store)
		if err != nil {
			return nil, wrapRelationError(err)
		}
		e.tables = tables
		e.indices = indices
	}

	var res Result
	var err error
	switch s := stmt.(type) {
	case *sql.CreateTableStmt:
		res, err = e.createTable(s)
	case *sql.CreateIndexStmt:
		res, err = e.createIndex(s)
	case *sql.DropTableStmt:
		res, err = e.dropTable(s)
	case *sql.DropIndexStmt:
		res, err = e.dropIndex(s)
	case *sql.InsertStmt:
		res, err = e.insert(s)
	case *sql.DeleteStmt:
		res, err = e.del(s)
	case *sql.SelectStmt:
		res, err = e.selectRows(s)
	case *sql.ShowTablesStmt:
		res, err = e.showTables()
	case *sql.ShowColumnsStmt:
		res, err = e.showColumns(s)
	case *sql.ShowIndexStmt:
		res, err = e.showIndex(s)
	default:
		return &MessageResult{Msg: "not implemented"}, nil
	}

	if err != nil {
		return nil, wrapRelationError(err)
	}
	return res, nil
}

// wrapRelationError prefixes storage errors so callers can tell them
// apart from the engine's own errors. Everything else passes through.
func wrapRelationError(err error) error {
	var relErr *relation.Error
	if errors.As(err, &relErr) {
		return fmt.Errorf("DbRelationError: %s", err)
	}
	return err
}

// attributeOf finds the declared type of a column in a schema.
func attributeOf(columns []string, attrs []relation.DataType, name string) (relation.DataType, bool) {
	for i, col := range columns {
		if col == name {
			return attrs[i], true
		}
	}
	return 0, false
}
