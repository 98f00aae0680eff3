// Package plan builds and runs evaluation plans: small trees of
// TableScan, Select and Project nodes shared by DELETE (which needs
// handles) and SELECT (which needs rows).
package plan

import (
	"fmt"

	"minirel/internal/relation"
)

// Plan is a node in an evaluation-plan tree. A plan can be run two
// ways: Pipeline yields the matching handles along with the relation
// they belong to; Evaluate materializes rows. Handle order equals the
// scan order of the underlying relation and is only stable within a
// single execution.
type Plan interface {
	// Optimize rewrites the tree; the only rewrite is pushing a Select's
	// predicate down into the TableScan it directly encloses.
	Optimize() Plan

	// Pipeline runs the plan for handles.
	Pipeline() (relation.Relation, []relation.Handle, error)

	// Evaluate runs the plan for rows. Only Project nodes evaluate.
	Evaluate() ([]relation.Row, error)
}

// TableScan produces all handles of a relation, optionally constrained
// by a pushed-down predicate.
type TableScan struct {
	Table  relation.Relation
	Pushed relation.Row // nil when unconstrained
}

// Select filters its child's handle stream by an equality conjunction.
type Select struct {
	Where relation.Row
	Child Plan
}

// Project materializes rows from its child's handles.
type Project struct {
	Columns []string
	Child   Plan
}

func (p *TableScan) Optimize() Plan { return p }

func (p *Select) Optimize() Plan {
	child := p.Child.Optimize()
	if scan, ok := child.(*TableScan); ok && scan.Pushed == nil {
		return &TableScan{Table: scan.Table, Pushed: p.Where}
	}
	return &Select{Where: p.Where, Child: child}
}

func (p *Project) Optimize() Plan {
	return &Project{Columns: p.Columns, Child: p.Child.Optimize()}
}

func (p *TableScan) Pipeline() (relation.Relation, []relation.Handle, error) {
	handles, err := p.Table.Select(p.Pushed)
	if err != nil {
		return nil, nil, err
	}
	return p.Table, handles, nil
}

func (p *Select) Pipeline() (relation.Relation, []relation.Handle, error) {
	rel, handles, err := p.Child.Pipeline()
	if err != nil {
		return nil, nil, err
	}

	columns := make([]string, 0, len(p.Where))
	for col := range p.Where {
		columns = append(columns, col)
	}

	var matched []relation.Handle
	for _, h := range handles {
		row, err := rel.Project(h, columns)
		if err != nil {
			return nil, nil, err
		}
		ok := true
		for col, want := range p.Where {
			if !row[col].Equal(want) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, h)
		}
	}
	return rel, matched, nil
}

func (p *Project) Pipeline() (relation.Relation, []relation.Handle, error) {
	return nil, nil, fmt.Errorf("cannot pipeline a projection")
}

func (p *TableScan) Evaluate() ([]relation.Row, error) {
	return nil, fmt.Errorf("cannot evaluate a table scan without a projection")
}

func (p *Select) Evaluate() ([]relation.Row, error) {
	return nil, fmt.Errorf("cannot evaluate a selection without a projection")
}

func (p *Project) Evaluate() ([]relation.Row, error) {
	rel, handles, err := p.Child.Pipeline()
	if err != nil {
		return nil, err
	}

	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := rel.Project(h, p.Columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
