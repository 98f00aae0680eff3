package engine

import (
	"fmt"

	"minirel/internal/plan"
	"minirel/internal/sql"
)

// del pipelines an evaluation plan for the matching handles, then
// removes each handle from every index on the table before removing it
// from the table itself.
func (e *Engine) del(s *sql.DeleteStmt) (Result, error) {
	rel, err := e.tables.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	var p plan.Plan = &plan.TableScan{Table: rel}
	if s.Where != nil {
		where, err := plan.WhereConjunction(s.Where)
		if err != nil {
			return nil, err
		}
		p = &plan.Select{Where: where, Child: p}
	}

	_, handles, err := p.Optimize().Pipeline()
	if err != nil {
		return nil, err
	}

	indexNames, err := e.indices.GetIndexNames(s.TableName)
	if err != nil {
		return nil, err
	}

	rows := 0
	indices := 0
	for _, h := range handles {
		for _, indexName := range indexNames {
			idx, err := e.indices.GetIndex(s.TableName, indexName)
			if err != nil {
				return nil, err
			}
			if err := idx.Delete(h); err != nil {
				return nil, err
			}
			indices++
		}
		if err := rel.Delete(h); err != nil {
			return nil, err
		}
		rows++
	}

	msg := fmt.Sprintf("successfully deleted %d rows from %s %d indices", rows, s.TableName, indices)
	return &MessageResult{Msg: msg}, nil
}
