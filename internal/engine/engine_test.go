package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirel/internal/catalog"
	"minirel/internal/relation"
	"minirel/internal/sql"
	"minirel/internal/storage"
	"minirel/internal/storage/memstore"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(memstore.New())
}

func exec(t *testing.T, e *Engine, query string) Result {
	t.Helper()
	stmt, err := sql.Parse(query)
	require.NoError(t, err, "parse %q", query)
	res, err := e.Execute(stmt)
	require.NoError(t, err, "execute %q", query)
	return res
}

func execErr(t *testing.T, e *Engine, query string) error {
	t.Helper()
	stmt, err := sql.Parse(query)
	require.NoError(t, err, "parse %q", query)
	_, err = e.Execute(stmt)
	require.Error(t, err, "execute %q should fail", query)
	return err
}

// catalogCounts reports the row counts of the three meta-relations.
func catalogCounts(t *testing.T, e *Engine) (tables, columns, indices int) {
	t.Helper()
	th, err := e.tables.Select(nil)
	require.NoError(t, err)
	columnsRel, err := e.tables.GetTable(catalog.ColumnsName)
	require.NoError(t, err)
	ch, err := columnsRel.Select(nil)
	require.NoError(t, err)
	ih, err := e.indices.Select(nil)
	require.NoError(t, err)
	return len(th), len(ch), len(ih)
}

func TestEndToEndScenarios(t *testing.T) {
	e := newEngine(t)

	// 1. CREATE TABLE
	res := exec(t, e, `CREATE TABLE foo (id INT, name TEXT)`)
	assert.Equal(t, "created foo", res.Message())

	// 2. SHOW TABLES
	res = exec(t, e, `SHOW TABLES`)
	rows := res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "foo", rows.Rows[0]["table_name"].S)
	assert.Equal(t, "successfully returned 1 rows", rows.Message())

	// 3. INSERT without indices
	res = exec(t, e, `INSERT INTO foo (id, name) VALUES (1, 'alice')`)
	assert.Equal(t, "successfully inserted 1 row into foo", res.Message())

	// 4. CREATE INDEX
	res = exec(t, e, `CREATE INDEX fx ON foo USING BTREE (id)`)
	assert.Equal(t, "created index fx", res.Message())

	res = exec(t, e, `SHOW INDEX FROM foo`)
	rows = res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	row := rows.Rows[0]
	assert.Equal(t, int32(1), row["seq_in_index"].N)
	assert.Equal(t, "BTREE", row["index_type"].S)
	assert.True(t, row["is_unique"].B)

	// 5. INSERT with one index
	res = exec(t, e, `INSERT INTO foo (id, name) VALUES (2, 'bob')`)
	assert.Equal(t, "successfully inserted 1 row into foo and from 1 indices", res.Message())

	// 6. DELETE
	res = exec(t, e, `DELETE FROM foo WHERE id = 1`)
	assert.Equal(t, "successfully deleted 1 rows from foo 1 indices", res.Message())

	res = exec(t, e, `SELECT * FROM foo`)
	rows = res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, int32(2), rows.Rows[0]["id"].N)
	assert.Equal(t, "bob", rows.Rows[0]["name"].S)

	// 7. DROP TABLE
	res = exec(t, e, `DROP TABLE foo`)
	assert.Equal(t, "dropped foo", res.Message())

	res = exec(t, e, `SHOW TABLES`)
	rows = res.(*RowsResult)
	assert.Empty(t, rows.Rows)
	assert.Equal(t, "successfully returned 0 rows", rows.Message())
}

func TestRoundTripLaw(t *testing.T) {
	e := newEngine(t)

	exec(t, e, `CREATE TABLE t (a INT, b TEXT)`)
	exec(t, e, `INSERT INTO t (b, a) VALUES ('x', 7)`)

	res := exec(t, e, `SELECT * FROM t`)
	rows := res.(*RowsResult)
	assert.Equal(t, []string{"a", "b"}, rows.ColumnNames)
	assert.Equal(t, []relation.DataType{relation.Int, relation.Text}, rows.ColumnAttributes)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, int32(7), rows.Rows[0]["a"].N)
	assert.Equal(t, "x", rows.Rows[0]["b"].S)
}

func TestCreateTableIfNotExistsIdempotent(t *testing.T) {
	e := newEngine(t)

	res := exec(t, e, `CREATE TABLE IF NOT EXISTS t (a INT)`)
	assert.Equal(t, "created t", res.Message())
	tables1, columns1, indices1 := catalogCounts(t, e)

	res = exec(t, e, `CREATE TABLE IF NOT EXISTS t (a INT)`)
	assert.Equal(t, "created t", res.Message())
	tables2, columns2, indices2 := catalogCounts(t, e)

	assert.Equal(t, tables1, tables2)
	assert.Equal(t, columns1, columns2)
	assert.Equal(t, indices1, indices2)
}

func TestCreateTableUnrecognizedDataType(t *testing.T) {
	e := newEngine(t)
	err := execErr(t, e, `CREATE TABLE t (x DOUBLE)`)
	assert.Contains(t, err.Error(), "unrecognized data type")
}

func TestDropSchemaTableFails(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `SHOW TABLES`) // force bootstrap
	tablesBefore, columnsBefore, indicesBefore := catalogCounts(t, e)

	for _, name := range []string{"_tables", "_columns", "_indices"} {
		err := execErr(t, e, "DROP TABLE "+name)
		assert.Contains(t, err.Error(), "cannot drop a schema table")
	}

	tablesAfter, columnsAfter, indicesAfter := catalogCounts(t, e)
	assert.Equal(t, tablesBefore, tablesAfter)
	assert.Equal(t, columnsBefore, columnsAfter)
	assert.Equal(t, indicesBefore, indicesAfter)
}

// failingStore wraps a real store and makes the physical creation of
// chosen tables fail, to exercise the DDL rollback paths.
type failingStore struct {
	storage.Store
	failCreate map[string]bool
}

func (s *failingStore) Table(name string, columns []string, attributes []relation.DataType) relation.Relation {
	rel := s.Store.Table(name, columns, attributes)
	if s.failCreate[name] {
		return &failingRelation{Relation: rel}
	}
	return rel
}

type failingRelation struct {
	relation.Relation
}

func (r *failingRelation) Create() error            { return relation.Errorf("disk full") }
func (r *failingRelation) CreateIfNotExists() error { return relation.Errorf("disk full") }

func TestFailedCreateTableRollsBackCatalog(t *testing.T) {
	e := New(&failingStore{
		Store:      memstore.New(),
		failCreate: map[string]bool{"t": true},
	})
	exec(t, e, `SHOW TABLES`) // force bootstrap
	tablesBefore, columnsBefore, _ := catalogCounts(t, e)

	err := execErr(t, e, `CREATE TABLE t (a INT, b TEXT)`)
	assert.Contains(t, err.Error(), "DbRelationError: ")
	assert.Contains(t, err.Error(), "disk full")

	tablesAfter, columnsAfter, _ := catalogCounts(t, e)
	assert.Equal(t, tablesBefore, tablesAfter, "_tables must be unchanged after a failed CREATE TABLE")
	assert.Equal(t, columnsBefore, columnsAfter, "_columns must be unchanged after a failed CREATE TABLE")

	res := exec(t, e, `SHOW TABLES`)
	assert.Empty(t, res.(*RowsResult).Rows)
}

func TestFailedCreateIndexRollsBackCatalog(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (a INT)`)
	exec(t, e, `CREATE INDEX ix ON t (a)`)
	_, _, indicesBefore := catalogCounts(t, e)

	// The second create finds the physical index already there and must
	// remove the _indices rows it just added.
	err := execErr(t, e, `CREATE INDEX ix ON t (a)`)
	assert.Contains(t, err.Error(), "DbRelationError: ")

	_, _, indicesAfter := catalogCounts(t, e)
	assert.Equal(t, indicesBefore, indicesAfter, "_indices must be unchanged after a failed CREATE INDEX")
}

func TestCreateIndexUnknownColumn(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (a INT)`)

	err := execErr(t, e, `CREATE INDEX ix ON t (nope)`)
	assert.Contains(t, err.Error(), "Column 'nope' does not exist in t")

	_, _, indices := catalogCounts(t, e)
	assert.Zero(t, indices)
}

func TestInsertValidation(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT, name TEXT)`)

	err := execErr(t, e, `INSERT INTO t (id) VALUES ('x')`)
	assert.Contains(t, err.Error(), "don't know how to handle data type in INSERT")

	err = execErr(t, e, `INSERT INTO t (name) VALUES (5)`)
	assert.Contains(t, err.Error(), "don't know how to handle data type in INSERT")

	err = execErr(t, e, `INSERT INTO t (ghost) VALUES (1)`)
	assert.Contains(t, err.Error(), "unknown column ghost")

	err = execErr(t, e, `INSERT INTO missing (id) VALUES (1)`)
	assert.Contains(t, err.Error(), "unknown table missing")
}

func TestInsertOmittedColumnsUseDefaults(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT, name TEXT)`)
	exec(t, e, `INSERT INTO t (id) VALUES (3)`)

	res := exec(t, e, `SELECT * FROM t`)
	rows := res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, int32(3), rows.Rows[0]["id"].N)
	assert.Equal(t, "", rows.Rows[0]["name"].S)
}

func TestUniqueIndexRejectsDuplicateKey(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT)`)
	exec(t, e, `CREATE INDEX ux ON t USING BTREE (id)`)
	exec(t, e, `INSERT INTO t (id) VALUES (1)`)

	err := execErr(t, e, `INSERT INTO t (id) VALUES (1)`)
	assert.True(t, strings.HasPrefix(err.Error(), "DbRelationError: "), "got %q", err.Error())
	assert.Contains(t, err.Error(), "duplicate entry")
}

func TestInsertPopulatesIndex(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT)`)
	exec(t, e, `CREATE INDEX ux ON t (id)`)
	exec(t, e, `INSERT INTO t (id) VALUES (5)`)

	idx, err := e.indices.GetIndex("t", "ux")
	require.NoError(t, err)
	got, err := idx.Lookup(relation.Row{"id": relation.IntValue(5)})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The handle the index yields resolves to the inserted row.
	rel, err := e.tables.GetTable("t")
	require.NoError(t, err)
	row, err := rel.Project(got[0], []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, int32(5), row["id"].N)
}

func TestHashIndexAllowsDuplicateKey(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT)`)
	exec(t, e, `CREATE INDEX hx ON t USING HASH (id)`)
	exec(t, e, `INSERT INTO t (id) VALUES (1)`)
	exec(t, e, `INSERT INTO t (id) VALUES (1)`)

	res := exec(t, e, `SELECT * FROM t WHERE id = 1`)
	assert.Len(t, res.(*RowsResult).Rows, 2)
}

func TestDeleteWithoutWhereRemovesEverything(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT)`)
	exec(t, e, `INSERT INTO t (id) VALUES (1)`)
	exec(t, e, `INSERT INTO t (id) VALUES (2)`)

	res := exec(t, e, `DELETE FROM t`)
	assert.Equal(t, "successfully deleted 2 rows from t 0 indices", res.Message())

	res = exec(t, e, `SELECT * FROM t`)
	assert.Empty(t, res.(*RowsResult).Rows)
}

func TestDeleteMaintainsIndices(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT, name TEXT)`)
	exec(t, e, `CREATE INDEX ux ON t (id)`)
	exec(t, e, `INSERT INTO t (id, name) VALUES (1, 'a')`)
	exec(t, e, `INSERT INTO t (id, name) VALUES (2, 'b')`)

	res := exec(t, e, `DELETE FROM t WHERE id = 1`)
	assert.Equal(t, "successfully deleted 1 rows from t 1 indices", res.Message())

	// The freed key is insertable again: the index no longer holds the
	// old handle.
	exec(t, e, `INSERT INTO t (id, name) VALUES (1, 'again')`)
	res = exec(t, e, `SELECT name FROM t WHERE id = 1`)
	rows := res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "again", rows.Rows[0]["name"].S)
}

func TestSelectExplicitColumnOrder(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (a INT, b TEXT)`)
	exec(t, e, `INSERT INTO t (a, b) VALUES (1, 'x')`)

	res := exec(t, e, `SELECT b, a FROM t`)
	rows := res.(*RowsResult)
	assert.Equal(t, []string{"b", "a"}, rows.ColumnNames)
	assert.Equal(t, []relation.DataType{relation.Text, relation.Int}, rows.ColumnAttributes)
	require.Len(t, rows.Rows, 1)
	assert.Len(t, rows.Rows[0], 2)
}

func TestSelectUnknownColumn(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (a INT)`)
	err := execErr(t, e, `SELECT ghost FROM t`)
	assert.Contains(t, err.Error(), "unknown column ghost")
}

func TestShowColumns(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE foo (id INT, name TEXT)`)

	res := exec(t, e, `SHOW COLUMNS FROM foo`)
	rows := res.(*RowsResult)
	assert.Equal(t, []string{"table_name", "column_name", "data_type"}, rows.ColumnNames)
	assert.Equal(t, []relation.DataType{relation.Text, relation.Text, relation.Text}, rows.ColumnAttributes)
	require.Len(t, rows.Rows, 2)
	assert.Equal(t, "successfully returned 2 rows", rows.Message())
	assert.Equal(t, "id", rows.Rows[0]["column_name"].S)
	assert.Equal(t, "INT", rows.Rows[0]["data_type"].S)
	assert.Equal(t, "name", rows.Rows[1]["column_name"].S)
	assert.Equal(t, "TEXT", rows.Rows[1]["data_type"].S)
}

func TestDropIndex(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE t (id INT)`)
	exec(t, e, `CREATE INDEX ux ON t (id)`)
	exec(t, e, `INSERT INTO t (id) VALUES (1)`)

	res := exec(t, e, `DROP INDEX ux FROM t`)
	assert.Equal(t, "dropped index ux", res.Message())

	res = exec(t, e, `SHOW INDEX FROM t`)
	assert.Empty(t, res.(*RowsResult).Rows)

	// Inserts no longer touch any index.
	res = exec(t, e, `INSERT INTO t (id) VALUES (2)`)
	assert.Equal(t, "successfully inserted 1 row into t", res.Message())

	// The name is reusable.
	res = exec(t, e, `CREATE INDEX ux ON t (id)`)
	assert.Equal(t, "created index ux", res.Message())
}

func TestDropTableDropsIndicesAndCatalogRows(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `SHOW TABLES`) // force bootstrap
	tablesBefore, columnsBefore, indicesBefore := catalogCounts(t, e)

	exec(t, e, `CREATE TABLE t (id INT, name TEXT)`)
	exec(t, e, `CREATE INDEX ux ON t (id)`)
	exec(t, e, `CREATE INDEX hx ON t USING HASH (name)`)
	exec(t, e, `INSERT INTO t (id, name) VALUES (1, 'a')`)

	exec(t, e, `DROP TABLE t`)

	tablesAfter, columnsAfter, indicesAfter := catalogCounts(t, e)
	assert.Equal(t, tablesBefore, tablesAfter)
	assert.Equal(t, columnsBefore, columnsAfter)
	assert.Equal(t, indicesBefore, indicesAfter)

	// The name is immediately reusable with a different shape.
	exec(t, e, `CREATE TABLE t (other TEXT)`)
	res := exec(t, e, `SHOW COLUMNS FROM t`)
	rows := res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "other", rows.Rows[0]["column_name"].S)
}

func TestSelectFromCatalogTables(t *testing.T) {
	e := newEngine(t)
	exec(t, e, `CREATE TABLE foo (id INT)`)

	res := exec(t, e, `SELECT table_name FROM _tables WHERE table_name = 'foo'`)
	rows := res.(*RowsResult)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, "foo", rows.Rows[0]["table_name"].S)
}

func TestResultRendering(t *testing.T) {
	res := &RowsResult{
		ColumnNames:      []string{"id", "name", "flag"},
		ColumnAttributes: []relation.DataType{relation.Int, relation.Text, relation.Boolean},
		Rows: []relation.Row{
			{
				"id":   relation.IntValue(7),
				"name": relation.TextValue("x"),
				"flag": relation.BoolValue(true),
			},
		},
		Msg: "successfully returned 1 rows",
	}

	want := "id name flag \n" +
		"+----------+----------+----------+\n" +
		"7 \"x\" true \n" +
		"successfully returned 1 rows"
	assert.Equal(t, want, res.String())

	msg := &MessageResult{Msg: "created foo"}
	assert.Equal(t, "created foo", msg.String())
}
