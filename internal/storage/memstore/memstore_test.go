package memstore

import (
	"testing"

	"minirel/internal/relation"
)

func usersTable(t *testing.T, store *Store) relation.Relation {
	t.Helper()
	rel := store.Table("users",
		[]string{"id", "name"},
		[]relation.DataType{relation.Int, relation.Text})
	if err := rel.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return rel
}

func TestCreateInsertSelectProject(t *testing.T) {
	store := New()
	rel := usersTable(t, store)

	h1, err := rel.Insert(relation.Row{
		"id":   relation.IntValue(1),
		"name": relation.TextValue("Alice"),
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	_, err = rel.Insert(relation.Row{
		"id":   relation.IntValue(2),
		"name": relation.TextValue("Bob"),
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	handles, err := rel.Select(nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(handles))
	}

	row, err := rel.Project(h1, []string{"name"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(row) != 1 || row["name"].S != "Alice" {
		t.Fatalf("projected row: got %v", row)
	}
}

func TestSelectWithPredicate(t *testing.T) {
	store := New()
	rel := usersTable(t, store)

	for i, name := range []string{"a", "b", "a"} {
		_, err := rel.Insert(relation.Row{
			"id":   relation.IntValue(int32(i)),
			"name": relation.TextValue(name),
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	handles, err := rel.Select(relation.Row{"name": relation.TextValue("a")})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(handles))
	}
}

func TestHandlesStayStableAcrossDeletes(t *testing.T) {
	store := New()
	rel := usersTable(t, store)

	var handles []relation.Handle
	for i := 0; i < 3; i++ {
		h, err := rel.Insert(relation.Row{"id": relation.IntValue(int32(i))})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		handles = append(handles, h)
	}

	if err := rel.Delete(handles[1]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Surviving rows keep their handles.
	row, err := rel.Project(handles[2], []string{"id"})
	if err != nil {
		t.Fatalf("Project after delete failed: %v", err)
	}
	if row["id"].N != 2 {
		t.Fatalf("expected id 2, got %d", row["id"].N)
	}

	// The deleted handle is gone for good.
	if _, err := rel.Project(handles[1], []string{"id"}); err == nil {
		t.Fatalf("expected error projecting a deleted handle")
	}
	if err := rel.Delete(handles[1]); err == nil {
		t.Fatalf("expected error deleting a deleted handle")
	}

	// A later insert does not disturb anything.
	if _, err := rel.Insert(relation.Row{"id": relation.IntValue(9)}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	left, err := rel.Select(nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(left) != 3 {
		t.Fatalf("expected 3 live rows, got %d", len(left))
	}
}

func TestInsertDefaultsOmittedColumns(t *testing.T) {
	store := New()
	rel := usersTable(t, store)

	h, err := rel.Insert(relation.Row{"name": relation.TextValue("x")})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	row, err := rel.Project(h, []string{"id", "name"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if row["id"].Type != relation.Int || row["id"].N != 0 {
		t.Fatalf("expected zero-value id, got %+v", row["id"])
	}
}

func TestInsertRejectsBadRows(t *testing.T) {
	store := New()
	rel := usersTable(t, store)

	if _, err := rel.Insert(relation.Row{"nope": relation.IntValue(1)}); err == nil {
		t.Fatalf("expected error for unknown column")
	}
	if _, err := rel.Insert(relation.Row{"id": relation.TextValue("x")}); err == nil {
		t.Fatalf("expected error for type mismatch")
	}
}

func TestCreateAndDropLifecycle(t *testing.T) {
	store := New()
	rel := usersTable(t, store)

	if err := rel.Create(); err == nil {
		t.Fatalf("expected error creating an existing table")
	}
	if err := rel.CreateIfNotExists(); err != nil {
		t.Fatalf("CreateIfNotExists on existing table failed: %v", err)
	}
	if err := rel.Drop(); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if err := rel.Drop(); err == nil {
		t.Fatalf("expected error dropping a missing table")
	}
	if _, err := rel.Select(nil); err == nil {
		t.Fatalf("expected error scanning a dropped table")
	}
}

func TestErrorsAreRelationErrors(t *testing.T) {
	store := New()
	rel := store.Table("ghost", []string{"x"}, []relation.DataType{relation.Int})

	_, err := rel.Select(nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*relation.Error); !ok {
		t.Fatalf("expected *relation.Error, got %T", err)
	}
}
