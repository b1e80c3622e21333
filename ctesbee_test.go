package ctesbee_test

import (
	"errors"
	"testing"

	"github.com/bawdo/ctesbee"
)

// TestSimpleImportStyle composes a recursive CTE through the root package.
func TestSimpleImportStyle(t *testing.T) {
	t.Parallel()
	nums := ctesbee.NewTable("nums")
	n := nums.Col("n")

	q := ctesbee.WithRecursive("nums", ctesbee.Cols("n"), ctesbee.NewRecursiveParts(
		ctesbee.SQL[ctesbee.Postgres, int]("SELECT ").Bind(1),
		ctesbee.Wrap[ctesbee.Postgres, int](ctesbee.NewSelect(nums).Select(n.Plus(1)).Where(n.Lt(5))),
		ctesbee.SQL[ctesbee.Postgres, int]("SELECT n FROM nums"),
	))

	sql, binds, err := q.ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	expected := `WITH RECURSIVE "nums" ("n") AS (SELECT $1 UNION ALL SELECT "nums"."n" + $2 FROM "nums" WHERE "nums"."n" < $3) SELECT n FROM nums`
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if len(binds) != 3 || binds[0] != 1 || binds[1] != 1 || binds[2] != 5 {
		t.Errorf("Expected binds [1 1 5], got %v", binds)
	}
}

func TestNonRecursiveOnMySQL(t *testing.T) {
	t.Parallel()
	q := ctesbee.With("seed", ctesbee.Cols("value"),
		ctesbee.SQL[ctesbee.MySQL, int]("SELECT 42"),
		ctesbee.SQL[ctesbee.MySQL, int]("SELECT value FROM seed"))

	got := ctesbee.Debug(q)
	expected := "WITH `seed` (`value`) AS (SELECT 42) SELECT value FROM seed -- binds: []"
	if got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestDuplicateColumnErrorType(t *testing.T) {
	t.Parallel()
	q := ctesbee.With("t", ctesbee.Cols("a", "b", "a"),
		ctesbee.SQL[ctesbee.SQLite, int]("SELECT 1, 2, 3"),
		ctesbee.SQL[ctesbee.SQLite, int]("SELECT a FROM t"))

	sql, _, err := q.ToSQL()
	var dup *ctesbee.DuplicateColumnError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateColumnError, got %v", err)
	}
	if dup.Name != "a" {
		t.Errorf("Expected duplicate 'a', got %q", dup.Name)
	}
	if sql != "" {
		t.Errorf("Expected empty SQL on error, got %q", sql)
	}
}
