package cte

import (
	"errors"
	"sync"
	"testing"

	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/internal/testutil"
	"github.com/bawdo/ctesbee/managers"
	"github.com/bawdo/ctesbee/nodes"
)

type (
	pg   = dialect.Postgres
	lite = dialect.SQLite
)

func assertToSQL[DB dialect.Backend, T any](t *testing.T, q Query[DB, T], wantSQL string, wantBinds ...any) {
	t.Helper()
	sql, binds, err := q.ToSQL()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sql, wantSQL)
	testutil.AssertParams(t, binds, wantBinds...)
}

func seedQuery() WithCTE[lite, int] {
	return With("seed", Cols("value"),
		SQL[lite, int]("SELECT 42"),
		SQL[lite, int]("SELECT value FROM seed"))
}

func numsQuery[DB dialect.Recursive]() WithRecursiveCTE[DB, int] {
	return WithRecursive("nums", Cols("n"), NewRecursiveParts(
		SQL[DB, int]("SELECT 1"),
		SQL[DB, int]("SELECT n + 1 FROM nums WHERE n < 5"),
		SQL[DB, int]("SELECT n FROM nums"),
	))
}

func TestWithExactText(t *testing.T) {
	t.Parallel()
	assertToSQL(t, seedQuery(), `WITH "seed" ("value") AS (SELECT 42) SELECT value FROM seed`)
}

func TestWithMySQL(t *testing.T) {
	t.Parallel()
	q := With("seed", Cols("value"),
		SQL[dialect.MySQL, int]("SELECT 42"),
		SQL[dialect.MySQL, int]("SELECT value FROM seed"))
	assertToSQL(t, q, "WITH `seed` (`value`) AS (SELECT 42) SELECT value FROM seed")
}

func TestWithRecursiveExactText(t *testing.T) {
	t.Parallel()
	want := `WITH RECURSIVE "nums" ("n") AS (SELECT 1 UNION ALL SELECT n + 1 FROM nums WHERE n < 5) SELECT n FROM nums`
	assertToSQL(t, numsQuery[pg](), want)
	assertToSQL(t, numsQuery[lite](), want)
	assertToSQL(t, numsQuery[dialect.DuckDB](), want)
}

func TestEmptyColumnsInferred(t *testing.T) {
	t.Parallel()
	q := With("seed", Cols(), SQL[lite, int]("SELECT 42 AS value"), SQL[lite, int]("SELECT value FROM seed"))
	assertToSQL(t, q, `WITH "seed" AS (SELECT 42 AS value) SELECT value FROM seed`)

	var none Columns
	r := WithRecursive("nums", none, NewRecursiveParts(
		SQL[pg, int]("SELECT 1 AS n"), SQL[pg, int]("SELECT n + 1 FROM nums WHERE n < 5"), SQL[pg, int]("SELECT n FROM nums")))
	assertToSQL(t, r, `WITH RECURSIVE "nums" AS (SELECT 1 AS n UNION ALL SELECT n + 1 FROM nums WHERE n < 5) SELECT n FROM nums`)
}

func TestDuplicateColumns(t *testing.T) {
	t.Parallel()
	q := With("t", Cols("id", "name", "id"), SQL[pg, int]("SELECT 1, 2, 3"), SQL[pg, int]("SELECT id FROM t"))
	sql, binds, err := q.ToSQL()
	var dup *nodes.DuplicateColumnError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateColumnError, got %v", err)
	}
	testutil.AssertEqual(t, dup.Name, "id")
	testutil.AssertEqual(t, sql, "")
	if binds != nil {
		t.Errorf("expected nil binds, got %v", binds)
	}
	_, err = q.QueryID()
	testutil.AssertErrorContains(t, err, "duplicate column name 'id' in CTE")
}

func TestColumnsAreCopied(t *testing.T) {
	t.Parallel()
	names := []string{"n"}
	cols := Cols(names...)
	names[0] = "changed"
	q := WithRecursive("nums", cols, NewRecursiveParts(
		SQL[lite, int]("SELECT 1"), SQL[lite, int]("SELECT n + 1 FROM nums WHERE n < 5"), SQL[lite, int]("SELECT n FROM nums")))
	cols[0] = "changed"

	testutil.AssertEqual(t, q.Node().Columns[0], "n")
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()
	q := numsQuery[pg]()
	first, _, err := q.ToSQL()
	testutil.AssertNoError(t, err)
	second, _, err := q.ToSQL()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, second, first)
}

func TestConcurrentRender(t *testing.T) {
	t.Parallel()
	q := WithRecursive("nums", Cols("n"), NewRecursiveParts(
		SQL[pg, int]("SELECT ").Bind(1),
		SQL[pg, int]("SELECT n + 1 FROM nums WHERE n < ").Bind(5),
		SQL[pg, int]("SELECT n FROM nums"),
	))
	want, _, err := q.ToSQL()
	testutil.AssertNoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, binds, err := q.ToSQL()
			if err != nil || got != want || len(binds) != 2 {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent render diverged: %q", got)
	}
}

func TestWrapRoundTrip(t *testing.T) {
	t.Parallel()
	nums := nodes.NewTable("nums")
	n := nums.Col("n")
	step := managers.NewSelectManager(nums).Select(n.Plus(1)).Where(n.Lt(5))

	direct := dialect.Postgres{}.NewVisitor()
	directSQL, err := step.Accept(direct)
	testutil.AssertNoError(t, err)

	for _, wrapped := range []Part[pg, int]{Wrap[pg, int](step), Seed[pg, int](step), Step[pg, int](step), Define[pg, int](step)} {
		assertToSQL(t, wrapped, directSQL, direct.Params()...)
	}

	raw := SQL[pg, int]("SELECT ").Bind(3)
	again := Wrap[pg, int](raw)
	rawSQL, rawBinds, err := raw.ToSQL()
	testutil.AssertNoError(t, err)
	assertToSQL(t, again, rawSQL, rawBinds...)

	id1, err := raw.QueryID()
	testutil.AssertNoError(t, err)
	id2, err := again.QueryID()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, id2, id1)
}

func TestPostgresPlaceholderOrder(t *testing.T) {
	t.Parallel()
	q := WithRecursive("nums", Cols("n"), NewRecursiveParts(
		SQL[pg, int]("SELECT ").Bind(1),
		SQL[pg, int]("SELECT n + ").Bind(1).SQL(" FROM nums WHERE n < ").Bind(5),
		SQL[pg, int]("SELECT n FROM nums WHERE n > ").Bind(2).SQL(" ORDER BY n"),
	))
	assertToSQL(t, q,
		`WITH RECURSIVE "nums" ("n") AS (SELECT $1 UNION ALL SELECT n + $2 FROM nums WHERE n < $3) SELECT n FROM nums WHERE n > $4 ORDER BY n`,
		1, 1, 5, 2)
}

func TestWithBindOrder(t *testing.T) {
	t.Parallel()
	q := WithParts("bounds", Cols("lo", "hi"), NewCTEParts(
		SQL[lite, int]("SELECT ").Bind(10).SQL(", ").Bind(20),
		SQL[lite, int]("SELECT lo FROM bounds WHERE hi > ").Bind(15),
	))
	assertToSQL(t, q,
		`WITH "bounds" ("lo", "hi") AS (SELECT ?, ?) SELECT lo FROM bounds WHERE hi > ?`,
		10, 20, 15)
}

func TestFragmentIsImmutable(t *testing.T) {
	t.Parallel()
	base := SQL[pg, int]("SELECT n FROM nums WHERE n < ")
	a := base.Bind(1)
	b := base.Bind(2)
	assertToSQL(t, base, `SELECT n FROM nums WHERE n < `)
	assertToSQL(t, a, `SELECT n FROM nums WHERE n < $1`, 1)
	assertToSQL(t, b, `SELECT n FROM nums WHERE n < $1`, 2)
}

func TestFragmentErrorPropagatesUnchanged(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	failing := Wrap[pg, int](testutil.FailingNode{Err: boom})
	ok := SQL[pg, int]("SELECT 1")

	cases := map[string]Query[pg, int]{
		"definition": With("a", Cols(), failing, ok),
		"body":       With("a", Cols(), ok, failing),
		"seed":       WithRecursive("a", Cols(), NewRecursiveParts(failing, ok, ok)),
		"step":       WithRecursive("a", Cols(), NewRecursiveParts(ok, failing, ok)),
		"recbody":    WithRecursive("a", Cols(), NewRecursiveParts(ok, ok, failing)),
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			sql, binds, err := q.ToSQL()
			if err != boom {
				t.Fatalf("expected the same error value, got %v", err)
			}
			testutil.AssertEqual(t, sql, "")
			if binds != nil {
				t.Errorf("expected nil binds, got %v", binds)
			}
		})
	}
}

func TestMissingFragmentIsAnError(t *testing.T) {
	t.Parallel()
	ok := SQL[pg, int]("SELECT 1")
	var missing Query[pg, int]

	cases := map[string]Query[pg, int]{
		"zero fragment":      Fragment[pg, int]{},
		"zero part":          Part[pg, int]{},
		"wrapped nil":        Wrap[pg, int](nil),
		"nil definition":     With("a", Cols(), missing, ok),
		"zero body":          With("a", Cols(), ok, Fragment[pg, int]{}),
		"nil seed":           WithRecursive("a", Cols(), NewRecursiveParts(missing, ok, ok)),
		"zero step":          WithRecursive("a", Cols(), NewRecursiveParts(ok, Fragment[pg, int]{}, ok)),
		"nil recursive body": WithRecursive("a", Cols(), NewRecursiveParts(ok, ok, missing)),
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			sql, binds, err := q.ToSQL()
			if !errors.Is(err, nodes.ErrNilNode) {
				t.Fatalf("expected ErrNilNode, got %v", err)
			}
			testutil.AssertEqual(t, sql, "")
			if binds != nil {
				t.Errorf("expected nil binds, got %v", binds)
			}
			if _, err := q.QueryID(); !errors.Is(err, nodes.ErrNilNode) {
				t.Errorf("QueryID: expected ErrNilNode, got %v", err)
			}
		})
	}
}

func TestQueryID(t *testing.T) {
	t.Parallel()
	a, err := SQL[pg, int]("SELECT ").Bind(1).QueryID()
	testutil.AssertNoError(t, err)
	b, err := SQL[pg, int]("SELECT ").Bind(99).QueryID()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, a, b)

	c, err := SQL[pg, int]("SELECT 2").QueryID()
	testutil.AssertNoError(t, err)
	if c == a {
		t.Error("expected different ids for different text")
	}

	sq, err := SQL[lite, int]("SELECT 1").QueryID()
	testutil.AssertNoError(t, err)
	dk, err := SQL[dialect.DuckDB, int]("SELECT 1").QueryID()
	testutil.AssertNoError(t, err)
	if sq == dk {
		t.Error("expected ids to differ across dialects for the same text")
	}
}

func TestNestedComposition(t *testing.T) {
	t.Parallel()
	inner := seedQuery()
	outer := With("outer", Cols("v"), inner, SQL[lite, int]("SELECT v FROM outer"))
	assertToSQL(t, outer,
		`WITH "outer" ("v") AS (WITH "seed" ("value") AS (SELECT 42) SELECT value FROM seed) SELECT v FROM outer`)
}

func TestStructuredParts(t *testing.T) {
	t.Parallel()
	nums := nodes.NewTable("nums")
	n := nums.Col("n")
	q := WithRecursive("nums", Cols("n"), NewRecursiveParts(
		Seed[pg, int](managers.NewSelectManager(nil).Select(nodes.Literal(1))),
		Step[pg, int](managers.NewSelectManager(nums).Select(n.Plus(1)).Where(n.Lt(5))),
		Wrap[pg, int](managers.NewSelectManager(nums).Select(n)),
	))
	assertToSQL(t, q,
		`WITH RECURSIVE "nums" ("n") AS (SELECT $1 UNION ALL SELECT "nums"."n" + $2 FROM "nums" WHERE "nums"."n" < $3) SELECT "nums"."n" FROM "nums"`,
		1, 1, 5)
}

func TestDebug(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, Debug(seedQuery()),
		`WITH "seed" ("value") AS (SELECT 42) SELECT value FROM seed -- binds: []`)
	testutil.AssertEqual(t, Debug(SQL[pg, int]("SELECT ").Bind(1).SQL(" + ").Bind("x")),
		`SELECT $1 + $2 -- binds: [1 x]`)
	testutil.AssertEqual(t, Debug(Wrap[pg, int](testutil.FailingNode{})),
		"error: "+testutil.ErrFragment.Error())
}

func TestInterfaceBackendRejected(t *testing.T) {
	t.Parallel()
	_, _, err := SQL[dialect.Backend, int]("SELECT 1").ToSQL()
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
	_, err = SQL[dialect.Recursive, int]("SELECT 1").QueryID()
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
}

func TestNodeAccessors(t *testing.T) {
	t.Parallel()
	w := seedQuery().Node()
	testutil.AssertEqual(t, w.Name, "seed")
	r := numsQuery[lite]().Node()
	testutil.AssertEqual(t, r.Name, "nums")
	testutil.AssertEqual(t, len(r.Columns), 1)
}
