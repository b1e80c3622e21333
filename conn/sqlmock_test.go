package conn_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bawdo/ctesbee/conn"
	"github.com/bawdo/ctesbee/cte"
	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/internal/testutil"
	"github.com/bawdo/ctesbee/nodes"
)

type pg = dialect.Postgres

func newMock(t *testing.T, opts ...conn.Option) (*conn.DB[pg], sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	testutil.AssertNoError(t, err)
	db, err := conn.New[pg](raw, opts...)
	testutil.AssertNoError(t, err)
	return db, mock
}

func boundNums() cte.WithRecursiveCTE[pg, int] {
	return cte.WithRecursive("nums", cte.Cols("n"), cte.NewRecursiveParts(
		cte.SQL[pg, int]("SELECT ").Bind(1),
		cte.SQL[pg, int]("SELECT n + ").Bind(1).SQL(" FROM nums WHERE n < ").Bind(5),
		cte.SQL[pg, int]("SELECT n FROM nums WHERE n > ").Bind(2),
	))
}

const boundNumsSQL = `WITH RECURSIVE "nums" ("n") AS (SELECT $1 UNION ALL SELECT n + $2 FROM nums WHERE n < $3) SELECT n FROM nums WHERE n > $4`

func TestBindOrderReachesDriver(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	mock.ExpectQuery(boundNumsSQL).
		WithArgs(1, 1, 5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3).AddRow(4).AddRow(5))
	mock.ExpectClose()

	got, err := conn.Load(context.Background(), db, boundNums())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 3)
	testutil.AssertEqual(t, got[0], 3)

	testutil.AssertNoError(t, db.Close())
	testutil.AssertNoError(t, mock.ExpectationsWereMet())
}

func TestDriverErrorIsWrapped(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	boom := errors.New("relation does not exist")
	mock.ExpectQuery(boundNumsSQL).WillReturnError(boom)

	_, err := conn.Load(context.Background(), db, boundNums())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "query: ") {
		t.Errorf("expected query: prefix, got %q", err.Error())
	}
	testutil.AssertNoError(t, mock.ExpectationsWereMet())
}

func TestRenderErrorNeverReachesDriver(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	dup := cte.With("t", cte.Cols("a", "a"), cte.SQL[pg, int]("SELECT 1, 2"), cte.SQL[pg, int]("SELECT a FROM t"))
	_, err := conn.Load(context.Background(), db, dup)
	var dupErr *nodes.DuplicateColumnError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected DuplicateColumnError, got %v", err)
	}

	failing := cte.Wrap[pg, int](testutil.FailingNode{})
	_, err = conn.Get(context.Background(), db, failing)
	if err != testutil.ErrFragment {
		t.Fatalf("expected the fragment error unchanged, got %v", err)
	}
	testutil.AssertNoError(t, mock.ExpectationsWereMet())
}

func TestStatementCacheReusesPrepared(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t, conn.WithStatementCache(4))
	prep := mock.ExpectPrepare(boundNumsSQL)
	prep.ExpectQuery().WithArgs(1, 1, 5, 2).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	prep.ExpectQuery().WithArgs(1, 1, 5, 2).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))

	for range 2 {
		got, err := conn.Get(context.Background(), db, boundNums())
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got, 3)
	}
	testutil.AssertEqual(t, db.CachedStatements(), 1)
	testutil.AssertNoError(t, mock.ExpectationsWereMet())
}

func TestStatementCacheClosesEvicted(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t, conn.WithStatementCache(1))
	first := cte.With("a", cte.Cols(), cte.SQL[pg, int]("SELECT 1 AS x"), cte.SQL[pg, int]("SELECT x FROM a"))
	second := cte.With("b", cte.Cols(), cte.SQL[pg, int]("SELECT 2 AS x"), cte.SQL[pg, int]("SELECT x FROM b"))

	p1 := mock.ExpectPrepare(`WITH "a" AS (SELECT 1 AS x) SELECT x FROM a`).WillBeClosed()
	p1.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(1))
	p2 := mock.ExpectPrepare(`WITH "b" AS (SELECT 2 AS x) SELECT x FROM b`).WillBeClosed()
	p2.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(2))
	mock.ExpectClose()

	_, err := conn.Get(context.Background(), db, first)
	testutil.AssertNoError(t, err)
	_, err = conn.Get(context.Background(), db, second)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, db.CachedStatements(), 1)

	testutil.AssertNoError(t, db.Close())
	testutil.AssertNoError(t, mock.ExpectationsWereMet())
}

func TestClosedDB(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	mock.ExpectClose()
	testutil.AssertNoError(t, db.Close())
	testutil.AssertNoError(t, db.Close())

	_, err := conn.Load(context.Background(), db, boundNums())
	if !errors.Is(err, conn.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	testutil.AssertNoError(t, mock.ExpectationsWereMet())
}

func TestStructDecodeWeakTyping(t *testing.T) {
	t.Parallel()
	type row struct {
		ID    int    `db:"id"`
		Label string `db:"label"`
		Ok    bool   `db:"ok"`
	}
	db, mock := newMock(t)
	q := cte.With("r", cte.Cols("id", "label", "ok"),
		cte.SQL[pg, row]("SELECT 1, 'x', true"),
		cte.SQL[pg, row]("SELECT id, label, ok FROM r"))
	mock.ExpectQuery(`WITH "r" ("id", "label", "ok") AS (SELECT 1, 'x', true) SELECT id, label, ok FROM r`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "ok"}).AddRow([]byte("7"), []byte("seven"), int64(1)))

	got, err := conn.Get(context.Background(), db, q)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, row{ID: 7, Label: "seven", Ok: true})
}
