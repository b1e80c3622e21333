package main

import (
	"testing"

	"github.com/bawdo/ctesbee/internal/testutil"
	"github.com/bawdo/ctesbee/visitors"
)

func TestParseFragment(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input  string
		sql    string
		params []any
	}{
		{"SELECT 1", "SELECT 1", nil},
		{`SELECT doc ? 'tags' FROM docs`, `SELECT doc ? 'tags' FROM docs`, nil},
		{"SELECT n FROM t WHERE a = ? AND b = ? -- binds: 1, 'x'", "SELECT n FROM t WHERE a = $1 AND b = $2", []any{1, "x"}},
		{"SELECT ? -- binds: true", "SELECT $1", []any{true}},
		{"SELECT '?' || ? -- binds: 2.5", "SELECT '?' || $1", []any{2.5}},
		{"SELECT ? IS NULL -- binds: NULL", "SELECT $1 IS NULL", []any{nil}},
		{"SELECT ?, ? -- binds: 'a, b', 'c''d'", "SELECT $1, $2", []any{"a, b", "c'd"}},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			n, err := parseFragment(tc.input)
			testutil.AssertNoError(t, err)
			v := visitors.NewPostgresVisitor()
			sql, err := n.Accept(v)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, sql, tc.sql)
			testutil.AssertParams(t, v.Params(), tc.params...)
		})
	}
}

func TestParseFragmentErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  string
	}{
		{"", "empty fragment"},
		{"SELECT ? -- binds:", "1 placeholder(s) but 0 bind value(s)"},
		{"SELECT 1 -- binds: 4", "0 placeholder(s) but 1 bind value(s)"},
		{"SELECT ? -- binds: nope", "cannot parse value: nope"},
		{"SELECT ? -- binds: 'open", "unterminated string"},
	}
	for _, tc := range cases {
		_, err := parseFragment(tc.input)
		testutil.AssertErrorContains(t, err, tc.want)
	}
}

func TestParseColumns(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"n", []string{"n"}},
		{"(id, parent_id , name)", []string{"id", "parent_id", "name"}},
		{"a,,b", []string{"a", "b"}},
	}
	for _, tc := range cases {
		got := parseColumns(tc.input)
		if len(got) != len(tc.want) {
			t.Fatalf("parseColumns(%q) = %v, want %v", tc.input, got, tc.want)
		}
		for i := range got {
			testutil.AssertEqual(t, got[i], tc.want[i])
		}
	}
}
