package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/ctesbee/nodes"
)

// bindsMarker separates fragment text from its bind values:
//
//	SELECT n + 1 FROM nums WHERE n < ? -- binds: 5
const bindsMarker = "-- binds:"

// parseFragment turns shell input into a fragment node. With a binds suffix,
// each ? outside a quoted string becomes a bind, filled in order. Without
// one the text is kept verbatim, so operators such as jsonb ? survive.
func parseFragment(input string) (nodes.Node, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, fmt.Errorf("empty fragment")
	}
	i := strings.LastIndex(text, bindsMarker)
	if i < 0 {
		return nodes.NewSqlLiteral(text), nil
	}
	values, err := parseValues(text[i+len(bindsMarker):])
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text[:i])

	pieces := splitPlaceholders(text)
	if got := len(pieces) - 1; got != len(values) {
		return nil, fmt.Errorf("fragment has %d placeholder(s) but %d bind value(s)", got, len(values))
	}
	if len(values) == 0 {
		return nodes.NewSqlLiteral(text), nil
	}

	var parts []nodes.Node
	for i, piece := range pieces {
		if piece != "" {
			parts = append(parts, nodes.NewSqlLiteral(piece))
		}
		if i < len(values) {
			parts = append(parts, nodes.NewBindParam(values[i]))
		}
	}
	return nodes.NewConcat(parts...), nil
}

// splitPlaceholders splits s at every ? that is not inside single quotes.
func splitPlaceholders(s string) []string {
	var pieces []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			cur.WriteByte(ch)
		case ch == '?' && !inQuote:
			pieces = append(pieces, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(pieces, cur.String())
}

// parseValues parses a comma-separated bind list. Commas inside quoted
// strings do not split.
func parseValues(list string) ([]any, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(list); i++ {
		ch := list[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			cur.WriteByte(ch)
		case ch == ',' && !inQuote:
			tokens = append(tokens, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated string in binds: %s", strings.TrimSpace(list))
	}
	if last := strings.TrimSpace(cur.String()); last != "" || len(tokens) > 0 {
		tokens = append(tokens, last)
	}

	values := make([]any, len(tokens))
	for i, tok := range tokens {
		v, err := parseValue(tok)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// parseValue converts a token to a Go bind value.
func parseValue(token string) (any, error) {
	switch strings.ToLower(token) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	if strings.HasPrefix(token, "'") && strings.HasSuffix(token, "'") && len(token) >= 2 {
		inner := token[1 : len(token)-1]
		return strings.ReplaceAll(inner, "''", "'"), nil
	}
	if i, err := strconv.Atoi(token); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("cannot parse value: %s", token)
}

// parseColumns parses "a, b" or "(a, b)". Blank input clears the list.
func parseColumns(args string) []string {
	s := strings.TrimSpace(args)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
