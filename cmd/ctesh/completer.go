package main

import (
	"strings"

	"github.com/bawdo/ctesbee/dialect"
)

var toggleArgs = []string{"off", "on"}

// shellCompleter implements readline's AutoCompleter interface.
type shellCompleter struct {
	sess *Session
}

// Do returns completion suffixes for the word under the cursor and the
// length of the prefix being completed.
func (c *shellCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	prefix, candidates := c.candidates(lineStr)
	for _, cand := range candidates {
		newLine = append(newLine, []rune(cand[len(prefix):]+" "))
	}
	return newLine, len([]rune(prefix))
}

// candidates returns the prefix being typed and its completions.
func (c *shellCompleter) candidates(line string) (string, []string) {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "engine "):
		arg := strings.TrimSpace(line[len("engine "):])
		return arg, filterPrefix(dialect.Names(), arg)
	case strings.HasPrefix(lower, "recursive "), strings.HasPrefix(lower, "params "):
		arg := strings.TrimSpace(line[strings.Index(line, " ")+1:])
		return arg, filterPrefix(toggleArgs, arg)
	case strings.Contains(line, " "):
		return "", nil
	}
	prefix := strings.TrimSpace(line)
	return prefix, filterPrefix(c.sess.commandNames(), prefix)
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		return append([]string(nil), items...)
	}
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	return result
}
