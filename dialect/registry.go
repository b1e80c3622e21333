package dialect

import (
	"fmt"
	"slices"
	"strings"
)

// backends is fixed at compile time. Lookup exists for tools that pick an
// engine from configuration; library code names the tag type directly.
var backends = map[string]Backend{
	"postgres": Postgres{},
	"sqlite":   SQLite{},
	"mysql":    MySQL{},
	"duckdb":   DuckDB{},
}

// aliases maps alternative engine names onto canonical ones.
var aliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"sqlite3":    "sqlite",
}

// UnknownBackendError is returned when an unknown engine name is requested.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown engine %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Lookup returns the backend for a case-insensitive engine name.
func Lookup(name string) (Backend, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	b, ok := backends[key]
	if !ok {
		return nil, &UnknownBackendError{Name: name, Available: Names()}
	}
	return b, nil
}

// Names returns the canonical engine names, sorted.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SupportsRecursive reports whether b is in the Recursive set.
func SupportsRecursive(b Backend) bool {
	_, ok := b.(Recursive)
	return ok
}
