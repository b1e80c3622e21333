package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/nodes"
	"github.com/bawdo/ctesbee/visitors"
)

const defaultName = "cte"

// commandEntry maps a shell prefix to its handler. A prefix ending in a space
// takes arguments; any other prefix must match the whole line.
type commandEntry struct {
	prefix  string
	handler func(args string) error
	hidden  bool // excluded from commandNames()
}

// Session holds the shell state: the engine, the CTE being composed and the
// optional database connection.
type Session struct {
	engine       dialect.Backend
	name         string
	columns      []string
	recursive    bool
	define       string
	seed         string
	step         string
	body         string
	parameterize bool

	commands  []commandEntry
	conn      dbConn // nil when disconnected
	lastDSN   string
	cacheSize int
	logger    *slog.Logger
	out       io.Writer
}

// NewSession creates a session for the named engine.
func NewSession(cfg *Config, logger *slog.Logger) (*Session, error) {
	b, err := dialect.Lookup(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		engine:       b,
		name:         defaultName,
		parameterize: true,
		lastDSN:      cfg.DSN,
		cacheSize:    cfg.StatementCache,
		logger:       logger,
		out:          os.Stdout,
	}
	s.initCommands()
	return s, nil
}

func (s *Session) initCommands() {
	s.commands = []commandEntry{
		{prefix: "engine ", handler: s.cmdEngine},
		{prefix: "connect ", handler: s.cmdConnect},
		{prefix: "connect", handler: func(_ string) error { return s.cmdConnect("") }},
		{prefix: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }},

		{prefix: "name ", handler: s.cmdName},
		{prefix: "columns ", handler: s.cmdColumns},
		{prefix: "columns", handler: s.cmdColumns},
		{prefix: "cols ", handler: s.cmdColumns, hidden: true},
		{prefix: "recursive ", handler: s.cmdRecursive},
		{prefix: "define ", handler: func(a string) error { return s.setPart(&s.define, a) }},
		{prefix: "seed ", handler: func(a string) error { return s.setPart(&s.seed, a) }},
		{prefix: "step ", handler: func(a string) error { return s.setPart(&s.step, a) }},
		{prefix: "body ", handler: func(a string) error { return s.setPart(&s.body, a) }},
		{prefix: "params ", handler: s.cmdParams},

		{prefix: "sql", handler: func(_ string) error { return s.cmdSQL() }},
		{prefix: "format", handler: func(_ string) error { return s.cmdFormat() }},
		{prefix: "dot ", handler: s.cmdDot},
		{prefix: "dot", handler: s.cmdDot},
		{prefix: "run", handler: func(_ string) error { return s.cmdRun() }},
		{prefix: "exec", handler: func(_ string) error { return s.cmdRun() }, hidden: true},

		{prefix: "show", handler: func(_ string) error { s.cmdShow(); return nil }},
		{prefix: "reset", handler: func(_ string) error { s.cmdReset(); return nil }},
		{prefix: "help", handler: func(_ string) error { s.cmdHelp(); return nil }},
	}

	// Longest prefixes match first.
	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// commandNames lists the visible command names for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		name := strings.TrimRight(cmd.prefix, " ")
		if cmd.hidden || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, extra := range []string{"exit", "quit"} {
		if !seen[extra] {
			names = append(names, extra)
		}
	}
	sort.Strings(names)
	return names
}

// Execute runs one shell command.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				return cmd.handler(line[len(cmd.prefix):])
			}
		} else if lower == cmd.prefix {
			return cmd.handler("")
		}
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

// Close releases the connection, if any.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.close()
	s.conn = nil
	return err
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// --- Composition ---

var errNoBody = errors.New("no body defined (use 'body <sql>')")

// build assembles the CTE node from the current parts.
func (s *Session) build() (nodes.Node, error) {
	if s.body == "" {
		return nil, errNoBody
	}
	body, err := parseFragment(s.body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	cols := append([]string(nil), s.columns...)

	if !s.recursive {
		if s.define == "" {
			return nil, errors.New("no definition (use 'define <sql>')")
		}
		def, err := parseFragment(s.define)
		if err != nil {
			return nil, fmt.Errorf("define: %w", err)
		}
		return &nodes.WithNode{
			Name:       s.name,
			Columns:    cols,
			Definition: nodes.NewQueryPart(def),
			Body:       nodes.NewQueryPart(body),
		}, nil
	}

	// The library rejects this at compile time; the shell picks its engine
	// at runtime, so it checks here instead.
	if !dialect.SupportsRecursive(s.engine) {
		return nil, fmt.Errorf("engine %s does not support WITH RECURSIVE", s.engine.Name())
	}
	if s.seed == "" || s.step == "" {
		return nil, errors.New("recursive CTE needs both 'seed <sql>' and 'step <sql>'")
	}
	seed, err := parseFragment(s.seed)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	step, err := parseFragment(s.step)
	if err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}
	return &nodes.RecursiveNode{
		Name:    s.name,
		Columns: cols,
		Seed:    nodes.NewQueryPart(seed),
		Step:    nodes.NewQueryPart(step),
		Body:    nodes.NewQueryPart(body),
	}, nil
}

func (s *Session) visitor() dialect.Visitor {
	if !s.parameterize {
		return s.engine.NewVisitor(visitors.WithoutParams())
	}
	return s.engine.NewVisitor()
}

func (s *Session) printBinds(params []any) {
	if len(params) == 0 {
		return
	}
	s.printf("  -- binds: %v\n", params)
}

// --- Command handlers ---

func (s *Session) cmdEngine(args string) error {
	b, err := dialect.Lookup(args)
	if err != nil {
		return err
	}
	s.engine = b
	s.printf("  Engine: %s\n", b.Name())
	if s.recursive && !dialect.SupportsRecursive(b) {
		s.printf("  Note: %s has no WITH RECURSIVE; use 'recursive off'\n", b.Name())
	}
	if s.conn != nil && s.conn.engine() != b.Name() {
		s.printf("  Warning: connected to %s; 'disconnect' and 'connect' to switch\n", s.conn.engine())
	}
	return nil
}

func (s *Session) cmdConnect(args string) error {
	dsn := strings.TrimSpace(args)
	if s.conn != nil {
		return fmt.Errorf("already connected to %s (use 'disconnect' first)", sanitizeDSN(s.conn.dsn()))
	}
	if dsn == "" {
		dsn = s.lastDSN
	}
	if dsn == "" {
		return errors.New("usage: connect <dsn>")
	}
	c, err := connect(context.Background(), s.engine, dsn, s.cacheSize, s.logger)
	if err != nil {
		return err
	}
	s.conn = c
	s.lastDSN = dsn
	s.printf("  Connected to %s (%s)\n", sanitizeDSN(dsn), s.engine.Name())
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errors.New("not connected")
	}
	dsn := sanitizeDSN(s.conn.dsn())
	if err := s.Close(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	s.printf("  Disconnected from %s\n", dsn)
	return nil
}

func (s *Session) cmdName(args string) error {
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: name <ident>")
	}
	s.name = name
	return nil
}

func (s *Session) cmdColumns(args string) error {
	cols := parseColumns(args)
	if err := nodes.ValidateColumns(cols); err != nil {
		return err
	}
	s.columns = cols
	if len(cols) == 0 {
		s.printf("  Columns: inferred\n")
	} else {
		s.printf("  Columns: %s\n", strings.Join(cols, ", "))
	}
	return nil
}

func (s *Session) cmdRecursive(args string) error {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		if !dialect.SupportsRecursive(s.engine) {
			return fmt.Errorf("engine %s does not support WITH RECURSIVE", s.engine.Name())
		}
		s.recursive = true
	case "off":
		s.recursive = false
	default:
		return errors.New("usage: recursive on|off")
	}
	return nil
}

func (s *Session) cmdParams(args string) error {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		s.parameterize = true
	case "off":
		s.parameterize = false
	default:
		return errors.New("usage: params on|off")
	}
	return nil
}

func (s *Session) setPart(dst *string, args string) error {
	text := strings.TrimSpace(args)
	if _, err := parseFragment(text); err != nil {
		return err
	}
	*dst = text
	return nil
}

func (s *Session) cmdSQL() error {
	n, err := s.build()
	if err != nil {
		return err
	}
	v := s.visitor()
	sql, err := n.Accept(v)
	if err != nil {
		return err
	}
	s.printf("  %s;\n", sql)
	s.printBinds(v.Params())
	return nil
}

func (s *Session) cmdFormat() error {
	n, err := s.build()
	if err != nil {
		return err
	}
	fv := visitors.NewFormattingVisitor(s.visitor())
	sql, err := n.Accept(fv)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(sql, "\n") {
		s.printf("  %s\n", line)
	}
	s.printBinds(fv.Params())
	return nil
}

// cmdDot prints the Graphviz graph, or writes it to the given path.
func (s *Session) cmdDot(args string) error {
	n, err := s.build()
	if err != nil {
		return err
	}
	dv := visitors.NewDotVisitor()
	if _, err := n.Accept(dv); err != nil {
		return err
	}
	fpath := strings.TrimSpace(args)
	if fpath == "" {
		s.printf("%s", dv.ToDot())
		return nil
	}
	if err := os.WriteFile(fpath, []byte(dv.ToDot()), 0o644); err != nil {
		return fmt.Errorf("writing DOT file: %w", err)
	}
	s.printf("  DOT written to %s (%d nodes)\n", fpath, dv.NodeCount())
	return nil
}

// cmdRun executes the composed CTE. Values are always bound, whatever the
// params setting.
func (s *Session) cmdRun() error {
	if s.conn == nil {
		return errors.New("not connected (use 'connect <dsn>' first)")
	}
	if s.conn.engine() != s.engine.Name() {
		return fmt.Errorf("connected to %s but engine is %s", s.conn.engine(), s.engine.Name())
	}
	n, err := s.build()
	if err != nil {
		return err
	}
	out, err := s.conn.query(context.Background(), n)
	if err != nil {
		return err
	}
	s.printf("%s", out)
	return nil
}

func (s *Session) cmdShow() {
	variant := "WITH"
	if s.recursive {
		variant = "WITH RECURSIVE"
	}
	cols := "(inferred)"
	if len(s.columns) > 0 {
		cols = "(" + strings.Join(s.columns, ", ") + ")"
	}
	s.printf("  engine:    %s\n", s.engine.Name())
	s.printf("  variant:   %s\n", variant)
	s.printf("  name:      %s %s\n", s.name, cols)
	if s.recursive {
		s.printf("  seed:      %s\n", orUnset(s.seed))
		s.printf("  step:      %s\n", orUnset(s.step))
	} else {
		s.printf("  define:    %s\n", orUnset(s.define))
	}
	s.printf("  body:      %s\n", orUnset(s.body))
	s.printf("  params:    %t\n", s.parameterize)
	if s.conn != nil {
		s.printf("  connected: %s (%d cached statements)\n", sanitizeDSN(s.conn.dsn()), s.conn.cached())
	} else {
		s.printf("  connected: no\n")
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func (s *Session) cmdReset() {
	s.name = defaultName
	s.columns = nil
	s.recursive = false
	s.define, s.seed, s.step, s.body = "", "", "", ""
	s.printf("  Query reset\n")
}

func (s *Session) cmdHelp() {
	s.printf(`
  Composing:
    name <ident>              Set the CTE name (default %q)
    columns [a, b]            Set the column list; empty infers from the definition
    recursive on|off          Choose WITH RECURSIVE or plain WITH
    define <sql>              Set the definition (non-recursive)
    seed <sql>                Set the seed (recursive)
    step <sql>                Set the step (recursive)
    body <sql>                Set the query that reads the CTE

    Fragments may end in "-- binds: v1, v2"; each ? takes the next value.

  Output:
    sql                       Print one-line SQL and binds
    format                    Print multi-line SQL
    dot [file]                Print or write the Graphviz graph
    params on|off             Bind values (default) or inline them

  Database:
    engine <name>             Switch engine (%s)
    connect [dsn]             Connect (defaults to the configured DSN)
    disconnect                Close the connection
    run                       Execute and print the rows

  Session:
    show                      Show the current parts
    reset                     Clear the parts
    help                      This text
    exit, quit                Leave

`, defaultName, strings.Join(dialect.Names(), ", "))
}
