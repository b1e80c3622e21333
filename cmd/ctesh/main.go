// ctesh is an interactive shell for composing WITH and WITH RECURSIVE
// queries and running them.
//
// Configuration is layered: defaults, ./ctesh.yaml (or --config), CTESH_*
// environment variables (DATABASE_URL as a DSN fallback), then flags.
//
// Usage:
//
//	go run ./cmd/ctesh --engine postgres --dsn postgres://localhost/app
//	go run ./cmd/ctesh -e 'seed SELECT 1' -e 'step ...' -e 'body ...' -e run
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		script  []string
	)
	cmd := &cobra.Command{
		Use:   "ctesh",
		Short: "Compose and run common table expressions",
		Long: `ctesh builds a WITH or WITH RECURSIVE query from raw SQL parts,
prints it for the chosen engine and optionally runs it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			level, _ := cfg.level()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			sess, err := NewSession(cfg, logger)
			if err != nil {
				return err
			}
			sess.out = cmd.OutOrStdout()
			defer func() { _ = sess.Close() }()

			if len(script) > 0 {
				return runScript(sess, script)
			}
			return runInteractive(sess, cfg, cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./ctesh.yaml)")
	cmd.Flags().String("engine", "", "SQL engine (duckdb, mysql, postgres, sqlite)")
	cmd.Flags().String("dsn", "", "database DSN")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringArrayVarP(&script, "exec", "e", nil, "run a command and exit (repeatable)")

	_ = cmd.RegisterFlagCompletionFunc("engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"duckdb", "mysql", "postgres", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// runScript executes commands in order and stops at the first failure.
// "run" connects to the configured DSN first if needed.
func runScript(sess *Session, script []string) error {
	for _, line := range script {
		if isRunCommand(line) && sess.conn == nil {
			if err := sess.Execute("connect"); err != nil {
				return err
			}
		}
		if err := sess.Execute(line); err != nil {
			return fmt.Errorf("%s: %w", strings.TrimSpace(line), err)
		}
	}
	return nil
}

func isRunCommand(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return l == "run" || l == "exec"
}

func runInteractive(sess *Session, cfg *Config, errOut io.Writer) error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          "ctesh> ",
		HistoryFile:     historyPath(),
		HistoryLimit:    cfg.HistoryLimit,
		AutoComplete:    &shellCompleter{sess: sess},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer func() { _ = rl.Close() }()

	if cfg.DSN != "" {
		if err := sess.Execute("connect"); err != nil {
			fmt.Fprintf(errOut, "  Warning: connect failed: %v\n", err)
		}
	}

	sess.printf("\nctesh: type 'help' for commands, 'exit' to quit\n\n")
	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			break
		}
		if err := sess.Execute(line); err != nil {
			fmt.Fprintf(errOut, "  Error: %v\n", err)
		}
	}
	sess.printf("\n")
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ctesh_history")
}
