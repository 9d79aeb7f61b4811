package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/tuannm99/kqlmagic/internal"
	"github.com/tuannm99/kqlmagic/internal/magic"
	"github.com/tuannm99/kqlmagic/kqlclient"
)

const (
	prompt     = "kql> "
	contPrompt = "...> "
)

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".kql_history"
	}
	return filepath.Join(home, ".kql_history")
}

func main() {
	var (
		cfgPath  = flag.String("config", "", "yaml config file (optional)")
		conn     = flag.String("conn", "", "connection string, e.g. kusto://127.0.0.1:8866/Samples")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShot  = flag.String("c", "", "execute one query and exit")
		debug    = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug || cfg.Server.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	connection := cfg.Server.Connection
	if *conn != "" {
		connection = *conn
	}

	m := magic.New(&cfg.Magic, kqlclient.Connector(cfg.Server.Timeout),
		magic.WithLogger(logger),
		magic.WithConnection(connection),
	)
	defer func() { _ = m.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	s := newSession(m, os.Stdout)

	// one-shot mode
	if strings.TrimSpace(*oneShot) != "" {
		if err := s.exec(ctx, normalizeStmt(*oneShot)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	// preload history into readline so up-arrow works immediately
	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	var buf strings.Builder

	if connection != "" {
		fmt.Printf("using %s\n", connection)
	}
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			if !s.meta(line, h) {
				return
			}
			continue
		}

		// accumulate kql
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		if !statementComplete(buf.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		stmt := normalizeStmt(buf.String())
		buf.Reset()
		rl.SetPrompt(prompt)

		// persist history by executed statement
		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))

		if err := s.exec(ctx, stmt); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}
