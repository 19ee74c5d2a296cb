// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Root command, shared flags and session wiring.

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot-tui/internal/backend"
	"github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/config"
	"github.com/jeranaias/chatbot-tui/internal/storage"
	"github.com/jeranaias/chatbot-tui/internal/store"
)

// Version information (set at build time via -ldflags).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command annotations read by the root PersistentPreRunE.
const (
	annotationLog    = "log"
	logToFile        = "file"
	logToStderr      = "stderr"
	annotationConfig = "config"
	configOptional   = "optional"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	ConfigPath string
	BackendURL string
	Storage    string
	Verbose    bool
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	opts       globalOptions
	tui        tuiOptions
	cfg        *config.Config
	configPath string
	logFile    *os.File
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(root.ErrOrStderr(), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// NewRootCmd builds the command tree. Without a subcommand it opens the
// full-screen chat.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "chatbot",
		Short: "Terminal chat client for a streaming chatbot backend",
		Long: `chatbot talks to a chatbot backend over HTTP, renders replies as they
stream in and keeps the conversation between runs.

Run without a command to open the full-screen chat.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Annotations:       map[string]string{annotationLog: logToFile},
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
		RunE:              a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigPath, "config", "c", "", "config file (default ~/.chatbot/config.toml)")
	flags.StringVarP(&a.opts.BackendURL, "backend", "b", "", "backend base URL, overrides backend.url")
	flags.StringVar(&a.opts.Storage, "storage", "", "history storage driver: file, sqlite, redis or memory")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "write logs to stderr")
	addTUIFlags(root, &a.tui)

	root.AddCommand(
		newTUICmd(a),
		newChatCmd(a),
		newAskCmd(a),
		newHistoryCmd(a),
		newPingCmd(a),
		newDevServerCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chatbot %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

// =============================================================================
// SETUP
// =============================================================================

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		if cmd.Annotations[annotationConfig] != configOptional {
			return err
		}
		log.Printf("config: %v, using defaults", err)
		cfg = config.Default()
	}
	a.cfg = cfg
	a.setupLogging(cmd)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	path := a.opts.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	a.configPath = path

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if a.opts.BackendURL != "" {
		cfg.Backend.URL = a.opts.BackendURL
	}
	if a.opts.Storage != "" {
		cfg.Storage.Driver = a.opts.Storage
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// setupLogging routes the standard logger. The full-screen chat owns the
// terminal, so it logs to a file; --verbose sends everything else to stderr.
func (a *app) setupLogging(cmd *cobra.Command) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	switch {
	case cmd.Annotations[annotationLog] == logToFile:
		path, err := a.cfg.LogPath()
		if err == nil {
			err = os.MkdirAll(filepath.Dir(path), 0700)
		}
		var f *os.File
		if err == nil {
			f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		}
		if err != nil {
			log.SetOutput(io.Discard)
			return
		}
		a.logFile = f
		log.SetOutput(f)
	case a.opts.Verbose, cmd.Annotations[annotationLog] == logToStderr:
		log.SetOutput(cmd.ErrOrStderr())
	default:
		log.SetOutput(io.Discard)
	}
}

func (a *app) teardown() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	log.SetOutput(os.Stderr)
}

// =============================================================================
// SESSION WIRING
// =============================================================================

func (a *app) newClient() *backend.Client {
	return backend.NewClient(a.cfg.Backend.URL).
		WithTimeout(a.cfg.Backend.Timeout.Duration).
		WithMaxResponseSize(a.cfg.Backend.MaxResponseBytes)
}

// openHistory opens the configured storage slot. The caller closes it with
// history.Slot().Close().
func (a *app) openHistory(ctx context.Context) (*storage.History, error) {
	path, err := a.cfg.StoragePath()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	slot, err := storage.Open(ctx, storage.Options{
		Driver:   a.cfg.Storage.Driver,
		Path:     path,
		RedisURL: a.cfg.Storage.RedisURL,
		Key:      a.cfg.Storage.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Driver, err)
	}
	return storage.NewHistory(slot), nil
}

// openSession opens history, restores it and returns a ready session.
// The returned func releases everything.
func (a *app) openSession(ctx context.Context) (*chat.Session, func(), error) {
	history, err := a.openHistory(ctx)
	if err != nil {
		return nil, nil, err
	}

	s := chat.NewSession(store.New(), a.newClient(), history,
		chat.WithSaveInterval(a.cfg.Storage.StreamSaveInterval.Duration))
	s.Start(ctx)
	log.Printf("chat: session started, %d messages restored from %s", len(s.Messages()), history.Slot().Describe())

	cleanup := func() {
		s.Close()
		if err := history.Slot().Close(); err != nil {
			log.Printf("storage: close failed: %v", err)
		}
	}
	return s, cleanup, nil
}
