// Package cli defines Cobra command definitions for the charchat CLI.
// This file contains the root command, shared flags, and the wiring that
// turns configuration into an API client and controller.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/config"
	"github.com/charchat/charchat/internal/log"
	"github.com/charchat/charchat/internal/tui"
	"github.com/charchat/charchat/internal/tui/app"
)

var version = "dev" // set via ldflags at build time

// options holds the persistent flags shared by every command.
type options struct {
	apiURL string
	debug  bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "charchat",
		Short: "Chat with AI characters that remember you",
		Long: `charchat is a terminal client for a character chat server.
Create characters with a personality, backstory and talking style, then
chat with them. Each character keeps its sessions and the facts it has
learned about you on the server.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// When no subcommand is provided, launch TUI if TTY, show help otherwise
			if !tui.IsTTY() {
				return cmd.Help()
			}

			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			return tui.Run(app.New(env.cfg, env.ctrl))
		},
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides config and "+config.EnvAPIURL+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log debug events to .charchat/log.jsonl")

	root.AddCommand(newInitCmd())
	root.AddCommand(newCharactersCmd(opts))
	root.AddCommand(newChatCmd(opts))
	root.AddCommand(newSessionsCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newClearCmd(opts))
	root.AddCommand(newDeleteSessionCmd(opts))
	root.AddCommand(newLogCmd())
	root.AddCommand(newCleanCmd())

	return root
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is everything a command needs to talk to the server.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	client *api.Client
	ctrl   *chat.Controller
}

// open loads configuration from the working directory and builds the
// client stack. Callers must Close the result.
func (o *options) open() (*env, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}

	logger, err := log.NewLogger(config.Dir(dir), cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout()))
	return &env{
		cfg:    cfg,
		logger: logger,
		client: client,
		ctrl:   chat.New(client, logger, cfg.Chat.MaxContextMessages),
	}, nil
}

// Close flushes the event log.
func (e *env) Close() error {
	return e.logger.Close()
}
