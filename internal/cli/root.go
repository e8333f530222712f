// Package cli defines the citizen command tree. The default command opens
// the interactive conversation view; the rest are one-shot account and
// development helpers.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"citizen-impact/client/internal/app"
	"citizen-impact/client/internal/config"
)

type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "citizen",
		Short: "Terminal client for the Citizen Impact civic assistant",
		Long: `Citizen Impact is a conversational assistant for questions about
politics and citizenship. Running the command without arguments opens the
interactive chat view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(app.RunChat)
		},
	}

	root.AddCommand(newChatCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSignInCmd())
	root.AddCommand(newSignUpCmd())
	root.AddCommand(newSignOutCmd())

	return root
}

func runWithConfig(run func(*config.Config) int) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	if code := run(cfg); code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive conversation view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(app.RunChat)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a local stand-in backend for offline development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(app.RunServe)
		},
	}
}

// promptPassword reads a password without echoing it. A non-terminal stdin
// (tests, pipes) falls back to a plain line read.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("could not read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return line, nil
}
