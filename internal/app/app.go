package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"citizen-impact/client/internal/backend"
	"citizen-impact/client/internal/config"
	"citizen-impact/client/internal/controller"
	"citizen-impact/client/internal/database"
	"citizen-impact/client/internal/devserver"
	"citizen-impact/client/internal/i18n"
	"citizen-impact/client/internal/identity"
	"citizen-impact/client/internal/model"
	"citizen-impact/client/internal/reveal"
	"citizen-impact/client/internal/session"
	"citizen-impact/client/internal/timeline"
	"citizen-impact/client/internal/ui"
	"citizen-impact/client/internal/validate"
)

// RunChat builds the conversation engine and hands the terminal to the
// interactive view. It returns a process exit code.
func RunChat(cfg *config.Config) int {
	// The TUI owns stdout, so interactive runs log to a file (or discard).
	closeLogs := setupLogger(cfg.LogLevel, cfg.LogFile)
	defer closeLogs()

	store := identity.NewStore(identity.DefaultPath(cfg.IdentityPath))
	ident, err := store.Load()
	if err != nil {
		slog.Warn("Could not load identity, continuing anonymously", "error", err)
		ident = model.Identity{}
	}
	source := newIdentitySource(ident)

	client := backend.NewClient(cfg.BackendURL)
	tl := timeline.New()
	registry := session.NewRegistry(client)
	text := i18n.Lookup(cfg.Language)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	registry.Load(ctx, ident)
	cancel()

	ctrl := controller.New(controller.Params{
		Backend:   client,
		Registry:  registry,
		Timeline:  tl,
		Identity:  source.Current,
		ErrorText: text.ConnectionError,
	})

	program := tea.NewProgram(ui.New(ui.Params{
		Controller: ctrl,
		Registry:   registry,
		Timeline:   tl,
		Revealer:   reveal.NewRevealer(time.Duration(cfg.TypewriterDelayMs) * time.Millisecond),
		Identity:   ident,
		Text:       text,
		SignOut: func() {
			if err := store.Clear(); err != nil {
				slog.Warn("Could not clear persisted identity", "error", err)
			}
			registry.Clear()
			ctrl.NewConversation()
			source.Forget()
		},
	}), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		slog.Error("Interactive view failed", "error", err)
		return 1
	}
	return 0
}

// RunServe starts the local stand-in backend on the configured port.
func RunServe(cfg *config.Config) int {
	setupServerLogger(cfg.LogLevel)
	logConfigSource()

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Successfully connected to SQLite database.")

	srv := devserver.NewServer(db, cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServePort),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.ServePort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}

// RunSignIn validates the credentials, exchanges them for an access token
// and persists the resulting identity.
func RunSignIn(cfg *config.Config, email, password string) int {
	setupServerLogger(cfg.LogLevel)

	if err := validate.Struct(validate.SignInInput{Email: email, Password: password}); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid input:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds, err := backend.NewClient(cfg.BackendURL).SignIn(ctx, email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Sign in failed:", err)
		return 1
	}

	return saveIdentity(cfg, creds)
}

// RunSignUp registers a new account and persists the signed-in identity.
func RunSignUp(cfg *config.Config, name, email, password string) int {
	setupServerLogger(cfg.LogLevel)

	if err := validate.Struct(validate.SignUpInput{Name: name, Email: email, Password: password}); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid input:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds, err := backend.NewClient(cfg.BackendURL).SignUp(ctx, name, email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Sign up failed:", err)
		return 1
	}

	return saveIdentity(cfg, creds)
}

// RunSignOut removes the persisted identity.
func RunSignOut(cfg *config.Config) int {
	store := identity.NewStore(identity.DefaultPath(cfg.IdentityPath))
	if err := store.Clear(); err != nil {
		fmt.Fprintln(os.Stderr, "Sign out failed:", err)
		return 1
	}
	fmt.Println("Signed out.")
	return 0
}

func saveIdentity(cfg *config.Config, creds *model.Credentials) int {
	store := identity.NewStore(identity.DefaultPath(cfg.IdentityPath))
	err := store.Save(model.Identity{
		DisplayName: creds.UserName,
		Email:       creds.UserEmail,
		AccessToken: creds.AccessToken,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not persist identity:", err)
		return 1
	}
	fmt.Printf("Signed in as %s <%s>\n", creds.UserName, creds.UserEmail)
	return 0
}

// identitySource shares the signed-in identity between the view goroutine
// and the send-command goroutines. Sign-out forgets the identity mid-run,
// so reads and the forgetting write are synchronized.
type identitySource struct {
	mu    sync.Mutex
	ident model.Identity
}

func newIdentitySource(ident model.Identity) *identitySource {
	return &identitySource{ident: ident}
}

func (s *identitySource) Current() model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ident
}

func (s *identitySource) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ident = model.Identity{}
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

// setupLogger configures the default slog logger for interactive runs. Logs
// go to the configured file; without one they are discarded rather than
// corrupting the terminal view. The returned func closes the log file.
func setupLogger(logLevel, logFile string) func() {
	var out io.Writer = io.Discard
	closer := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			out = f
			closer = func() { _ = f.Close() }
		}
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))
	slog.SetDefault(logger)
	return closer
}

// setupServerLogger writes JSON logs to stdout for non-interactive commands.
func setupServerLogger(logLevel string) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))
	slog.SetDefault(logger)
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
