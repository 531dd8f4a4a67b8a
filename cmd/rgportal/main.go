package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/playsafe/rgportal/internal/auth"
	"github.com/playsafe/rgportal/internal/browser"
	"github.com/playsafe/rgportal/internal/config"
	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/internal/session"
	"github.com/playsafe/rgportal/internal/storage"
	"github.com/playsafe/rgportal/internal/tui"
	"github.com/playsafe/rgportal/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Println("rgportal " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	ctx := context.Background()
	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore() //nolint:errcheck

	store := session.New(ctx, kv, logger)
	if err := applyLanguagePreference(ctx, kv, store, cfg.Language); err != nil {
		logger.Warn("could not store language preference", "error", err)
	}
	c := newClient(cfg, store, logger)

	if len(args) > 0 {
		switch args[0] {
		case "logout":
			return runLogout(ctx, store, c)
		case "status":
			printStatus(os.Stdout, statusFrom(store, time.Now()))
			return nil
		case "support":
			return openSupport(cfg.SupportURL)
		default:
			return fmt.Errorf("unknown command %q, run rgportal help", args[0])
		}
	}

	return runTUI(cfg, store, c, logger)
}

// newLogger writes JSON logs to the state dir. The TUI owns stdout.
func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(cfg.StateDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := newJSONLogger(f, cfg.SlogLevel())
	slog.SetDefault(logger)
	return logger, f.Close, nil
}

func newJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).With("app", "rgportal", "version", version)
}

// openStore picks Redis when RG_REDIS_URL is set, otherwise the state file.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, func() error, error) {
	if cfg.RedisURL != "" {
		r, err := storage.DialRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session storage: redis", "prefix", cfg.RedisPrefix)
		return r, r.Close, nil
	}
	f, err := storage.NewFile(cfg.StatePath(), logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("session storage: file", "path", f.Path())
	return f, func() error { return nil }, nil
}

// applyLanguagePreference seeds the stored language from RG_LANGUAGE the first
// time only; a choice made in the UI wins afterwards.
func applyLanguagePreference(ctx context.Context, kv storage.Store, store *session.Store, lang string) error {
	if lang == "" {
		return nil
	}
	_, ok, err := kv.Get(ctx, session.KeyLanguage)
	if err != nil {
		return fmt.Errorf("read language: %w", err)
	}
	if ok {
		return nil
	}
	return store.SetLanguage(ctx, lang)
}

// newClient wires the API client to the session. A 401 anywhere clears the
// local session and the TUI drops back to login.
func newClient(cfg *config.Config, store *session.Store, logger *slog.Logger) *client.Client {
	return client.New(cfg.APIBaseURL, store,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithUnauthorizedHandler(func() {
			logger.Warn("backend rejected token, clearing session")
			store.Clear(context.Background())
		}),
	)
}

func runTUI(cfg *config.Config, store *session.Store, c *client.Client, logger *slog.Logger) error {
	service := limits.NewService(c, store, logger)
	flow := auth.NewFlow(c, store, cfg.IsDevelopment())

	app := tui.NewApp(tui.Deps{
		Session:      store,
		Flow:         flow,
		Limits:       service,
		History:      c,
		RemoteLogout: c.Logout,
		SupportURL:   cfg.SupportURL,
		Version:      version,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	unsubscribe := store.Subscribe(func(st session.State) {
		p.Send(tui.SessionChanged(st))
	})
	defer unsubscribe()

	logger.Info("tui started", "authenticated", store.IsAuthenticated())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	printReminder()
	return nil
}

func runLogout(ctx context.Context, store *session.Store, c *client.Client) error {
	if !store.IsAuthenticated() {
		fmt.Println("Already logged out.")
		return nil
	}
	store.Logout(ctx, c.Logout)
	fmt.Println("Logged out.")
	return nil
}

func openSupport(url string) error {
	if err := browser.Open(url); err != nil {
		fmt.Println(url)
	}
	return nil
}
