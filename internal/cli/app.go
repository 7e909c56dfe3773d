package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/KaushikNagaraj77/oruma-go/internal/api"
	"github.com/KaushikNagaraj77/oruma-go/internal/config"
	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
	"github.com/KaushikNagaraj77/oruma-go/internal/session"
	"github.com/KaushikNagaraj77/oruma-go/internal/state"
	"github.com/KaushikNagaraj77/oruma-go/internal/store"
	"github.com/KaushikNagaraj77/oruma-go/internal/university"
)

// app is the composition root: it owns the store, the session gate, the
// realtime channel and the API clients, and builds feature containers on
// demand. The channel is an injected dependency of the containers, not a
// global.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	store      *store.Store
	session    *session.Manager
	channel    *realtime.Channel
	client     *api.Client
	university *university.Client
}

func newApp() (*app, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: st}

	// The REST client and the session gate reference each other: the client
	// attaches the gate's token, the gate refreshes through the client. The
	// indirection below breaks the construction cycle.
	a.client = api.NewClient(cfg.APIURL, api.TokenSourceFunc(func() string {
		if a.session == nil {
			return ""
		}
		return a.session.AccessToken()
	}))
	a.session = session.NewManager(api.NewAuthService(a.client), st, cfg.RefreshThreshold, logger)
	a.channel = realtime.NewChannel(cfg.RealtimeURL, a.session, logger)
	a.session.OnTeardown(func() { a.channel.Close() })
	a.university = university.NewClient(cfg.UniversityAPIURL, cfg.UniversityTimeout, st, logger)

	return a, nil
}

func (a *app) close() {
	a.channel.Close()
	a.session.Close()
	a.store.Close()
}

// requireSession restores a persisted session and fails when none exists.
func (a *app) requireSession(ctx context.Context) error {
	ok, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not logged in, run `oruma login` first")
	}
	return nil
}

func (a *app) feed() *state.Feed {
	return state.NewFeed(api.NewPostsService(a.client), a.channel, a.session.UserID(),
		a.cfg.PageSize, a.cfg.SearchDebounce, a.logger)
}

func (a *app) marketplace() *state.Marketplace {
	return state.NewMarketplace(api.NewMarketplaceService(a.client),
		a.cfg.PageSize, a.cfg.SearchDebounce, a.logger)
}

func (a *app) events() *state.Events {
	return state.NewEvents(api.NewEventsService(a.client),
		a.cfg.PageSize, a.cfg.SearchDebounce, a.logger)
}

func (a *app) messaging() *state.Messaging {
	return state.NewMessaging(api.NewMessagingService(a.client), a.channel,
		a.session.UserID(), a.cfg.PageSize, a.logger)
}
