package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/addresses"
	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/auth"
	"github.com/Mdhelaluddin3391/quickdash-go/cart"
	"github.com/Mdhelaluddin3391/quickdash-go/catalog"
	"github.com/Mdhelaluddin3391/quickdash-go/internal/config"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
	"github.com/Mdhelaluddin3391/quickdash-go/orders"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
	"github.com/Mdhelaluddin3391/quickdash-go/support"
	"github.com/Mdhelaluddin3391/quickdash-go/tracking"
)

const stateFileVar = "QUICKDASH_STATE_FILE"

// app wires the SDK together for one CLI invocation. currentView stands in
// for the browser's current path: it decides whether an unrecoverable auth
// failure redirects (private views) or reloads (public views).
type app struct {
	cfg       config.Config
	repo      *sessions.FileRepo
	store     *sessions.Store
	locations *location.Manager
	client    *api.Client
	auth      *auth.Service
	carts     *cart.Service
	catalog   *catalog.Service
	addresses *addresses.Service
	orders    *orders.Service
	tracker   *tracking.Tracker
	support   *support.Service
	watcher   *sessions.Watcher
	log       zerolog.Logger
}

// prompter answers the two blocking confirmations on stdin.
type prompter struct {
	in *bufio.Reader
}

func (p *prompter) confirm(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (p *prompter) ConfirmWarehouseMismatch(message string) bool {
	return p.confirm(message)
}

func (p *prompter) ConfirmClearCart(unavailable []string) bool {
	message := "Your cart items are from a different store."
	if len(unavailable) > 0 {
		message = fmt.Sprintf("%s and others are not available at this new location.", unavailable[0])
	}
	return p.confirm(message + "\nDo you want to clear your cart to shop here?")
}

func newApp(ctx context.Context, currentView string) (*app, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	cfg := config.NewProvider(config.WithLogger(logger)).Load(ctx)

	repo, err := sessions.NewFileRepo(stateFilePath())
	if err != nil {
		return nil, err
	}
	store, err := sessions.NewStore(repo, sessions.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	locations, err := location.NewManager(repo, location.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	ask := &prompter{in: bufio.NewReader(os.Stdin)}

	client, err := api.NewClient(cfg.APIBaseURL, store, locations,
		api.WithLogger(logger),
		api.WithConflictPrompter(ask),
		api.WithLoginRoute(cfg.LoginRoute),
		api.WithNavigation(
			func() string { return currentView },
			func(loginURL string) {
				fmt.Fprintf(os.Stderr, "Session expired. Log in again: quickdash login  (returns to %s)\n", loginURL)
			},
			func() {
				if err := repo.Reload(); err == nil {
					fmt.Fprintln(os.Stderr, "Session reset, state reloaded.")
				}
			},
		),
	)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		repo:      repo,
		store:     store,
		locations: locations,
		client:    client,
		log:       logger,
	}

	if a.auth, err = auth.NewService(client, store, locations, auth.WithLogger(logger)); err != nil {
		return nil, err
	}
	if a.carts, err = cart.NewService(client, store, cart.WithLogger(logger), cart.WithConflictPrompter(ask)); err != nil {
		return nil, err
	}
	if a.catalog, err = catalog.NewService(client); err != nil {
		return nil, err
	}
	if a.addresses, err = addresses.NewService(client, locations); err != nil {
		return nil, err
	}
	if a.orders, err = orders.NewService(client, a.carts, locations); err != nil {
		return nil, err
	}
	if a.tracker, err = tracking.NewTracker(client, cfg.WSBaseURL, tracking.WithLogger(logger)); err != nil {
		return nil, err
	}
	if a.support, err = support.NewService(client, repo, support.WithLogger(logger)); err != nil {
		return nil, err
	}

	// Cart revalidation on every location change, and a full state reload
	// when another process rewrites the shared state file.
	a.carts.BindLocationChanges(locations)
	a.watcher, err = sessions.NewWatcher(repo, func() {
		fmt.Fprintln(os.Stderr, "State changed in another process, reloaded.")
	}, sessions.WithWatcherLogger(logger))
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *app) close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
}

func stateFilePath() string {
	if path := os.Getenv(stateFileVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "quickdash-state.json"
	}
	return filepath.Join(home, ".quickdash", "state.json")
}
