package app

import (
	"context"
	"fmt"
	"time"

	"github.com/brickery/shelf/internal/brickery"
	"github.com/brickery/shelf/internal/config"
	"github.com/brickery/shelf/internal/membership"
	"github.com/brickery/shelf/internal/reorder"
	"github.com/brickery/shelf/internal/toggle"
	"github.com/brickery/shelf/internal/ui"
)

// Options configure the shelf application.
type Options struct {
	ConfigPath   string
	APIBase      string // overrides the config file when set
	Token        string // overrides the config file when set
	RefreshEvery int    // seconds; zero uses the config value
}

// Run boots the shelf TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIBase != "" {
		cfg.APIBase = opts.APIBase
	}
	if opts.Token != "" {
		cfg.Token = opts.Token
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshInterval = time.Duration(opts.RefreshEvery) * time.Second
	}

	client, err := brickery.NewClient(cfg.APIBase, cfg.Token)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := membership.NewStore()
	toggles := toggle.NewController(client, store)
	reorders := reorder.NewController(client, store)

	// Populate the store before the UI draws its first frame, then keep it
	// reconciled in the background.
	refresh(ctx, store, client)
	StartRefresher(ctx, store, client, cfg.RefreshInterval)

	return ui.Run(ui.Options{
		Context:  ctx,
		Gateway:  client,
		Store:    store,
		Toggles:  toggles,
		Reorders: reorders,
	})
}
