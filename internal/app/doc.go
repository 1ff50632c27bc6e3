// Package app provides the orchestration layer for the shelf application.
//
// # Overview
//
// This package wires together configuration, the API client, the membership
// store, the toggle and reorder controllers, and the UI to create the
// complete shelf TUI experience. It serves as the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load configuration from ~/.config/shelf/config.toml
//  2. Apply command-line overrides (API base, token, refresh cadence)
//  3. Initialize the HTTP client for the Brickery API
//  4. Create the shared membership.Store and the two controllers
//  5. Perform one synchronous refresh so the first frame has data
//  6. Launch the background refresher goroutine
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read shelf config
//	       ├─────> brickery.NewClient()   Create HTTP client
//	       ├─────> membership.NewStore()  Shared state container
//	       ├─────> toggle/reorder         Mutation controllers
//	       ├─────> refresh()              Initial snapshot
//	       ├─────> StartRefresher()       Background reconciliation
//	       └─────> ui.Run()               Start TUI (blocks)
//
//	Background Refresher Loop:
//	┌─────────────────────────────────────────┐
//	│ StartRefresher() goroutine              │
//	│  ├─> FetchOwned()                       │
//	│  ├─> FetchWishlist()                    │
//	│  ├─> FetchMyLists()                     │
//	│  └─> store.SetCollections/SetLists      │
//	│      └─> UI wakes via store.Subscribe() │
//	└─────────────────────────────────────────┘
//
// # Reconciliation Behavior
//
// The refresher runs at a configurable cadence (default 30 seconds). Pending
// optimistic mutations in the store keep overriding refreshed snapshots, so
// a toggle that is still settling never flickers when a refresh lands.
//
// Fetch failures are recorded in the store's sync status and otherwise
// ignored; the previous data stays on screen and the UI can surface an
// offline notice after repeated failures. Anonymous sessions skip
// reconciliation entirely since every personal-collection endpoint would
// reject them.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file present but invalid
//   - API client initialization failure (malformed base URL)
//
// Recoverable errors (recorded, reconciliation continues):
//   - Periodic fetch failures and network timeouts
package app
