// Package membership provides the thread-safe local view of collection state.
//
// # Overview
//
// This package implements the shared store that every presentation surface
// reads membership facts from: which sets are owned, which are wishlisted,
// which custom lists hold them, and in what order. It is the coordination
// point where server snapshots, optimistic mutations, and reorder candidates
// meet before the UI renders.
//
// # Architecture
//
// The store combines two layers:
//
//	┌────────────────────────────────────────────────┐
//	│                    Store                       │
//	│                                                │
//	│  overlay: pending optimistic mutations         │  ← newest wins per key
//	│  ──────────────────────────────────────────    │
//	│  snapshot: last server-confirmed state         │  ← refreshed by app
//	│    owned set, wishlist order,                  │
//	│    list summaries, list item orders            │
//	└────────────────────────────────────────────────┘
//
// Reads consult the overlay first and fall back to the snapshot, so a
// pending change is visible the instant it is applied and a background
// refresh never makes an in-flight toggle flicker.
//
// # Mutation Lifecycle
//
// The toggle controller drives the overlay through three calls:
//
//	m := store.ApplyOptimistic(target, listID, setNum, desired)
//	// ... network request(s) ...
//	store.Commit(m)   // confirmed: fold desired values into the snapshot
//	store.Rollback(m) // failed: restore the values captured at creation
//
// Each mutation records, per affected key, both the desired value and the
// effective value at creation time. Rollback restores exactly what the user
// last saw, not an older server state.
//
// When a newer mutation takes over a key, the older mutation's overlay entry
// is replaced. A superseded mutation's Commit or Rollback leaves the overlay
// alone for that key, so the latest user intent always wins reads while the
// older request is still settling.
//
// # Exclusivity
//
// A set belongs to at most one of Owned and Wishlist. ApplyOptimistic
// enforces this locally: setting either collection to true while the other
// holds the set stages a companion half clearing the opposite collection,
// applied and reverted as one unit. The toggle controller issues the
// companion's network request alongside the primary one.
//
// # Concurrency Model
//
// A single sync.RWMutex guards everything. Writers are the controllers and
// the background refresher; readers are the UI surfaces. Locks are held only
// for in-memory work, never across network I/O.
//
// Subscribers get change notification through buffered channels of size one
// with non-blocking sends, so bursts of changes coalesce into a single wake.
//
// # Sync Status
//
// RecordSync tracks background reconciliation health. Failures keep the
// previous data and increment a consecutive-failure counter; two or more
// consecutive failures report the session as offline. A success resets the
// counter.
package membership
