// Package ui implements the shelf terminal interface on Bubble Tea.
//
// # Overview
//
// The UI is a single Bubble Tea model. Every state transition runs on the
// event loop; concurrent work (background store changes, settling toggles
// and reorders, list detail fetches) arrives as messages, so the model
// never needs locks of its own.
//
// # Surfaces
//
//   - header: logo, sync health, busy spinner, transient error notices
//   - tiles: owned / wishlist / list counts for the account
//   - wishlist view (1): the ordered wishlist; J/K moves items
//   - lists view (2): the user's custom lists; enter opens one
//   - list detail: a list's ordered items; J/K moves, x removes
//   - quick add (a): type a set number, enter adds to the wishlist,
//     ctrl+o to the owned collection
//   - list menu (m): toggle the selected set's membership in Owned,
//     Wishlist, or any custom list, with checkmarks for current state
//
// # Message Flow
//
//	store.Subscribe() ──→ storeChangedMsg ──→ re-render, re-subscribe
//	toggle result chan ─→ toggleSettledMsg ─→ busy--, surface errors
//	reorder result chan → reorderSettledMsg → busy--, surface errors
//	FetchListDetail  ──→ listDetailMsg ────→ store.SetListItems
//
// Every interaction reads current state from the membership store at render
// time, so two surfaces showing the same set always agree, and optimistic
// changes appear in the same frame the key is pressed.
//
// # Error Surfacing
//
// Failed operations roll the store back (handled by the controllers); the
// UI's only job is the notice line. settleNotice maps the error taxonomy to
// short human messages and the next keypress clears them. Superseded
// results are dropped silently since a newer intent already owns the
// display.
package ui
