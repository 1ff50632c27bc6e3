// Package toggle coordinates optimistic membership toggles.
//
// # Overview
//
// A toggle flips one membership fact: set X in collection Y. The controller
// applies the flip to the shared store immediately, issues the network
// request in the background, then commits on success or rolls back to what
// the user last saw on failure. The UI never blocks on the network.
//
// # Request Flow
//
//	Toggle(key)
//	    │
//	    ├── unauthenticated? ──→ fail fast, no optimistic state
//	    │
//	    ├── store.ApplyOptimistic(key, !effective)
//	    │
//	    ├── flight in progress for key?
//	    │       yes → queue (displacing any older queued toggle)
//	    │       no  → spawn flight goroutine
//	    │
//	    └── return result channel (buffered, one Result per call)
//
//	flight goroutine:
//	    issue request(s) → Commit / Rollback → deliver Result
//	    → pick up queued op, repeat → retire flight
//
// # Serialization
//
// Per key, at most one request is in flight and at most one toggle is
// queued. Rapid repeated presses collapse: a newer queued toggle displaces
// the older one, which resolves as Superseded; any overlay halves the
// displaced toggle still owns are unwound, since it will never reach the
// network. The displaced press had already been visually absorbed by the
// newer optimistic state, so no control flickers.
//
// Different keys proceed independently and concurrently.
//
// # Exclusivity
//
// A toggle that moves a set into Owned while it sits in Wishlist (or the
// reverse) arrives from the store as a combined mutation. The controller
// issues the companion removal first, then the primary addition. Either
// failure fails the whole mutation and the store reverts both collections
// together.
//
// While the combined requests run, the companion's key is claimed as a
// flight of its own, so a direct toggle on the opposite collection queues
// behind the removal instead of racing it on the server.
package toggle
