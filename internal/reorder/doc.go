// Package reorder persists user-driven list orderings.
//
// # Overview
//
// Moving an item produces a full candidate ordering for its list. The
// controller shows the candidate immediately through the shared store and
// saves it in the background with a single whole-order PUT, so the server
// never sees a partially moved list.
//
// # Persistence Flow
//
//	Reorder(ref, order)
//	    │
//	    ├── store shows the candidate immediately
//	    │
//	    ├── save in flight for this list?
//	    │       yes → queue (displacing any older waiting candidate)
//	    │       no  → spawn save goroutine
//	    │
//	    └── return result channel (buffered, one Result per call)
//
// Per list, at most one save is in flight and at most one candidate waits
// behind it. A burst of moves collapses to two requests: the one already in
// flight and one carrying the final ordering. Displaced candidates resolve
// as Superseded; the newest ordering subsumes them.
//
// # Failure Handling
//
// Each session remembers the last server-confirmed ordering. When a save
// fails and no newer candidate is waiting, the visible order snaps back to
// that confirmed state rather than to an arbitrary intermediate one. When a
// newer candidate is waiting, the failure is reported but the display keeps
// showing the newer candidate, which is about to be persisted anyway.
//
// The snapback runs before the flight retires, under the same lock that
// applies candidates, so a reorder racing a failed save either queues behind
// the flight or lands after the snapback; the newest candidate always wins.
//
// Orderings for different lists persist independently.
package reorder
