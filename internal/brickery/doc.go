// Package brickery provides an HTTP client for the Brickery collections API.
//
// # Overview
//
// The package is the only place in shelf that performs network I/O. It
// translates collection intents (add/remove a set, replace an ordering,
// fetch snapshots) into authenticated REST calls and normalizes responses
// and errors into one canonical shape, so nothing downstream deals with
// transport concerns or server field-name variants.
//
// # Files
//
//   - client.go: the Client, the Gateway interface, request handling
//   - types.go:  response structs and decode-time normalization
//   - errors.go: APIError taxonomy and the idempotent-conflict contract
//   - setnum.go: set-number canonicalization helpers
//
// # Idempotency contract
//
// Membership mutations are idempotent from the caller's point of view:
//
//   - adding a set that is already a member returns 409, swallowed as success
//   - removing a set that is already absent returns 404, swallowed as success
//
// Both responses confirm that the desired end state holds, which is what lets
// a double-fired toggle resolve without surfacing an error.
//
// # Error taxonomy
//
// Every non-2xx response becomes an *APIError carrying the status code, a
// Kind (auth, forbidden, not-found, conflict, validation, transient), and the
// server's detail message. Network-level failures are KindTransient. A
// missing token short-circuits to ErrAuthRequired before any request is
// built; no optimistic state should ever be staged for an unauthenticated
// call.
//
// # Normalization
//
// Three server quirks are absorbed at the decode boundary:
//
//   - list items arrive as plain strings or as objects; both become ListItem
//     with a dense zero-based Position after normalizeItems
//   - inline set metadata spells its image URL three different ways; SetInfo
//     exposes exactly one ImageURL
//   - set numbers are accepted bare ("10305") or suffixed ("10305-1");
//     CanonicalSetNum and BaseSetNum convert between the forms the various
//     endpoints expect
//
// # Design notes
//
// The client performs no retries and owns no rollback policy; failures
// propagate to the controllers, which decide what happens to local state.
// The Client is safe for concurrent use.
package brickery
