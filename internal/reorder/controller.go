package reorder

import (
	"context"
	"fmt"
	"sync"

	"github.com/brickery/shelf/internal/brickery"
	"github.com/brickery/shelf/internal/membership"
)

// ListRef names an orderable list: the wishlist or a custom list by ID.
type ListRef struct {
	Wishlist bool
	ID       int64
}

func (r ListRef) String() string {
	if r.Wishlist {
		return "wishlist"
	}
	return fmt.Sprintf("list %d", r.ID)
}

// Result reports the outcome of one reorder request.
type Result struct {
	Ref   ListRef
	Order []string
	// Superseded means a newer ordering for the same list replaced this one
	// before it was persisted. The newer ordering subsumes this one; no
	// error is carried.
	Superseded bool
	Err        error
}

// Controller persists user-driven orderings. Per list, at most one save is
// in flight and at most one candidate ordering waits behind it; a newer
// candidate replaces an older waiting one. The store shows every candidate
// immediately and snaps back to the last server-confirmed order on failure.
type Controller struct {
	gw    brickery.Gateway
	store *membership.Store

	mu       sync.Mutex
	sessions map[ListRef]*session
}

// session tracks the persistence state of one list's ordering.
type session struct {
	saving bool
	queued *op
	// confirmed is the last ordering the server acknowledged, used as the
	// rollback point when a save fails.
	confirmed []string
}

type op struct {
	ctx    context.Context
	order  []string
	result chan Result
}

// NewController wires a controller to its gateway and store.
func NewController(gw brickery.Gateway, store *membership.Store) *Controller {
	return &Controller{
		gw:       gw,
		store:    store,
		sessions: make(map[ListRef]*session),
	}
}

// Reorder applies a candidate ordering to the store immediately and persists
// it in the background. The returned channel delivers exactly one Result.
//
// While a save is in flight, further candidates queue; only the newest
// queued candidate is ever persisted, and displaced candidates resolve as
// Superseded.
func (c *Controller) Reorder(ctx context.Context, ref ListRef, order []string) <-chan Result {
	result := make(chan Result, 1)

	if !c.gw.Authenticated() {
		result <- Result{Ref: ref, Order: order, Err: brickery.ErrAuthRequired}
		return result
	}

	o := &op{ctx: ctx, order: cloneOrder(order), result: result}

	// The store apply and the session update happen under one lock so a
	// failing save can never interleave its snapback between them.
	c.mu.Lock()
	prev, ok := c.apply(ref, order)
	if !ok {
		c.mu.Unlock()
		result <- Result{Ref: ref, Order: order, Err: fmt.Errorf("reorder %s: items not loaded", ref)}
		return result
	}
	sess := c.sessions[ref]
	if sess == nil {
		sess = &session{confirmed: prev}
		c.sessions[ref] = sess
	}
	if sess.saving {
		if sess.queued != nil {
			displaced := sess.queued
			displaced.result <- Result{
				Ref:        ref,
				Order:      displaced.order,
				Superseded: true,
			}
		}
		sess.queued = o
		c.mu.Unlock()
		return result
	}
	sess.saving = true
	c.mu.Unlock()

	go c.run(ref, o)
	return result
}

// Confirmed returns the last server-acknowledged ordering for a list, if a
// reorder session exists for it.
func (c *Controller) Confirmed(ref ListRef) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess := c.sessions[ref]
	if sess == nil {
		return nil, false
	}
	return cloneOrder(sess.confirmed), true
}

// run persists candidate orderings for one list until none remain queued.
func (c *Controller) run(ref ListRef, o *op) {
	for {
		err := c.save(o.ctx, ref, o.order)

		c.mu.Lock()
		sess := c.sessions[ref]
		if err == nil {
			sess.confirmed = o.order
		}
		next := sess.queued
		sess.queued = nil
		if err != nil && next == nil {
			// No newer candidate is waiting; snap the visible order back
			// to the last server-confirmed state. This happens before the
			// flight retires and under the same lock Reorder applies
			// candidates under, so a reorder racing the retirement either
			// queues behind this flight or lands after the snapback.
			c.apply(ref, cloneOrder(sess.confirmed))
		}
		if next == nil {
			sess.saving = false
		}
		c.mu.Unlock()

		o.result <- Result{Ref: ref, Order: o.order, Err: err}

		if next == nil {
			return
		}
		o = next
	}
}

func (c *Controller) save(ctx context.Context, ref ListRef, order []string) error {
	if ref.Wishlist {
		return c.gw.SaveWishlistOrder(ctx, order)
	}
	return c.gw.SaveListOrder(ctx, ref.ID, order)
}

// apply swaps the visible ordering in the store and returns what it replaced.
// Callers hold c.mu, which serializes candidate applies against snapbacks.
func (c *Controller) apply(ref ListRef, order []string) ([]string, bool) {
	if ref.Wishlist {
		return c.store.ReplaceWishlistOrder(order), true
	}
	return c.store.ReplaceListOrder(ref.ID, order)
}

func cloneOrder(order []string) []string {
	if len(order) == 0 {
		return nil
	}
	dup := make([]string, len(order))
	copy(dup, order)
	return dup
}
