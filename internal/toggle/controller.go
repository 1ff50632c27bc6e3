package toggle

import (
	"context"
	"fmt"
	"sync"

	"github.com/brickery/shelf/internal/brickery"
	"github.com/brickery/shelf/internal/membership"
)

// Result reports the outcome of one toggle request.
type Result struct {
	Key     membership.Key
	Desired bool
	// Superseded means a newer toggle for the same key replaced this one
	// before it reached the network. The newer toggle carries the user's
	// intent; this result is informational and carries no error.
	Superseded bool
	Err        error
}

// Controller turns membership toggles into optimistic store updates backed by
// network requests. Requests for the same key are serialized; at most one is
// in flight with at most one queued behind it, and a newer queued toggle
// replaces an older one.
type Controller struct {
	gw    brickery.Gateway
	store *membership.Store

	mu      sync.Mutex
	flights map[membership.Key]*flight
}

type flight struct {
	queued *op
}

type op struct {
	ctx    context.Context
	m      *membership.Mutation
	result chan Result
}

// NewController wires a controller to its gateway and store.
func NewController(gw brickery.Gateway, store *membership.Store) *Controller {
	return &Controller{
		gw:      gw,
		store:   store,
		flights: make(map[membership.Key]*flight),
	}
}

// Toggle flips the effective membership of a set in the given target. The
// store is updated optimistically before any network I/O; the returned
// channel delivers exactly one Result once the request settles.
//
// Unauthenticated sessions fail immediately with brickery.ErrAuthRequired
// and no optimistic state is staged.
func (c *Controller) Toggle(ctx context.Context, target membership.Target, listID int64, setNum string) <-chan Result {
	result := make(chan Result, 1)
	key := membership.Key{Target: target, ListID: listID, SetNum: setNum}

	if !c.gw.Authenticated() {
		result <- Result{Key: key, Err: brickery.ErrAuthRequired}
		return result
	}
	if setNum == "" {
		result <- Result{Key: key, Err: fmt.Errorf("toggle: empty set number")}
		return result
	}

	desired := !c.store.Effective(target, listID, setNum)
	m := c.store.ApplyOptimistic(target, listID, setNum, desired)
	o := &op{ctx: ctx, m: m, result: result}

	c.mu.Lock()
	if f, ok := c.flights[key]; ok {
		// A request for this key is already in flight. Queue behind it,
		// displacing any older queued toggle.
		if f.queued != nil {
			displaced := f.queued
			// The displaced toggle never reaches the network. Unwind any
			// overlay halves it still owns; the primary key now belongs
			// to the newer mutation, but a staged companion half would
			// otherwise linger forever.
			c.store.Rollback(displaced.m)
			displaced.result <- Result{
				Key:        displaced.m.Key(),
				Desired:    displaced.m.Desired(),
				Superseded: true,
			}
		}
		f.queued = o
		c.mu.Unlock()
		return result
	}
	c.flights[key] = &flight{}
	c.mu.Unlock()

	go c.run(key, o)
	return result
}

// run issues the network request(s) for an op, settles local state, then
// drains anything queued for the same key before retiring the flight.
func (c *Controller) run(key membership.Key, o *op) {
	for {
		companion, claimed := c.claimCompanion(o.m)
		err := c.issue(o.ctx, o.m)
		if err != nil {
			c.store.Rollback(o.m)
		} else {
			c.store.Commit(o.m)
		}
		if claimed {
			c.releaseCompanion(companion)
		}
		o.result <- Result{
			Key:     o.m.Key(),
			Desired: o.m.Desired(),
			Err:     err,
		}

		c.mu.Lock()
		f := c.flights[key]
		if f == nil || f.queued == nil {
			delete(c.flights, key)
			c.mu.Unlock()
			return
		}
		o = f.queued
		f.queued = nil
		c.mu.Unlock()
	}
}

// claimCompanion reserves the opposite collection's key while a combined
// mutation's two requests are in flight, so a direct toggle on that key
// queues instead of racing the companion removal server-side. The claim is
// best effort: a key already in flight stays with its owner.
func (c *Controller) claimCompanion(m *membership.Mutation) (membership.Key, bool) {
	if !m.Combined() {
		return membership.Key{}, false
	}
	key := m.CompanionKey()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.flights[key]; busy {
		return membership.Key{}, false
	}
	c.flights[key] = &flight{}
	return key, true
}

// releaseCompanion retires a claimed companion key, handing the flight to
// any toggle that queued behind it in the meantime.
func (c *Controller) releaseCompanion(key membership.Key) {
	c.mu.Lock()
	f := c.flights[key]
	if f == nil || f.queued == nil {
		delete(c.flights, key)
		c.mu.Unlock()
		return
	}
	o := f.queued
	f.queued = nil
	c.mu.Unlock()

	go c.run(key, o)
}

// issue performs the request(s) a mutation requires. A combined mutation
// clears the opposite system collection first, then applies the primary
// change; a failure of either half fails the whole mutation so the store can
// revert both sides together.
func (c *Controller) issue(ctx context.Context, m *membership.Mutation) error {
	if m.Combined() {
		if err := c.send(ctx, m.CompanionKey(), false); err != nil {
			return err
		}
	}
	return c.send(ctx, m.Key(), m.Desired())
}

func (c *Controller) send(ctx context.Context, key membership.Key, desired bool) error {
	switch key.Target {
	case membership.TargetOwned:
		if desired {
			return c.gw.AddOwned(ctx, key.SetNum)
		}
		return c.gw.RemoveOwned(ctx, key.SetNum)
	case membership.TargetWishlist:
		if desired {
			return c.gw.AddWishlist(ctx, key.SetNum)
		}
		return c.gw.RemoveWishlist(ctx, key.SetNum)
	case membership.TargetList:
		if desired {
			return c.gw.AddListItem(ctx, key.ListID, key.SetNum)
		}
		return c.gw.RemoveListItem(ctx, key.ListID, key.SetNum)
	default:
		return fmt.Errorf("toggle: unknown target %v", key.Target)
	}
}
