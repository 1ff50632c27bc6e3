package membership

import (
	"sort"
	"sync"
	"time"

	"github.com/brickery/shelf/internal/brickery"
)

// SyncStatus describes the health of background reconciliation fetches.
type SyncStatus struct {
	LastSync            time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple
// refresh cycles.
func (s SyncStatus) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the authoritative-as-known local view of membership: the last
// server snapshot overlaid with pending optimistic mutations. It is shared by
// every presentation surface so two widgets referencing the same set never
// disagree. All mutation goes through the controllers; surfaces only read.
type Store struct {
	mu  sync.RWMutex
	seq uint64

	owned       map[string]bool
	wishlist    []string
	lists       []brickery.ListSummary
	listItems   map[int64][]string
	listFetched map[int64]bool
	info        map[string]brickery.SetInfo

	// overlay maps each affected key to the newest mutation targeting it.
	// A pending mutation always overrides the snapshot it targets.
	overlay map[Key]*Mutation

	subs    map[int]chan struct{}
	nextSub int

	sync SyncStatus
}

// NewStore returns an empty store, ready for a session's worth of state.
func NewStore() *Store {
	return &Store{
		owned:       make(map[string]bool),
		listItems:   make(map[int64][]string),
		listFetched: make(map[int64]bool),
		info:        make(map[string]brickery.SetInfo),
		overlay:     make(map[Key]*Mutation),
		subs:        make(map[int]chan struct{}),
	}
}

// IsOwned reports the effective Owned membership for a set.
func (s *Store) IsOwned(setNum string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveLocked(Key{Target: TargetOwned, SetNum: setNum})
}

// IsWishlisted reports the effective Wishlist membership for a set.
func (s *Store) IsWishlisted(setNum string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveLocked(Key{Target: TargetWishlist, SetNum: setNum})
}

// Effective reports the membership value for an arbitrary key, combining the
// snapshot with any pending mutation for it.
func (s *Store) Effective(target Target, listID int64, setNum string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveLocked(Key{Target: target, ListID: listID, SetNum: setNum})
}

// ListsContaining returns the IDs of every known custom list whose effective
// membership includes the set, in summary order.
func (s *Store) ListsContaining(setNum string) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for _, summary := range s.lists {
		if s.effectiveLocked(Key{Target: TargetList, ListID: summary.ID, SetNum: setNum}) {
			ids = append(ids, summary.ID)
		}
	}
	return ids
}

// WishlistOrder returns the effective wishlist ordering: the snapshot order
// minus pending removals, with pending additions appended in the order the
// user made them.
func (s *Store) WishlistOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderLocked(Key{Target: TargetWishlist}, s.wishlist)
}

// ListOrder returns the effective ordering of a custom list. The second
// return is false until the list's items have been fetched.
func (s *Store) ListOrder(listID int64) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.listFetched[listID] {
		return nil, false
	}
	return s.orderLocked(Key{Target: TargetList, ListID: listID}, s.listItems[listID]), true
}

// ListItems returns the effective items of a fetched list with dense
// positions assigned from the current order.
func (s *Store) ListItems(listID int64) ([]brickery.ListItem, bool) {
	order, ok := s.ListOrder(listID)
	if !ok {
		return nil, false
	}
	items := make([]brickery.ListItem, len(order))
	for i, setNum := range order {
		items[i] = brickery.ListItem{SetNum: setNum, Position: i}
	}
	return items, true
}

// Summaries returns a copy of the known custom-list summaries.
func (s *Store) Summaries() []brickery.ListSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.lists) == 0 {
		return nil
	}
	dup := make([]brickery.ListSummary, len(s.lists))
	copy(dup, s.lists)
	return dup
}

// Counts returns the effective owned, wishlist, and list counts for the
// account summary tiles.
func (s *Store) Counts() (owned, wishlisted, lists int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned = len(s.owned)
	wishlisted = len(s.wishlist)
	for key, m := range s.overlay {
		desired := desiredFor(m, key)
		switch key.Target {
		case TargetOwned:
			if desired && !s.owned[key.SetNum] {
				owned++
			} else if !desired && s.owned[key.SetNum] {
				owned--
			}
		case TargetWishlist:
			in := contains(s.wishlist, key.SetNum)
			if desired && !in {
				wishlisted++
			} else if !desired && in {
				wishlisted--
			}
		}
	}
	return owned, wishlisted, len(s.lists)
}

// Sync returns the current reconciliation status.
func (s *Store) Sync() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sync
}

// ApplyOptimistic records a pending mutation for the given toggle and
// immediately updates the readable projection. Setting a system collection
// to true while the opposite one holds the set stages a companion clear in
// the same step, so both surfaces flip together and revert together.
func (s *Store) ApplyOptimistic(target Target, listID int64, setNum string, desired bool) *Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	key := Key{Target: target, ListID: listID, SetNum: setNum}
	m := &Mutation{
		seq:    s.seq,
		halves: []half{{key: key, desired: desired, prior: s.effectiveLocked(key)}},
	}

	if desired {
		var companion Key
		switch target {
		case TargetOwned:
			companion = Key{Target: TargetWishlist, SetNum: setNum}
		case TargetWishlist:
			companion = Key{Target: TargetOwned, SetNum: setNum}
		}
		if companion.SetNum != "" && s.effectiveLocked(companion) {
			m.halves = append(m.halves, half{key: companion, desired: false, prior: true})
		}
	}

	for _, h := range m.halves {
		s.overlay[h.key] = m
	}
	s.notifyLocked()
	return m
}

// Commit discards a pending mutation, folding its confirmed values into the
// server snapshot. If a newer mutation has since taken over a key, that
// key's overlay is left in place so the latest intent keeps winning reads.
func (s *Store) Commit(m *Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range m.halves {
		s.writeSnapshotLocked(h.key, h.desired)
		if s.overlay[h.key] == m {
			delete(s.overlay, h.key)
		}
	}
	s.notifyLocked()
}

// Rollback discards a pending mutation and restores the effective value
// captured at its creation, so the affected controls visibly snap back.
// Keys taken over by a newer mutation are left untouched.
func (s *Store) Rollback(m *Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range m.halves {
		if s.overlay[h.key] != m {
			continue
		}
		s.writeSnapshotLocked(h.key, h.prior)
		delete(s.overlay, h.key)
	}
	s.notifyLocked()
}

// ReplaceWishlistOrder swaps in a candidate wishlist ordering and returns the
// order it replaced, which the reorder controller retains for rollback.
func (s *Store) ReplaceWishlistOrder(order []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.wishlist
	s.wishlist = cloneStrings(order)
	s.notifyLocked()
	return prev
}

// ReplaceListOrder swaps in a candidate ordering for a fetched list and
// returns the order it replaced. It reports false for unfetched lists.
func (s *Store) ReplaceListOrder(listID int64, order []string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listFetched[listID] {
		return nil, false
	}
	prev := s.listItems[listID]
	s.listItems[listID] = cloneStrings(order)
	s.notifyLocked()
	return prev, true
}

// SetCollections replaces the owned and wishlist snapshots from a server
// fetch. Pending mutations keep overriding the refreshed values.
func (s *Store) SetCollections(owned, wishlist []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owned = make(map[string]bool, len(owned))
	for _, setNum := range owned {
		s.owned[setNum] = true
	}
	s.wishlist = cloneStrings(wishlist)
	s.notifyLocked()
}

// MergeSetInfo caches display metadata for sets. Entries accumulate across
// fetches; unknown sets simply render without names.
func (s *Store) MergeSetInfo(info map[string]brickery.SetInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for setNum, si := range info {
		s.info[setNum] = si
	}
	s.notifyLocked()
}

// SetInfoFor returns cached display metadata for a set, if known.
func (s *Store) SetInfoFor(setNum string) (brickery.SetInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	si, ok := s.info[setNum]
	return si, ok
}

// SetLists replaces the custom-list summaries from a server fetch.
func (s *Store) SetLists(summaries []brickery.ListSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = make([]brickery.ListSummary, len(summaries))
	copy(s.lists, summaries)
	s.notifyLocked()
}

// SetListItems replaces a list's ordered items from a server fetch and marks
// the list as fetched.
func (s *Store) SetListItems(listID int64, order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listItems[listID] = cloneStrings(order)
	s.listFetched[listID] = true
	s.notifyLocked()
}

// RecordSync notes the outcome of a reconciliation fetch. Failures keep the
// previous data and increment the offline counter.
func (s *Store) RecordSync(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sync.LastSync = time.Now()
	if err != nil {
		s.sync.LastError = err
		s.sync.ConsecutiveFailures++
		return
	}
	s.sync.LastError = nil
	s.sync.ConsecutiveFailures = 0
}

// Subscribe registers a change listener. The returned channel receives a
// coalesced signal after every visible change; the cancel function must be
// called when the listener goes away.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) effectiveLocked(key Key) bool {
	if m, ok := s.overlay[key]; ok {
		return desiredFor(m, key)
	}
	return s.snapshotHasLocked(key)
}

func (s *Store) snapshotHasLocked(key Key) bool {
	switch key.Target {
	case TargetOwned:
		return s.owned[key.SetNum]
	case TargetWishlist:
		return contains(s.wishlist, key.SetNum)
	default:
		return contains(s.listItems[key.ListID], key.SetNum)
	}
}

// writeSnapshotLocked applies a confirmed membership value to the snapshot.
// Orders stay dense by construction: additions append, removals splice.
func (s *Store) writeSnapshotLocked(key Key, present bool) {
	switch key.Target {
	case TargetOwned:
		if present {
			s.owned[key.SetNum] = true
		} else {
			delete(s.owned, key.SetNum)
		}
	case TargetWishlist:
		s.wishlist = setMembership(s.wishlist, key.SetNum, present)
	default:
		before := len(s.listItems[key.ListID])
		s.listItems[key.ListID] = setMembership(s.listItems[key.ListID], key.SetNum, present)
		if delta := len(s.listItems[key.ListID]) - before; delta != 0 {
			for i := range s.lists {
				if s.lists[i].ID == key.ListID {
					s.lists[i].ItemsCount += delta
				}
			}
		}
	}
}

// orderLocked applies the pending overlay to a snapshot ordering: removals
// drop out, additions append in mutation order.
func (s *Store) orderLocked(scope Key, snapshot []string) []string {
	type addition struct {
		seq    uint64
		setNum string
	}
	removed := make(map[string]bool)
	var added []addition

	for key, m := range s.overlay {
		if key.Target != scope.Target || key.ListID != scope.ListID {
			continue
		}
		if desiredFor(m, key) {
			if !contains(snapshot, key.SetNum) {
				added = append(added, addition{seq: m.seq, setNum: key.SetNum})
			}
		} else {
			removed[key.SetNum] = true
		}
	}

	out := make([]string, 0, len(snapshot)+len(added))
	for _, setNum := range snapshot {
		if !removed[setNum] {
			out = append(out, setNum)
		}
	}
	sort.Slice(added, func(a, b int) bool { return added[a].seq < added[b].seq })
	for _, a := range added {
		out = append(out, a.setNum)
	}
	return out
}

func desiredFor(m *Mutation, key Key) bool {
	for _, h := range m.halves {
		if h.key == key {
			return h.desired
		}
	}
	return false
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func setMembership(values []string, setNum string, present bool) []string {
	in := contains(values, setNum)
	switch {
	case present && !in:
		return append(values, setNum)
	case !present && in:
		out := values[:0]
		for _, v := range values {
			if v != setNum {
				out = append(out, v)
			}
		}
		return out
	default:
		return values
	}
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	dup := make([]string, len(values))
	copy(dup, values)
	return dup
}
