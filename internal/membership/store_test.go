package membership

import (
	"errors"
	"reflect"
	"testing"

	"github.com/brickery/shelf/internal/brickery"
)

func TestStore_OptimisticOverlayOverridesSnapshot(t *testing.T) {
	s := NewStore()
	s.SetCollections([]string{"10305-1"}, []string{"21034-1"})

	if !s.IsOwned("10305-1") {
		t.Fatal("IsOwned(10305-1) = false, want true from snapshot")
	}
	if s.IsOwned("75192-1") {
		t.Fatal("IsOwned(75192-1) = true, want false")
	}

	m := s.ApplyOptimistic(TargetOwned, 0, "75192-1", true)
	if !s.IsOwned("75192-1") {
		t.Fatal("IsOwned(75192-1) = false after optimistic add, want true")
	}

	s.Commit(m)
	if !s.IsOwned("75192-1") {
		t.Fatal("IsOwned(75192-1) = false after commit, want true")
	}
	if len(s.overlay) != 0 {
		t.Fatalf("overlay has %d entries after commit, want 0", len(s.overlay))
	}
}

func TestStore_RollbackRestoresPriorValue(t *testing.T) {
	s := NewStore()
	s.SetCollections(nil, []string{"21034-1"})

	m := s.ApplyOptimistic(TargetWishlist, 0, "21034-1", false)
	if s.IsWishlisted("21034-1") {
		t.Fatal("IsWishlisted = true after optimistic remove, want false")
	}

	s.Rollback(m)
	if !s.IsWishlisted("21034-1") {
		t.Fatal("IsWishlisted = false after rollback, want true")
	}
	if got := s.WishlistOrder(); !reflect.DeepEqual(got, []string{"21034-1"}) {
		t.Fatalf("WishlistOrder = %v after rollback, want [21034-1]", got)
	}
}

func TestStore_NewerMutationWinsOverSupersededOutcome(t *testing.T) {
	s := NewStore()
	s.SetCollections(nil, nil)

	// User toggles on, then immediately toggles off before the first
	// request settles. The second intent must win no matter how the first
	// request resolves.
	first := s.ApplyOptimistic(TargetOwned, 0, "10305-1", true)
	second := s.ApplyOptimistic(TargetOwned, 0, "10305-1", false)

	s.Rollback(first)
	if s.IsOwned("10305-1") {
		t.Fatal("superseded rollback disturbed the newer intent")
	}

	s.Commit(second)
	if s.IsOwned("10305-1") {
		t.Fatal("IsOwned = true after committing remove, want false")
	}
}

func TestStore_ExclusivityStagesCompanionClear(t *testing.T) {
	s := NewStore()
	s.SetCollections(nil, []string{"10305-1"})

	m := s.ApplyOptimistic(TargetOwned, 0, "10305-1", true)
	if !m.Combined() {
		t.Fatal("Combined() = false, want companion half for wishlisted set")
	}
	if got := m.CompanionKey(); got != (Key{Target: TargetWishlist, SetNum: "10305-1"}) {
		t.Fatalf("CompanionKey = %+v, want wishlist key", got)
	}
	if !s.IsOwned("10305-1") || s.IsWishlisted("10305-1") {
		t.Fatal("optimistic state should be owned and not wishlisted")
	}

	// Failure reverts both halves together.
	s.Rollback(m)
	if s.IsOwned("10305-1") || !s.IsWishlisted("10305-1") {
		t.Fatal("rollback should restore wishlisted-only state")
	}
}

func TestStore_NoCompanionWhenOppositeEmpty(t *testing.T) {
	s := NewStore()
	s.SetCollections(nil, nil)

	m := s.ApplyOptimistic(TargetOwned, 0, "10305-1", true)
	if m.Combined() {
		t.Fatal("Combined() = true, want single half when wishlist empty")
	}
}

func TestStore_WishlistOrderReflectsOverlay(t *testing.T) {
	s := NewStore()
	s.SetCollections(nil, []string{"a-1", "b-1", "c-1"})

	mRemove := s.ApplyOptimistic(TargetWishlist, 0, "b-1", false)
	mAdd := s.ApplyOptimistic(TargetWishlist, 0, "d-1", true)

	if got := s.WishlistOrder(); !reflect.DeepEqual(got, []string{"a-1", "c-1", "d-1"}) {
		t.Fatalf("WishlistOrder = %v, want [a-1 c-1 d-1]", got)
	}

	s.Commit(mRemove)
	s.Commit(mAdd)
	if got := s.WishlistOrder(); !reflect.DeepEqual(got, []string{"a-1", "c-1", "d-1"}) {
		t.Fatalf("WishlistOrder after commits = %v, want [a-1 c-1 d-1]", got)
	}
}

func TestStore_ReplaceWishlistOrderReturnsPrevious(t *testing.T) {
	s := NewStore()
	s.SetCollections(nil, []string{"a-1", "b-1"})

	prev := s.ReplaceWishlistOrder([]string{"b-1", "a-1"})
	if !reflect.DeepEqual(prev, []string{"a-1", "b-1"}) {
		t.Fatalf("prev = %v, want original order", prev)
	}
	if got := s.WishlistOrder(); !reflect.DeepEqual(got, []string{"b-1", "a-1"}) {
		t.Fatalf("WishlistOrder = %v, want swapped order", got)
	}

	// Rollback path: restore the returned previous order.
	s.ReplaceWishlistOrder(prev)
	if got := s.WishlistOrder(); !reflect.DeepEqual(got, []string{"a-1", "b-1"}) {
		t.Fatalf("WishlistOrder = %v after restore, want original", got)
	}
}

func TestStore_ListOrderRequiresFetch(t *testing.T) {
	s := NewStore()

	if _, ok := s.ListOrder(7); ok {
		t.Fatal("ListOrder reported ok before any fetch")
	}
	if _, ok := s.ReplaceListOrder(7, []string{"a-1"}); ok {
		t.Fatal("ReplaceListOrder reported ok before any fetch")
	}

	s.SetListItems(7, []string{"a-1", "b-1"})
	order, ok := s.ListOrder(7)
	if !ok || !reflect.DeepEqual(order, []string{"a-1", "b-1"}) {
		t.Fatalf("ListOrder = %v ok=%v, want fetched order", order, ok)
	}

	items, ok := s.ListItems(7)
	if !ok || len(items) != 2 || items[1].Position != 1 {
		t.Fatalf("ListItems = %v ok=%v, want dense positions", items, ok)
	}
}

func TestStore_CommitAdjustsListCount(t *testing.T) {
	s := NewStore()
	s.SetLists([]brickery.ListSummary{{ID: 7, Title: "Modulars", ItemsCount: 2}})
	s.SetListItems(7, []string{"a-1", "b-1"})

	m := s.ApplyOptimistic(TargetList, 7, "c-1", true)
	s.Commit(m)

	summaries := s.Summaries()
	if len(summaries) != 1 || summaries[0].ItemsCount != 3 {
		t.Fatalf("Summaries = %+v, want ItemsCount 3", summaries)
	}
	if got := s.ListsContaining("c-1"); !reflect.DeepEqual(got, []int64{7}) {
		t.Fatalf("ListsContaining = %v, want [7]", got)
	}
}

func TestStore_CountsIncludePending(t *testing.T) {
	s := NewStore()
	s.SetCollections([]string{"a-1"}, []string{"b-1"})
	s.SetLists([]brickery.ListSummary{{ID: 1}, {ID: 2}})

	s.ApplyOptimistic(TargetOwned, 0, "c-1", true)
	s.ApplyOptimistic(TargetWishlist, 0, "b-1", false)

	owned, wishlisted, lists := s.Counts()
	if owned != 2 || wishlisted != 0 || lists != 2 {
		t.Fatalf("Counts = (%d, %d, %d), want (2, 0, 2)", owned, wishlisted, lists)
	}
}

func TestStore_RecordSyncFailureSemantics(t *testing.T) {
	s := NewStore()
	s.SetCollections([]string{"a-1"}, nil)

	if s.Sync().IsOffline() {
		t.Fatal("IsOffline() = true with no failures")
	}

	s.RecordSync(errors.New("fail 1"))
	if st := s.Sync(); st.ConsecutiveFailures != 1 || st.IsOffline() {
		t.Fatalf("after one failure: %+v, want 1 failure and online", st)
	}
	if !s.IsOwned("a-1") {
		t.Fatal("failure should keep previous data")
	}

	s.RecordSync(errors.New("fail 2"))
	if st := s.Sync(); !st.IsOffline() {
		t.Fatalf("after two failures: %+v, want offline", st)
	}

	s.RecordSync(nil)
	if st := s.Sync(); st.ConsecutiveFailures != 0 || st.LastError != nil || st.IsOffline() {
		t.Fatalf("after success: %+v, want reset", st)
	}
}

func TestStore_SubscribeCoalescesNotifications(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.SetCollections([]string{"a-1"}, nil)
	s.ApplyOptimistic(TargetOwned, 0, "b-1", true)

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending notification after changes")
	}

	// Both changes coalesced into one signal; channel is now drained.
	select {
	case <-ch:
		t.Fatal("expected notifications to coalesce into one signal")
	default:
	}

	cancel()
	s.SetCollections(nil, nil)
	select {
	case <-ch:
		t.Fatal("cancelled subscriber should not be notified")
	default:
	}
}
