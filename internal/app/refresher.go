package app

import (
	"context"
	"time"

	"github.com/brickery/shelf/internal/brickery"
	"github.com/brickery/shelf/internal/membership"
)

const defaultRefreshInterval = 30 * time.Second

// StartRefresher launches a background goroutine that reconciles the store
// with the server at a fixed cadence. It returns immediately.
func StartRefresher(ctx context.Context, store *membership.Store, gw brickery.Gateway, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			refresh(ctx, store, gw)
		}
	}()
}

// refresh pulls fresh collection snapshots into the store. Pending
// optimistic mutations keep overriding whatever the fetches bring back, so
// an in-flight toggle never flickers during a refresh.
func refresh(ctx context.Context, store *membership.Store, gw brickery.Gateway) {
	if !gw.Authenticated() {
		return
	}

	owned, err := gw.FetchOwned(ctx)
	if err != nil {
		store.RecordSync(err)
		return
	}
	wishlist, err := gw.FetchWishlist(ctx)
	if err != nil {
		store.RecordSync(err)
		return
	}
	summaries, err := gw.FetchMyLists(ctx)
	if err != nil {
		store.RecordSync(err)
		return
	}

	info := make(map[string]brickery.SetInfo)
	ownedNums := make([]string, 0, len(owned))
	for _, item := range owned {
		setNum := brickery.CanonicalSetNum(item.SetNum)
		ownedNums = append(ownedNums, setNum)
		if item.SetInfo != (brickery.SetInfo{}) {
			info[setNum] = item.SetInfo
		}
	}
	wishlistNums := make([]string, 0, len(wishlist))
	for _, item := range wishlist {
		setNum := brickery.CanonicalSetNum(item.SetNum)
		wishlistNums = append(wishlistNums, setNum)
		if item.SetInfo != (brickery.SetInfo{}) {
			info[setNum] = item.SetInfo
		}
	}

	store.SetCollections(ownedNums, wishlistNums)
	store.SetLists(summaries)
	if len(info) > 0 {
		store.MergeSetInfo(info)
	}
	store.RecordSync(nil)
}
