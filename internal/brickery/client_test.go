package brickery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != "127.0.0.1:8000" {
		t.Fatalf("host = %q, want 127.0.0.1:8000", u.Host)
	}

	u, err = parseBaseURL("brickery.example.com")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "brickery.example.com" {
		t.Fatalf("url = %q, want scheme prefixed", u.String())
	}

	u, err = parseBaseURL("https://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchesCollectionsAndSendsAuth(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/me/owned":
			_, _ = io.WriteString(w, `[{"set_num":"10305-1","type":"owned","name":"Castle","year":2022,"img_url":"http://img/castle.jpg"}]`)
		case "/me/wishlist":
			_, _ = io.WriteString(w, `[{"set_num":"21034-1","type":"wishlist","image_url":"http://img/london.jpg"}]`)
		case "/lists/me":
			_, _ = io.WriteString(w, `[{"id":7,"title":"Modulars","owner":"alice","is_public":true,"items_count":2}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "fake-token-for-alice")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	owned, err := c.FetchOwned(ctx)
	if err != nil {
		t.Fatalf("FetchOwned returned error: %v", err)
	}
	if len(owned) != 1 || owned[0].SetNum != "10305-1" || owned[0].Name != "Castle" {
		t.Fatalf("FetchOwned = %#v, want castle entry", owned)
	}
	if owned[0].ImageURL != "http://img/castle.jpg" {
		t.Fatalf("ImageURL = %q, want img_url variant normalized", owned[0].ImageURL)
	}

	wishlist, err := c.FetchWishlist(ctx)
	if err != nil {
		t.Fatalf("FetchWishlist returned error: %v", err)
	}
	if len(wishlist) != 1 || wishlist[0].ImageURL != "http://img/london.jpg" {
		t.Fatalf("FetchWishlist = %#v, want image_url variant normalized", wishlist)
	}

	lists, err := c.FetchMyLists(ctx)
	if err != nil {
		t.Fatalf("FetchMyLists returned error: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != 7 || lists[0].ItemsCount != 2 {
		t.Fatalf("FetchMyLists = %#v, want one summary", lists)
	}

	if !strings.HasPrefix(gotUserAgent, "shelf/") {
		t.Fatalf("User-Agent = %q, want shelf/*", gotUserAgent)
	}
	if gotAuth != "Bearer fake-token-for-alice" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestClient_AddSwallowsConflict(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/owned" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"detail":"Set already in collection"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	// Bare set number is canonicalized in the payload; the 409 confirms the
	// desired end state and is not an error.
	if err := c.AddOwned(context.Background(), "10305"); err != nil {
		t.Fatalf("AddOwned returned error: %v, want conflict swallowed", err)
	}
	if gotBody["set_num"] != "10305-1" {
		t.Fatalf("payload set_num = %q, want canonical form", gotBody["set_num"])
	}
}

func TestClient_RemoveSwallowsNotFound(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Set not in collection"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if err := c.RemoveWishlist(context.Background(), "21034-1"); err != nil {
		t.Fatalf("RemoveWishlist returned error: %v, want not-found swallowed", err)
	}
	if gotPath != "/collections/wishlist/21034-1" {
		t.Fatalf("path = %q, want /collections/wishlist/21034-1", gotPath)
	}

	if err := c.RemoveListItem(context.Background(), 7, "21034-1"); err != nil {
		t.Fatalf("RemoveListItem returned error: %v, want not-found swallowed", err)
	}
	if gotPath != "/lists/7/items/21034-1" {
		t.Fatalf("path = %q, want /lists/7/items/21034-1", gotPath)
	}
}

func TestClient_OtherStatusesStillFail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"detail":"Not your list"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = c.AddListItem(context.Background(), 7, "10305-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("AddListItem error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindForbidden || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("APIError = %+v, want forbidden 403", apiErr)
	}
	if apiErr.Message != "Not your list" {
		t.Fatalf("Message = %q, want detail extracted", apiErr.Message)
	}
	if apiErr.Retryable() {
		t.Fatal("forbidden should not be retryable")
	}
}

func TestClient_OrderPayloads(t *testing.T) {
	t.Parallel()

	bodies := map[string][]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			SetNums []string `json:"set_nums"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		bodies[r.URL.Path] = payload.SetNums
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	// The wishlist order endpoint expects base numbers, the list order
	// endpoint canonical ones.
	if err := c.SaveWishlistOrder(context.Background(), []string{"10305-1", "21034-1"}); err != nil {
		t.Fatalf("SaveWishlistOrder returned error: %v", err)
	}
	got := bodies["/collections/wishlist/order"]
	if len(got) != 2 || got[0] != "10305" || got[1] != "21034" {
		t.Fatalf("wishlist order payload = %v, want base numbers", got)
	}

	if err := c.SaveListOrder(context.Background(), 7, []string{"10305", "21034-1"}); err != nil {
		t.Fatalf("SaveListOrder returned error: %v", err)
	}
	got = bodies["/lists/7/order"]
	if len(got) != 2 || got[0] != "10305-1" || got[1] != "21034-1" {
		t.Fatalf("list order payload = %v, want canonical numbers", got)
	}
}

func TestClient_MissingTokenFailsLocally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the network without a token")
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.Authenticated() {
		t.Fatal("Authenticated() = true, want false without token")
	}

	if _, err := c.FetchOwned(context.Background()); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("FetchOwned error = %v, want ErrAuthRequired", err)
	}
	if err := c.AddOwned(context.Background(), "10305-1"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("AddOwned error = %v, want ErrAuthRequired", err)
	}
}

func TestClient_NetworkFailureIsTransient(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", "token")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchOwned(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("FetchOwned error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindTransient || !apiErr.Retryable() {
		t.Fatalf("APIError = %+v, want retryable transient", apiErr)
	}
}

func TestClient_FetchListDetailNormalizesItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lists/7" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": 7,
			"title": "Modulars",
			"items": [
				{"set_num": "10278-1", "position": 5, "set_img_url": "http://img/police.jpg"},
				"10255-1",
				{"set_num": "10270-1", "position": 2, "note": "favorite"}
			]
		}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	detail, err := c.FetchListDetail(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchListDetail returned error: %v", err)
	}
	if detail.Title != "Modulars" || len(detail.Items) != 3 {
		t.Fatalf("detail = %#v, want 3 items", detail)
	}

	// Positioned items sort first by server position, the bare string keeps
	// arrival order at the tail, and positions come back dense.
	wantOrder := []string{"10270-1", "10278-1", "10255-1"}
	for i, item := range detail.Items {
		if item.SetNum != wantOrder[i] {
			t.Fatalf("items[%d] = %q, want %q (all: %#v)", i, item.SetNum, wantOrder[i], detail.Items)
		}
		if item.Position != i {
			t.Fatalf("items[%d].Position = %d, want dense %d", i, item.Position, i)
		}
	}
	if detail.Items[1].ImageURL != "http://img/police.jpg" {
		t.Fatalf("ImageURL = %q, want set_img_url variant normalized", detail.Items[1].ImageURL)
	}
	if detail.Items[0].Note != "favorite" {
		t.Fatalf("Note = %q, want carried through", detail.Items[0].Note)
	}
}
