package brickery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Gateway defines the collection API surface the controllers depend on.
// This interface is implemented by *Client and can be faked in tests.
type Gateway interface {
	Authenticated() bool

	FetchOwned(ctx context.Context) ([]CollectionItem, error)
	FetchWishlist(ctx context.Context) ([]CollectionItem, error)
	AddOwned(ctx context.Context, setNum string) error
	RemoveOwned(ctx context.Context, setNum string) error
	AddWishlist(ctx context.Context, setNum string) error
	RemoveWishlist(ctx context.Context, setNum string) error
	SaveWishlistOrder(ctx context.Context, setNums []string) error

	FetchMyLists(ctx context.Context) ([]ListSummary, error)
	FetchListDetail(ctx context.Context, listID int64) (*ListDetail, error)
	AddListItem(ctx context.Context, listID int64, setNum string) error
	RemoveListItem(ctx context.Context, listID int64, setNum string) error
	SaveListOrder(ctx context.Context, listID int64, setNums []string) error
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Client talks to the Brickery collections HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
}

const (
	defaultAPIBase   = "http://127.0.0.1:8000"
	defaultUserAgent = "shelf/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given API base URL and bearer token. The
// token may be empty; mutating and personal-collection calls will then fail
// locally with ErrAuthRequired instead of hitting the network.
func NewClient(apiBase, token string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		token:     strings.TrimSpace(token),
	}, nil
}

// Authenticated reports whether a bearer token is configured.
func (c *Client) Authenticated() bool {
	return c != nil && c.token != ""
}

// FetchOwned retrieves the authenticated user's owned collection.
func (c *Client) FetchOwned(ctx context.Context) ([]CollectionItem, error) {
	var payload []CollectionItem
	if err := c.do(ctx, http.MethodGet, "/me/owned", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchWishlist retrieves the authenticated user's wishlist in its saved
// custom order.
func (c *Client) FetchWishlist(ctx context.Context) ([]CollectionItem, error) {
	var payload []CollectionItem
	if err := c.do(ctx, http.MethodGet, "/me/wishlist", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AddOwned adds a set to the owned collection. A 409 means the set is
// already owned and is treated as success.
func (c *Client) AddOwned(ctx context.Context, setNum string) error {
	err := c.do(ctx, http.MethodPost, "/collections/owned", itemPayload{SetNum: CanonicalSetNum(setNum)}, nil)
	return swallowStatus(err, http.StatusConflict)
}

// RemoveOwned removes a set from the owned collection. A 404 means the set
// was already absent and is treated as success.
func (c *Client) RemoveOwned(ctx context.Context, setNum string) error {
	err := c.do(ctx, http.MethodDelete, "/collections/owned/"+url.PathEscape(CanonicalSetNum(setNum)), nil, nil)
	return swallowStatus(err, http.StatusNotFound)
}

// AddWishlist adds a set to the wishlist, idempotent like AddOwned.
func (c *Client) AddWishlist(ctx context.Context, setNum string) error {
	err := c.do(ctx, http.MethodPost, "/collections/wishlist", itemPayload{SetNum: CanonicalSetNum(setNum)}, nil)
	return swallowStatus(err, http.StatusConflict)
}

// RemoveWishlist removes a set from the wishlist, idempotent like RemoveOwned.
func (c *Client) RemoveWishlist(ctx context.Context, setNum string) error {
	err := c.do(ctx, http.MethodDelete, "/collections/wishlist/"+url.PathEscape(CanonicalSetNum(setNum)), nil, nil)
	return swallowStatus(err, http.StatusNotFound)
}

// SaveWishlistOrder replaces the wishlist's saved ordering. The endpoint
// expects base set numbers without the variant suffix.
func (c *Client) SaveWishlistOrder(ctx context.Context, setNums []string) error {
	payload := orderPayload{SetNums: make([]string, len(setNums))}
	for i, sn := range setNums {
		payload.SetNums[i] = BaseSetNum(sn)
	}
	return c.do(ctx, http.MethodPut, "/collections/wishlist/order", payload, nil)
}

// FetchMyLists retrieves summaries of the user's custom lists.
func (c *Client) FetchMyLists(ctx context.Context) ([]ListSummary, error) {
	var payload []ListSummary
	if err := c.do(ctx, http.MethodGet, "/lists/me", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchListDetail retrieves a list's metadata and ordered items. Items are
// reindexed to dense positions regardless of the shape the server sent.
func (c *Client) FetchListDetail(ctx context.Context, listID int64) (*ListDetail, error) {
	var payload ListDetail
	if err := c.do(ctx, http.MethodGet, "/lists/"+strconv.FormatInt(listID, 10), nil, &payload); err != nil {
		return nil, err
	}
	payload.Items = normalizeItems(payload.Items)
	return &payload, nil
}

// AddListItem appends a set to a custom list, idempotent on 409.
func (c *Client) AddListItem(ctx context.Context, listID int64, setNum string) error {
	rel := "/lists/" + strconv.FormatInt(listID, 10) + "/items"
	err := c.do(ctx, http.MethodPost, rel, itemPayload{SetNum: CanonicalSetNum(setNum)}, nil)
	return swallowStatus(err, http.StatusConflict)
}

// RemoveListItem removes a set from a custom list, idempotent on 404.
func (c *Client) RemoveListItem(ctx context.Context, listID int64, setNum string) error {
	rel := "/lists/" + strconv.FormatInt(listID, 10) + "/items/" + url.PathEscape(CanonicalSetNum(setNum))
	err := c.do(ctx, http.MethodDelete, rel, nil, nil)
	return swallowStatus(err, http.StatusNotFound)
}

// SaveListOrder replaces a list's entire ordering with the given permutation.
func (c *Client) SaveListOrder(ctx context.Context, listID int64, setNums []string) error {
	rel := "/lists/" + strconv.FormatInt(listID, 10) + "/order"
	payload := orderPayload{SetNums: make([]string, len(setNums))}
	for i, sn := range setNums {
		payload.SetNums[i] = CanonicalSetNum(sn)
	}
	return c.do(ctx, http.MethodPut, rel, payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if c.token == "" {
		return ErrAuthRequired
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Message: fmt.Sprintf("execute request: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Kind:       kindForStatus(resp.StatusCode),
			Message:    errorMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the API's {"detail": ...} error body, falling back to
// raw text for anything else.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != nil {
		switch detail := payload.Detail.(type) {
		case string:
			return detail
		default:
			if encoded, err := json.Marshal(detail); err == nil {
				return string(encoded)
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
