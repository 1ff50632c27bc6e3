package brickery

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// CollectionItem mirrors one entry of /me/owned or /me/wishlist.
type CollectionItem struct {
	SetNum string
	Type   string
	SetInfo
}

// ListSummary mirrors one entry of /lists/me.
type ListSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	ItemsCount  int    `json:"items_count"`
}

// ListDetail mirrors /lists/{id}: list metadata plus its ordered items.
type ListDetail struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	Items       []ListItem
}

// ListItem is one ordered membership record of a list. The server sends items
// either as plain set-number strings or as objects carrying position and note;
// both shapes decode into this one.
type ListItem struct {
	SetNum   string
	Position int
	Note     string
	SetInfo
}

// SetInfo carries the optional inline set metadata some responses attach to
// membership records. The image URL arrives under several field names
// depending on the endpoint; it is normalized here so nothing downstream has
// to know about the variants.
type SetInfo struct {
	Name     string
	Year     int
	Pieces   int
	ImageURL string
}

func (i *ListItem) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		i.SetNum = plain
		i.Position = -1
		return nil
	}

	var raw struct {
		SetNum   string `json:"set_num"`
		Position *int   `json:"position"`
		Note     string `json:"note"`
		rawSetInfo
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.SetNum = raw.SetNum
	i.Position = -1
	if raw.Position != nil {
		i.Position = *raw.Position
	}
	i.Note = raw.Note
	i.SetInfo = raw.rawSetInfo.normalized()
	return nil
}

func (c *CollectionItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		SetNum string `json:"set_num"`
		Type   string `json:"type"`
		rawSetInfo
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.SetNum = raw.SetNum
	c.Type = raw.Type
	c.SetInfo = raw.rawSetInfo.normalized()
	return nil
}

// rawSetInfo accepts every image field variant the API is known to emit.
type rawSetInfo struct {
	Name      string `json:"name"`
	Year      int    `json:"year"`
	Pieces    int    `json:"pieces"`
	ImgURL    string `json:"img_url"`
	ImageURL  string `json:"image_url"`
	SetImgURL string `json:"set_img_url"`
}

func (r rawSetInfo) normalized() SetInfo {
	info := SetInfo{Name: r.Name, Year: r.Year, Pieces: r.Pieces}
	for _, candidate := range []string{r.ImgURL, r.ImageURL, r.SetImgURL} {
		if strings.TrimSpace(candidate) != "" {
			info.ImageURL = candidate
			break
		}
	}
	return info
}

// normalizeItems sorts by server position and reindexes to a dense 0..N-1.
// Items without a position sort to the tail, keeping arrival order among
// themselves.
func normalizeItems(items []ListItem) []ListItem {
	sort.SliceStable(items, func(a, b int) bool {
		pa, pb := items[a].Position, items[b].Position
		if pa < 0 {
			return false
		}
		if pb < 0 {
			return true
		}
		return pa < pb
	})
	for idx := range items {
		items[idx].Position = idx
	}
	return items
}

// orderPayload is the body of both order-persistence endpoints.
type orderPayload struct {
	SetNums []string `json:"set_nums"`
}

// itemPayload is the body of every add-membership endpoint.
type itemPayload struct {
	SetNum string `json:"set_num"`
}

const apiTimestampLayout = "2006-01-02T15:04:05"

// ParseTimestamp parses the timestamp formats the API emits. Missing or
// malformed values yield the zero time.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, apiTimestampLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
