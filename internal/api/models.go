package api

import "fmt"

// Item is an immutable snapshot of a submitted media record. It is never
// mutated in place; re-fetch to observe changes.
type Item struct {
	ID       int64
	Type     string // "image", "audio", "video", ...
	Title    string
	Source   string // original URL, empty for direct uploads
	Mimetype string
	Size     int64
	Upvotes  int
	Tags     []Tag
}

// Tag is a label attached to an item. Order within an item is display
// order only.
type Tag struct {
	Name string
}

// itemPayload is the wire shape of a single item. Unknown extra fields are
// ignored; required fields are validated in itemFromPayload.
type itemPayload struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Source   *string `json:"source"`
	Mimetype string  `json:"mimetype"`
	Size     int64   `json:"size"`
	Upvotes  int     `json:"upvote_count"`
}

type tagPayload struct {
	Name string `json:"tagname"`
}

// itemFromPayload validates and converts a wire item. ID and Type are
// required; everything else may legitimately be absent.
func itemFromPayload(p *itemPayload, tags []tagPayload) (*Item, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("item payload missing id")
	}
	if p.Type == "" {
		return nil, fmt.Errorf("item payload missing type")
	}

	item := &Item{
		ID:       p.ID,
		Type:     p.Type,
		Title:    p.Title,
		Mimetype: p.Mimetype,
		Size:     p.Size,
		Upvotes:  p.Upvotes,
		Tags:     tagsFromPayload(tags),
	}
	if p.Source != nil {
		item.Source = *p.Source
	}
	return item, nil
}

func tagsFromPayload(payloads []tagPayload) []Tag {
	if len(payloads) == 0 {
		return nil
	}
	tags := make([]Tag, 0, len(payloads))
	for _, t := range payloads {
		tags = append(tags, Tag{Name: t.Name})
	}
	return tags
}
