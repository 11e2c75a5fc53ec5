package bot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/4poc/zgbot/internal/api"
)

// Formatter renders items for chat output. Transports with richer text
// (IRC colors, markdown) supply their own implementation.
type Formatter interface {
	FormatItem(item *api.Item) string
}

var youtubeRe = regexp.MustCompile(`youtube\.com/watch\?v=([^&]+)`)

// PlainFormatter renders items as plain text, e.g.
//
//	123 - image/png 51200b "a cat" - tagged: cat, cute (http://zg.example/123) +3
type PlainFormatter struct {
	BaseURL string
}

func (f PlainFormatter) FormatItem(item *api.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d - ", item.ID)
	if item.Type == "image" {
		fmt.Fprintf(&b, "%s %db ", item.Mimetype, item.Size)
	} else {
		fmt.Fprintf(&b, "%s ", item.Type)
	}

	if item.Title != "" {
		fmt.Fprintf(&b, "%q", item.Title)
	}

	if tags := tagList(item.Tags); tags != "" {
		fmt.Fprintf(&b, " - tagged: %s", tags)
	}

	fmt.Fprintf(&b, " (%s)", f.itemURL(item))
	fmt.Fprintf(&b, " +%d", item.Upvotes)
	return b.String()
}

// itemURL picks the canonical link: images and sourceless items link to the
// installation page, everything else to its source (with youtube links
// shortened).
func (f PlainFormatter) itemURL(item *api.Item) string {
	if item.Type == "image" || item.Source == "" {
		return strings.TrimSuffix(f.BaseURL, "/") + fmt.Sprintf("/%d", item.ID)
	}
	if m := youtubeRe.FindStringSubmatch(item.Source); m != nil {
		return "http://youtu.be/" + m[1]
	}
	return item.Source
}

func tagList(tags []api.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
