// Package rss emits the site feed. A feed needs absolute item URLs, so
// generation is refused when the site has no configured base URL; callers
// downgrade that to a warning and skip the feed.
package rss

import (
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/solvang/webvault/internal/export/page"
)

// ErrNoBaseURL means the site cannot produce valid absolute feed URLs.
var ErrNoBaseURL = errors.New("rss feed requires a site base URL")

type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description,omitempty"`
	PubDate     string `xml:"pubDate"`
}

// Generate renders one feed item per page, newest first. Items tie-break on
// target path so repeated exports of an unchanged vault are byte-identical.
func Generate(siteName, siteDescription, baseURL string, pages []*page.Record) ([]byte, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base := strings.TrimRight(baseURL, "/")

	sorted := make([]*page.Record, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Stat.Modified.Equal(b.Stat.Modified) {
			return a.Stat.Modified.After(b.Stat.Modified)
		}
		return a.TargetPath < b.TargetPath
	})

	doc := rssDoc{
		Version: "2.0",
		Channel: channel{
			Title:       siteName,
			Link:        base,
			Description: siteDescription,
		},
	}
	for _, rec := range sorted {
		link := base + "/" + rec.TargetPath
		doc.Channel.Items = append(doc.Channel.Items, item{
			Title:       rec.Title,
			Link:        link,
			GUID:        link,
			Description: rec.Description,
			PubDate:     rec.Stat.Modified.UTC().Format(time.RFC1123Z),
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss feed: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
