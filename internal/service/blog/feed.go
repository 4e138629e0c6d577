package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/feeds"
)

const feedWords = 75

// Feed renders the recent posts as an RSS 2.0 document. baseURL is the
// scheme and host links are made absolute with.
func (s *Service) Feed(ctx context.Context, siteName, baseURL string) ([]byte, error) {
	posts, err := s.Recent(ctx)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(baseURL, "/")

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("TelelBirds Blog | %s", siteName),
		Link:        &feeds.Link{Href: base + "/"},
		Description: fmt.Sprintf("Updates on changes and additions to %s", siteName),
	}
	for i, p := range posts {
		link := base + p.AbsoluteURL()
		item := &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: TruncateWords(p.Content, feedWords),
			Id:          link,
		}
		if p.DatePublished != nil {
			item.Created = p.DatePublished.UTC()
			if i == 0 {
				feed.Updated = item.Created
			}
		}
		feed.Items = append(feed.Items, item)
	}

	out, err := feed.ToRss()
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return []byte(out), nil
}

// TruncateWords keeps the first n words of s, marking a cut with "...".
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
