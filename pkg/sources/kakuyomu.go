package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/kerbaras/novels/pkg/data"
)

var (
	kakuyomuEpisode = regexp.MustCompile(`"__typename":"Episode","id":"(.*?)","title":"(.*?)"`)
	kakuyomuWork    = regexp.MustCompile(`^/works/(\d+)`)
	kakuyomuSuffix  = regexp.MustCompile(`\s*[-ー]?\s*カクヨム.*$`)
)

// Kakuyomu reads kakuyomu.jp works. The table of contents is taken from the episode
// objects embedded in the work page's state JSON.
type Kakuyomu struct {
	fetcher *Fetcher
}

func NewKakuyomu(fetcher *Fetcher) *Kakuyomu {
	return &Kakuyomu{fetcher: fetcher}
}

func (k *Kakuyomu) Name() string { return "kakuyomu" }

func (k *Kakuyomu) Matches(u *url.URL) bool {
	return u.Hostname() == "kakuyomu.jp"
}

func (k *Kakuyomu) FetchNovel(ctx context.Context, novelURL string) (*data.Novel, error) {
	u, err := url.Parse(novelURL)
	if err != nil {
		return nil, fmt.Errorf("invalid novel url: %w", err)
	}
	m := kakuyomuWork.FindStringSubmatch(u.Path)
	if m == nil {
		return nil, &ParseError{URL: novelURL, What: "work id"}
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/works/" + m[1]}

	doc, body, err := k.fetcher.Document(ctx, base.String())
	if err != nil {
		return nil, err
	}

	title := kakuyomuSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	novel := &data.Novel{
		ID:     data.CanonicalURL(novelURL),
		Title:  cleanTitle(title),
		Source: k.Name(),
	}

	seen := make(map[string]bool)
	for _, ep := range kakuyomuEpisode.FindAllSubmatch(body, -1) {
		id := string(ep[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		novel.Chapters = append(novel.Chapters, data.ChapterRef{
			Index: len(novel.Chapters) + 1,
			URL:   base.String() + "/episodes/" + id,
			Title: unescapeJSON(string(ep[2])),
		})
	}

	if len(novel.Chapters) == 0 {
		return nil, &ParseError{URL: novelURL, What: "episode list"}
	}
	return novel, nil
}

func (k *Kakuyomu) FetchChapter(ctx context.Context, ref data.ChapterRef) (*data.Chapter, error) {
	doc, _, err := k.fetcher.Document(ctx, ref.URL)
	if err != nil {
		return nil, err
	}

	chapter := &data.Chapter{Index: ref.Index, Title: ref.Title}
	if chapter.Title == "" {
		chapter.Title = strings.TrimSpace(doc.Find(".widget-episodeTitle").First().Text())
	}

	body := doc.Find("div.widget-episodeBody").First()
	if body.Length() == 0 {
		return chapter, &ParseError{URL: ref.URL, What: "episode body"}
	}
	chapter.SourceText = paragraphs(body, false)
	return chapter, nil
}

func unescapeJSON(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	if out, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return out
	}
	return s
}
