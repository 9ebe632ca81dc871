package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kerbaras/novels/pkg/data"
)

// maxTOCPages bounds the pager walk
const maxTOCPages = 1000

// Narou reads ncode.syosetu.com novels, following the paginated table of contents
type Narou struct {
	fetcher *Fetcher
}

func NewNarou(fetcher *Fetcher) *Narou {
	return &Narou{fetcher: fetcher}
}

func (n *Narou) Name() string { return "narou" }

func (n *Narou) Matches(u *url.URL) bool {
	return u.Hostname() == "ncode.syosetu.com"
}

func (n *Narou) FetchNovel(ctx context.Context, novelURL string) (*data.Novel, error) {
	novel := &data.Novel{ID: data.CanonicalURL(novelURL), Source: n.Name()}

	pageURL := novel.ID + "/"
	seen := make(map[string]bool)
	var first *goquery.Document

	for pages := 0; pageURL != "" && !seen[pageURL] && pages < maxTOCPages; pages++ {
		seen[pageURL] = true
		doc, _, err := n.fetcher.Document(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = doc
			novel.Title = cleanTitle(doc.Find("title").First().Text())
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid toc url: %w", err)
		}
		doc.Find(".p-eplist__sublist .p-eplist__subtitle").Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			novel.Chapters = append(novel.Chapters, data.ChapterRef{
				Index: len(novel.Chapters) + 1,
				URL:   resolve(base, href),
				Title: strings.TrimSpace(s.Text()),
			})
		})

		pageURL = ""
		if href, ok := doc.Find(".c-pager__item--next").First().Attr("href"); ok && href != "" {
			pageURL = resolve(base, href)
		}
	}

	// one-shot stories have no table of contents, the body sits on the novel page
	if len(novel.Chapters) == 0 && first != nil && first.Find(".p-novel__body").Length() > 0 {
		novel.Chapters = append(novel.Chapters, data.ChapterRef{Index: 1, URL: novel.ID + "/", Title: novel.Title})
	}

	if len(novel.Chapters) == 0 {
		return nil, &ParseError{URL: novelURL, What: "table of contents"}
	}
	return novel, nil
}

func (n *Narou) FetchChapter(ctx context.Context, ref data.ChapterRef) (*data.Chapter, error) {
	doc, _, err := n.fetcher.Document(ctx, ref.URL)
	if err != nil {
		return nil, err
	}

	chapter := &data.Chapter{Index: ref.Index, Title: ref.Title}
	if chapter.Title == "" {
		chapter.Title = strings.TrimSpace(doc.Find(".p-novel__title").First().Text())
	}

	body := doc.Find(".p-novel__body").First()
	if body.Length() == 0 {
		return chapter, &ParseError{URL: ref.URL, What: "chapter body"}
	}
	chapter.SourceText = paragraphs(body, true)
	return chapter, nil
}
