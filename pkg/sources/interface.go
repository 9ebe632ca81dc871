package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/kerbaras/novels/pkg/data"
)

// Source knows how to read one serial-fiction site
type Source interface {
	Name() string
	Matches(u *url.URL) bool
	// FetchNovel reads the title and the ordered table of contents
	FetchNovel(ctx context.Context, novelURL string) (*data.Novel, error)
	// FetchChapter reads the title and body of one chapter
	FetchChapter(ctx context.Context, ref data.ChapterRef) (*data.Chapter, error)
}

// ErrUnsupported is returned for URLs no registered source handles
var ErrUnsupported = errors.New("unsupported site")

// Registry picks the source for a novel URL
type Registry struct {
	sources []Source
}

func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// DefaultRegistry knows every built-in site
func DefaultRegistry(fetcher *Fetcher) *Registry {
	return NewRegistry(NewKakuyomu(fetcher), NewNarou(fetcher))
}

func (r *Registry) For(rawURL string) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid novel url %q: %w", rawURL, err)
	}
	for _, s := range r.sources {
		if s.Matches(u) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, u.Host)
}
