package sources

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// paragraphs returns the text of every <p> below sel, one per line. Without <p> children
// the element's own text is used. keepBlank retains empty paragraphs as blank lines.
func paragraphs(sel *goquery.Selection, keepBlank bool) string {
	var lines []string
	ps := sel.Find("p")
	if ps.Length() == 0 {
		lines = strings.Split(sel.Text(), "\n")
	} else {
		ps.Each(func(_ int, p *goquery.Selection) {
			lines = append(lines, p.Text())
		})
	}

	out := lines[:0]
	for _, l := range lines {
		l = trimLine(l)
		if l == "" && !keepBlank {
			continue
		}
		out = append(out, l)
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

// trimLine keeps a leading full-width space, it is the paragraph indent
func trimLine(l string) string {
	l = strings.TrimRightFunc(strings.TrimLeft(l, " \t\r\n"), unicode.IsSpace)
	if strings.TrimSpace(l) == "" {
		return ""
	}
	return l
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

var unsafeTitleChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// cleanTitle drops characters that are not allowed in file names
func cleanTitle(s string) string {
	return strings.TrimSpace(unsafeTitleChars.ReplaceAllString(s, ""))
}
