package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseNovelList reads one URL per line. Lines that do not start with http:// or https://
// are ignored and duplicates keep their first position.
func ParseNovelList(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			continue
		}
		url := CanonicalURL(line)
		if seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read novel list: %w", err)
	}
	return urls, nil
}

// LoadNovelList reads the novel list at path
func LoadNovelList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open novel list: %w", err)
	}
	defer f.Close()
	return ParseNovelList(f)
}

// AppendNovelList adds urls missing from the list file, creating it if needed.
// It returns the URLs that were actually appended.
func AppendNovelList(path string, urls []string) ([]string, error) {
	existing, err := LoadNovelList(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, u := range existing {
		seen[u] = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open novel list: %w", err)
	}
	defer f.Close()

	if raw, err := os.ReadFile(path); err == nil && len(raw) > 0 && raw[len(raw)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return nil, fmt.Errorf("failed to write novel list: %w", err)
		}
	}

	var added []string
	for _, raw := range urls {
		url := CanonicalURL(raw)
		if url == "" || seen[url] {
			continue
		}
		if _, err := fmt.Fprintln(f, url); err != nil {
			return added, fmt.Errorf("failed to write novel list: %w", err)
		}
		seen[url] = true
		added = append(added, url)
	}
	return added, nil
}
