package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://kakuyomu.jp/works/1", CanonicalURL("  https://kakuyomu.jp/works/1//  "))
	assert.Equal(t, "https://ncode.syosetu.com/n1234ab", CanonicalURL("https://ncode.syosetu.com/n1234ab/"))
}

func TestParseNovelList(t *testing.T) {
	input := strings.Join([]string{
		"# favourites",
		"https://kakuyomu.jp/works/1/",
		"",
		"ftp://example.com/nope",
		"  https://ncode.syosetu.com/n1234ab  ",
		"https://kakuyomu.jp/works/1",
		"http://example.com/plain",
	}, "\n")

	urls, err := ParseNovelList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://kakuyomu.jp/works/1",
		"https://ncode.syosetu.com/n1234ab",
		"http://example.com/plain",
	}, urls)
}

func TestAppendNovelList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novels.txt")

	t.Run("creates the file", func(t *testing.T) {
		added, err := AppendNovelList(path, []string{"https://kakuyomu.jp/works/1/"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://kakuyomu.jp/works/1"}, added)
	})

	t.Run("skips known urls", func(t *testing.T) {
		added, err := AppendNovelList(path, []string{"https://kakuyomu.jp/works/1", "https://kakuyomu.jp/works/2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://kakuyomu.jp/works/2"}, added)
	})

	t.Run("repairs a missing trailing newline", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("https://kakuyomu.jp/works/1"), 0644))
		_, err := AppendNovelList(path, []string{"https://kakuyomu.jp/works/3"})
		require.NoError(t, err)

		urls, err := LoadNovelList(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://kakuyomu.jp/works/1", "https://kakuyomu.jp/works/3"}, urls)
	})
}
