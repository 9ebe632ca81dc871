package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
)

var epubCmd = &cobra.Command{
	Use:   "epub [novel-dir or url]",
	Short: "Compile an archived novel into an EPUB",
	Long: `Compile one language of an archived novel into a single EPUB.

The novel is given either as its directory in the output tree or as its URL, which is
looked up in the catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		out, _ := cmd.Flags().GetString("out")

		language := integrations.Language(lang)
		if language != integrations.English && language != integrations.Japanese {
			return fmt.Errorf("unknown language %q, use english or japanese", lang)
		}

		novelDir, err := resolveNovelDir(args[0])
		if err != nil {
			return err
		}

		outputDir := cfg.OutputDir
		if out != "" {
			outputDir = filepath.Dir(out)
		}

		fmt.Printf("📖 Compiling %s (%s)...\n", filepath.Base(novelDir), language)
		path, err := integrations.NewEPubBuilder(outputDir).CreateEPub(novelDir, language)
		if err != nil {
			return fmt.Errorf("EPUB generation failed: %w", err)
		}

		if out != "" && out != path {
			if err := os.Rename(path, out); err != nil {
				return fmt.Errorf("failed to move EPUB: %w", err)
			}
			path = out
		}

		fmt.Printf("✅ EPUB created: %s\n", path)
		return nil
	},
}

func init() {
	epubCmd.Flags().String("lang", string(integrations.English), "language tree to compile (english or japanese)")
	epubCmd.Flags().StringP("out", "o", "", "output file (default <output dir>/<title>.<lang>.epub)")
}

func resolveNovelDir(arg string) (string, error) {
	if !strings.HasPrefix(arg, "http://") && !strings.HasPrefix(arg, "https://") {
		if _, err := os.Stat(arg); err != nil {
			return "", err
		}
		return arg, nil
	}

	if !cfg.CatalogEnabled() {
		return "", fmt.Errorf("looking up a novel by url needs the catalog, pass its directory instead")
	}
	repo, err := openCatalog(cfg)
	if err != nil {
		return "", err
	}
	defer repo.Close()

	novel, err := repo.GetNovel(data.CanonicalURL(arg))
	if err != nil {
		return "", err
	}
	return integrations.NewTreeWriter(cfg.OutputDir, cfg.Pipeline.BucketSize).NovelDir(novel.Title), nil
}
