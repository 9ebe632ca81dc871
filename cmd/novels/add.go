package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/sources"
)

var addCmd = &cobra.Command{
	Use:   "add [url...]",
	Short: "Add novels to the novel list",
	Long:  "Append novel URLs to the novel list file. Known URLs are skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := sources.DefaultRegistry(nil)
		for _, u := range args {
			if _, err := registry.For(data.CanonicalURL(u)); err != nil {
				fmt.Printf("⚠️  %s: no source supports this site yet\n", u)
			}
		}

		if err := os.MkdirAll(filepath.Dir(cfg.NovelList), 0755); err != nil {
			return err
		}
		added, err := data.AppendNovelList(cfg.NovelList, args)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", cfg.NovelList, err)
		}

		for _, u := range added {
			fmt.Printf("✅ Added %s\n", u)
		}
		if skipped := len(args) - len(added); skipped > 0 {
			fmt.Printf("ℹ️  %d already in %s\n", skipped, cfg.NovelList)
		}
		fmt.Println("💡 To archive them, use: novels run")
		return nil
	},
}
