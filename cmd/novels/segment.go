package cmd

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/segment"
)

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Show how a text is split into translation chunks",
	Long:  "Print the chunks the translator would receive for a chapter text. Reads stdin without a file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if !cmd.Flags().Changed("limit") {
			limit = cfg.Segment.Limit
		}

		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		text, err := io.ReadAll(in)
		if err != nil {
			return err
		}

		chunks := segment.Split(string(text), limit)
		for i, c := range chunks {
			header := fmt.Sprintf("── chunk %d (%d runes) ──", i+1, utf8.RuneCountInString(c))
			fmt.Println(styles.SubtitleStyle.Render(header))
			fmt.Println(c)
		}
		fmt.Println(styles.MutedStyle.Render(fmt.Sprintf("%d chunks, limit %d", len(chunks), limit)))
		return nil
	},
}

func init() {
	segmentCmd.Flags().Int("limit", segment.DefaultLimit, "maximum chunk size in runes")
}
