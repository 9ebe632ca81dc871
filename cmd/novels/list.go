package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/ledger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived novels",
	Long:  "Display the ledger, joined with the catalog when one is configured, in a formatted table",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := ledger.NewStore(cfg.Ledger.Path, nil, logger).Load(cmd.Context())
		if err != nil {
			return err
		}

		summaries := make(map[string]*data.NovelSummary)
		if cfg.CatalogEnabled() {
			repo, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			novels, err := repo.ListNovels()
			if err != nil {
				return err
			}
			for _, n := range novels {
				summaries[n.ID] = n
			}
		}

		if l.Len() == 0 && len(summaries) == 0 {
			fmt.Println("📚 Nothing archived yet. Use 'novels add URL' and 'novels run' to start.")
			return nil
		}

		columns := []table.Column{
			{Title: "Title", Width: 30},
			{Title: "URL", Width: 45},
			{Title: "Source", Width: 10},
			{Title: "Ledger", Width: 8},
			{Title: "Chapters", Width: 10},
		}

		rows := []table.Row{}
		seen := make(map[string]bool)
		for _, e := range l.Entries() {
			seen[e.URL] = true
			rows = append(rows, novelRow(e.URL, e.Chapter, summaries[e.URL]))
		}
		// catalog novels without a ledger entry yet
		for id, s := range summaries {
			if !seen[id] {
				rows = append(rows, novelRow(id, 0, s))
			}
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📚 Library (%d novels)\n\n", len(rows))
		fmt.Println(t.View())
		return nil
	},
}

func novelRow(url string, chapter int, s *data.NovelSummary) table.Row {
	title, source, chapters := "-", "-", "-"
	if s != nil {
		title = s.Title
		source = s.Source
		chapters = fmt.Sprintf("%d/%d", s.Archived, s.ChapterTotal)
	}
	return table.Row{
		truncateString(title, 28),
		truncateString(url, 43),
		source,
		fmt.Sprintf("%d", chapter),
		chapters,
	}
}
