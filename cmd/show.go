package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/resource"
)

var (
	showTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})

	showMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})

	showLinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"})

	showHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

var showCmd = &cobra.Command{
	Use:   "show <category>",
	Short: "Print the cached snapshot for one category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyEnvOverrides()

		log := zap.NewNop()
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		svc, store, err := buildService(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := svc.Snapshot(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}

		fmt.Println(renderSnapshot(cfg, snap))
		return nil
	},
}

func renderSnapshot(cfg *config.Config, snap resource.CategorySnapshot) string {
	var b strings.Builder

	name := snap.Category
	if cat, ok := cfg.CategoryByKey(snap.Category); ok && cat.Name != "" {
		name = cat.Name
	}
	header := fmt.Sprintf("%s — %d resources, generated %s",
		name, len(snap.Resources), snap.GeneratedAt.Format("Jan 2 15:04"))
	b.WriteString(showHeaderStyle.Render(header))
	b.WriteString("\n\n")

	for i, r := range snap.Resources {
		b.WriteString(fmt.Sprintf("%2d. %s %s\n", i+1,
			showTitleStyle.Render(r.Title),
			showMetaStyle.Render(fmt.Sprintf("[%s · %s]", r.Type, r.Difficulty))))
		b.WriteString("    " + showLinkStyle.Render(r.Link) + "\n")
		if r.Snippet != "" {
			b.WriteString("    " + r.Snippet + "\n")
		}
	}

	p := snap.Provenance
	b.WriteString("\n" + showMetaStyle.Render(fmt.Sprintf(
		"sources: curated %d · feeds %d · search %d · padded %d",
		p.Curated, p.Feeds, p.Search, p.Padded)))
	return b.String()
}
