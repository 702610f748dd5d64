package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/config"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate all category snapshots once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyEnvOverrides()

		log, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer log.Sync()

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		svc, store, err := buildService(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		snaps, err := svc.RefreshAll(context.Background())
		if err != nil {
			return fmt.Errorf("refreshing: %w", err)
		}

		keys := make([]string, 0, len(snaps))
		for key := range snaps {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			snap := snaps[key]
			p := snap.Provenance
			fmt.Printf("%-12s %d resources (curated %d, feeds %d, search %d, padded %d)\n",
				key, len(snap.Resources), p.Curated, p.Feeds, p.Search, p.Padded)
		}
		return nil
	},
}
