package cmd

import (
	"fmt"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"

	"github.com/agorabbs/agora/forum"
	"github.com/agorabbs/agora/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show forum statistics",
	Long:  `Display record counts for the stored collections and the time of the last logged activity.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()

		st, err := store.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		defer st.Close() //nolint:errcheck

		svc := forum.New(st, cfg)
		stats, err := svc.CollectStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to collect stats: %w", err)
		}

		fmt.Println("Forum Statistics:")
		fmt.Printf("Users: %d\n", stats.Users)
		fmt.Printf("Topics: %d\n", stats.Topics)
		fmt.Printf("Messages: %d\n", stats.Messages)
		fmt.Printf("Log Entries: %d\n", stats.Logs)

		if stats.LastActivity != "" {
			if t, err := time.Parse(time.RFC3339, stats.LastActivity); err == nil {
				fmt.Printf("Last Activity: %s (%s)\n", stats.LastActivity, timediff.TimeDiff(t))
			} else {
				fmt.Printf("Last Activity: %s\n", stats.LastActivity)
			}
		}

		if fs, ok := st.(*store.FileStore); ok {
			size, err := fs.Size()
			if err != nil {
				log.Errorf("failed to read store size: %v", err)
				return nil
			}
			u, err := safecast.ToUint64(size)
			if err != nil {
				return fmt.Errorf("failed to convert store size: %w", err)
			}
			fmt.Printf("Store Size: %s\n", humanize.IBytes(u))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
