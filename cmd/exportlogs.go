package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/agorabbs/agora/forum"
	"github.com/agorabbs/agora/store"
)

var exportLogsCmdFlags struct {
	Output   string
	Username string
}

var exportLogsCmd = &cobra.Command{
	Use:   "export-logs",
	Short: "Export the activity log as XML",
	Long:  `Write the activity log to an XML file, optionally filtered by username.`,
	Example: `agora export-logs -o logs.xml
agora export-logs -o alice.xml --username alice`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()

		st, err := store.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		defer st.Close() //nolint:errcheck

		svc := forum.New(st, cfg)
		xml, err := svc.ExportLogsXML(cmd.Context(), exportLogsCmdFlags.Username)
		if err != nil {
			return fmt.Errorf("failed to export logs: %w", err)
		}

		if err := os.WriteFile(exportLogsCmdFlags.Output, []byte(xml), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportLogsCmdFlags.Output, err)
		}

		log.Info("activity log exported", "file", exportLogsCmdFlags.Output)
		return nil
	},
}

func init() {
	exportLogsCmd.Flags().StringVarP(&exportLogsCmdFlags.Output, "output", "o", "logs.xml", "Output file")
	exportLogsCmd.Flags().StringVar(&exportLogsCmdFlags.Username, "username", "", "Only export actions of this user")

	rootCmd.AddCommand(exportLogsCmd)
}
