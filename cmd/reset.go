package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/agorabbs/agora/config"
	"github.com/agorabbs/agora/forum"
	"github.com/agorabbs/agora/store"
)

var resetCmdFlags struct {
	KeepUsers bool
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all forum data",
	Long:  `This command deletes all stored collections (users, topics, messages, activity log) and the session slot.`,
	Run:   reset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetCmdFlags.KeepUsers, "keep-users", false, "Keep the users collection, wipe everything else")

	rootCmd.AddCommand(resetCmd)
}

func reset(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	st, err := store.New(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to create store: %v", err)
	}
	defer st.Close() //nolint:errcheck

	ctx := cmd.Context()

	var users []forum.User
	svc := forum.New(st, cfg)
	if resetCmdFlags.KeepUsers {
		users, err = svc.AllUsers(ctx)
		if err != nil {
			log.Fatalf("failed to read users: %v", err)
		}
	}

	if err := svc.Reset(ctx); err != nil {
		log.Fatalf("failed to reset forum data: %v", err)
	}

	if resetCmdFlags.KeepUsers {
		// restore through the seed-merge path so no register actions are logged
		seeds := make([]config.SeedUser, len(users))
		for i, u := range users {
			seeds[i] = config.SeedUser{Username: u.Username, Password: u.Password, IsAdmin: u.IsAdmin}
		}
		restoreCfg := *cfg
		restoreCfg.SeedUsers = seeds
		if err := forum.New(st, &restoreCfg).Initialize(ctx); err != nil {
			log.Fatalf("failed to restore users: %v", err)
		}
		log.Info("forum data reset, users kept", "users", len(users))
		return
	}

	log.Info("forum data reset")
}
