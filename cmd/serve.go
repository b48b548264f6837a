package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agorabbs/agora/api"
	"github.com/agorabbs/agora/config"
	"github.com/agorabbs/agora/forum"
	"github.com/agorabbs/agora/scheduler"
	"github.com/agorabbs/agora/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Agora server",
	Long:  `Start the Agora server to handle forum requests.`,
	Example: `agora serve --config config.yml
agora serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the config file and applies the log-level flag override.
func loadConfig() *config.Config {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	level := cfg.LogLevel
	if rootCmdPersistentFlags.LogLevel != "" {
		level = rootCmdPersistentFlags.LogLevel
	}
	setLogLevel(level)
	return cfg
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	st, err := store.New(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to create store: %v", err)
	}
	defer st.Close() //nolint:errcheck

	svc := forum.New(st, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize forum: %v", err)
	}

	server, err := api.New(cfg, svc, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	if cfg.Export != nil && cfg.Export.Enabled {
		sched, err := scheduler.New()
		if err != nil {
			log.Fatalf("failed to create scheduler: %v", err)
		}
		if err := sched.AddJob("log-export", cfg.Export.Interval, func() error {
			xml, err := svc.ExportLogsXML(context.Background(), "")
			if err != nil {
				return err
			}
			return os.WriteFile(cfg.Export.Path, []byte(xml), 0o600)
		}); err != nil {
			log.Fatalf("failed to schedule log export: %v", err)
		}
		sched.Start()
		defer sched.Stop() //nolint:errcheck
		log.Info("scheduled log export", "interval", cfg.Export.Interval, "path", cfg.Export.Path)
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
