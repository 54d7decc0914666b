package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/titleforge-backend/internal/app"
	"github.com/yungbote/titleforge-backend/internal/clients/redis"
	"github.com/yungbote/titleforge-backend/internal/data/repos"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
	"github.com/yungbote/titleforge-backend/internal/services"
)

const sampleDescription = "I tested a 5 AM morning routine for 30 days. The results completely changed my productivity and energy levels. Here's exactly what I did and how you can customize it for your schedule."

func main() {
	root := &cobra.Command{
		Use:           "titleforge",
		Short:         "YouTube title generation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), usageCmd(), generateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "titleforge: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads config and the logger every subcommand shares.
func bootstrap() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return app.Config{}, nil, err
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				log.Error("app init failed", "error", err)
				log.Sync()
				return err
			}
			defer a.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			a.Start(ctx)
			g.Go(func() error { return a.Run(ctx) })
			if a.Clients.UsageBus != nil {
				g.Go(func() error {
					err := a.Clients.UsageBus.StartForwarder(ctx, func(m redis.UsageMessage) {
						log.Debug("usage update", "type", m.Type, "user_id", m.UserID)
					})
					if err != nil {
						log.Warn("usage forwarder not started", "error", err)
					}
					return nil
				})
			}
			return g.Wait()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the event store schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			store, err := app.OpenStore(log, cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("no database configured")
			}
			defer store.Close()
			log.Info("migrations applied", "driver", cfg.DBDriver)
			return nil
		},
	}
}

func usageCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "usage <user-id>",
		Short: "Print a user's generation quota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			store, err := app.OpenStore(log, cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("no database configured")
			}
			defer store.Close()

			userID := strings.TrimSpace(args[0])
			ledger := services.NewQuotaLedger(
				log,
				services.NewRepoEventStore(repos.NewEventRepo(store.DB(), log)),
				cfg.Limit(),
				cfg.StoreTimeout,
			)
			if err := printJSON(cmd, ledger.Usage(cmd.Context(), userID)); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return fmt.Errorf("--watch requires REDIS_ADDR")
			}
			bus, err := redis.NewUsageBus(cmd.Context(), log, redis.Config{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
				Channel:  cfg.RedisChannel,
			})
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx := cmd.Context()
			updates := make(chan struct{}, 1)
			err = bus.StartForwarder(ctx, func(m redis.UsageMessage) {
				if m.UserID != userID {
					return
				}
				select {
				case updates <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-updates:
					if err := printJSON(cmd, ledger.Usage(ctx, userID)); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep printing as new generations are published")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		userID      string
		description string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a title batch from the command line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				log.Sync()
				return err
			}
			defer a.Close()
			a.Services.Telemetry.Start(cmd.Context())

			res, err := a.Services.Titles.Generate(cmd.Context(), services.GenerateRequest{
				UserID:      userID,
				Description: description,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "cli", "user id the generation is charged to")
	cmd.Flags().StringVar(&description, "description", sampleDescription, "video description")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
