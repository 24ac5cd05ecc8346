// Command highlights builds the cricket highlights catalog.
//
// Usage:
//
//	highlights run                       fetch, classify, merge and write once
//	highlights serve                     scheduled runs plus the webhook server
//	highlights rebuild                   reclassify the stored catalog
//	highlights subscribe --callback URL  subscribe to channel upload feeds
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/internal/api"
	"github.com/romangod6/cricket-highlights/internal/youtube"
)

// subscribeDelay spaces hub requests.
const subscribeDelay = time.Second

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var configFile string
	root := &cobra.Command{
		Use:           "highlights",
		Short:         "Cricket highlights catalog builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: config.yaml in . or ./config)")

	root.AddCommand(runCmd(&configFile))
	root.AddCommand(serveCmd(&configFile))
	root.AddCommand(rebuildCmd(&configFile))
	root.AddCommand(subscribeCmd(&configFile))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one fetch-classify-merge-write cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp("run", *configFile, func(ctx context.Context, a *app) error {
				result, err := a.runner.Run(ctx)
				a.log.Info("run finished", zap.String("summary", result.Summary()))
				for _, e := range result.Errors {
					a.log.Warn("run error", zap.String("error", e))
				}
				return err
			})
		},
	}
}

func rebuildCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Reclassify every stored video with the current policy and rewrite all documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp("rebuild", *configFile, func(ctx context.Context, a *app) error {
				result, err := a.runner.Rebuild(ctx)
				a.log.Info("rebuild finished", zap.String("summary", result.Summary()))
				return err
			})
		},
	}
}

func subscribeCmd(configFile *string) *cobra.Command {
	var callback string
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe the webhook to upload notifications of every configured channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp("subscribe", *configFile, func(ctx context.Context, a *app) error {
				if callback == "" {
					callback = a.cfg.YouTube.WebSub.CallbackURL
				}
				if callback == "" {
					return errors.New("--callback or youtube.websub.callback_url is required")
				}
				return subscribeAll(ctx, a, callback)
			})
		},
	}
	cmd.Flags().StringVar(&callback, "callback", "", "public URL of the /api/webhook endpoint")
	return cmd
}

func subscribeAll(ctx context.Context, a *app, callback string) error {
	sub := youtube.NewSubscriber(
		a.cfg.YouTube.WebSub.HubURL,
		a.cfg.YouTube.WebSub.VerifyToken,
		a.cfg.YouTube.WebSub.Lease,
		a.log.Logger,
	)

	failed := 0
	for i, ch := range a.cfg.YouTube.Channels {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(subscribeDelay):
			}
		}
		if err := sub.Subscribe(ctx, ch.ID, callback); err != nil {
			failed++
			a.log.Error("subscription failed", zap.String("channel", ch.Name), zap.Error(err))
		}
	}

	a.log.Info("subscriptions requested",
		zap.Int("channels", len(a.cfg.YouTube.Channels)),
		zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d subscriptions failed", failed, len(a.cfg.YouTube.Channels))
	}
	return nil
}

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook and run the catalog on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp("serve", *configFile, serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	gate := newRunGate(a.runner, a.log.Logger)

	handler := api.NewHandler(api.HandlerConfig{
		Ingester:    gate,
		Status:      gate,
		Videos:      a.client,
		Channels:    a.cfg.MonitoredChannels(),
		VerifyToken: a.cfg.YouTube.WebSub.VerifyToken,
		Metrics:     a.metrics,
		Logger:      a.log.Logger,
	})
	server := api.NewServer(a.cfg.Server.Port, handler, a.registry, a.log.Logger)

	// Setup scheduled runs
	clog := cronLogger{a.log.Sugar()}
	scheduler := cron.New(cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))
	if _, err := scheduler.AddFunc(a.cfg.Schedule.Cron, func() { gate.Run(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.cfg.Schedule.Cron, err)
	}
	scheduler.Start()
	a.log.Info("scheduler started", zap.String("schedule", a.cfg.Schedule.Cron))

	if a.cfg.Schedule.RunOnStart {
		go gate.Run(ctx)
	}

	// Start the API server
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err = <-serverErr:
		a.log.Error("api server failed", zap.Error(err))
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.log.Error("error shutting down server", zap.Error(shutdownErr))
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		a.log.Warn("scheduled run still in progress at shutdown")
	}
	a.log.Info("server shut down gracefully")
	return err
}

// withApp wires dependencies for one command and cancels on SIGINT/SIGTERM.
func withApp(command, configFile string, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(command, configFile)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
