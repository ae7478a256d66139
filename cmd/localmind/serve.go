package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"localmind/internal/httpapi"
	"localmind/internal/manager"
)

var (
	serveAddr        string
	serveCORSOrigins string
	serveInit        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP control surface",
	Long: `Start the scheduler and model manager and serve the HTTP API. With --init
the model is extracted and loaded before the server starts accepting chat
requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config and $LOCALMIND_ADDR)")
	serveCmd.Flags().StringVar(&serveCORSOrigins, "cors-origins", "", "comma separated CORS origins (overrides config)")
	serveCmd.Flags().BoolVar(&serveInit, "init", false, "initialize the model at startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveCORSOrigins != "" {
		cfg.HTTP.CORSOrigins = splitCSV(serveCORSOrigins)
	}
	log := newLogger(cfg.Logging, nil)

	eng, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}
	sched := newScheduler(cfg.Scheduler, log)
	events := manager.NewChannelPublisher(64)
	mcfg, err := managerConfig(cfg, eng, sched, events, log)
	if err != nil {
		return err
	}
	mgr := manager.NewWithConfig(mcfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go logEvents(ctx, events, log)

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.HTTP.MaxBodyBytes)
	httpapi.SetCORSOrigins(cfg.HTTP.CORSOrigins)
	if rl := cfg.HTTP.RateLimit; rl.Enabled {
		httpapi.SetChatRateLimit(rl.RequestsPerSecond, rl.Burst)
	}

	if serveInit {
		if err := mgr.Initialize(ctx); err != nil {
			log.Error().Err(err).Msg("initialize failed; serving anyway, retry with POST /init")
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("engine", cfg.Engine).Str("model_dir", mgr.ModelPath()).
			Int("workers", sched.Workers()).Str("version", version).Msg("localmind listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(shutCtx); err != nil {
		log.Warn().Err(err).Msg("manager close")
	}
	if err := sched.Dispose(shutCtx); err != nil {
		log.Warn().Err(err).Msg("scheduler dispose")
	}
	return nil
}

// logEvents mirrors lifecycle events into the log until ctx ends.
func logEvents(ctx context.Context, p *manager.ChannelPublisher, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-p.Events():
			ev := log.Debug().Str("event", e.Name).Str("model", e.ModelID)
			for k, v := range e.Fields {
				ev = ev.Interface(k, v)
			}
			ev.Msg("lifecycle")
		}
	}
}
