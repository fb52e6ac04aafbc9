// Package bootstrap wires configuration, logging, the synthesis provider and
// the HTTP transport into a running relay.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"speech-relay-go/internal/core/providers/tts"
	_ "speech-relay-go/internal/core/providers/tts/edge"
	_ "speech-relay-go/internal/core/providers/tts/openai"
	_ "speech-relay-go/internal/core/providers/tts/workers"
	"speech-relay-go/internal/domain/eventbus"
	platformconfig "speech-relay-go/internal/platform/config"
	platformerrors "speech-relay-go/internal/platform/errors"
	platformlogging "speech-relay-go/internal/platform/logging"
	httptransport "speech-relay-go/internal/transport/http"
	httpspeech "speech-relay-go/internal/transport/http/speech"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Title   string
	Kind    platformerrors.Kind
	Execute stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	stats      *eventbus.Stats
	provider   tts.Provider
	router     *httptransport.Router
}

// Run starts the relay lifecycle: load config, initialise dependencies, serve
// until a termination signal, then shut down gracefully.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitSteps(), state); err != nil {
		return err
	}

	logger := state.logger
	defer logger.Close()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	addr := fmt.Sprintf("%s:%d", state.config.Server.IP, state.config.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: state.router.Engine,
	}

	group.Go(func() error {
		logger.InfoTag("HTTP", "relay listening on http://%s", addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	err := waitForShutdown(signalCtx, logger, group)

	if state.stats != nil {
		state.stats.Report(logger)
		state.stats.Close()
	}
	if cleanupErr := state.provider.Cleanup(); cleanupErr != nil {
		logger.WarnTag("TTS", "provider cleanup failed: %v", cleanupErr)
	}

	return err
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	for _, step := range steps {
		if step.Execute == nil {
			return platformerrors.New(platformerrors.KindBootstrap, step.ID, "missing execute function")
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
	}
	return nil
}

// InitSteps returns the ordered initialisation sequence.
func InitSteps() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:      "logging:init",
			Title:   "Initialise logging",
			Kind:    platformerrors.KindBootstrap,
			Execute: initLoggingStep,
		},
		{
			ID:      "events:init",
			Title:   "Subscribe synthesis stats",
			Kind:    platformerrors.KindBootstrap,
			Execute: initEventsStep,
		},
		{
			ID:      "provider:init",
			Title:   "Create synthesis provider",
			Kind:    platformerrors.KindProvider,
			Execute: initProviderStep,
		},
		{
			ID:      "http:init",
			Title:   "Build HTTP router",
			Kind:    platformerrors.KindTransport,
			Execute: initRouterStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialise logging", err)
	}
	state.logger = logger

	if state.configPath != "" {
		logger.InfoTag("BOOT", "configuration loaded from %s", state.configPath)
	} else {
		logger.InfoTag("BOOT", "no configuration file found, using defaults")
	}
	return nil
}

func initEventsStep(_ context.Context, state *appState) error {
	stats, err := eventbus.NewStats()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "events:init", "failed to subscribe stats", err)
	}
	state.stats = stats
	return nil
}

func initProviderStep(_ context.Context, state *appState) error {
	name := state.config.Selected.TTS
	providerCfg := state.config.TTS[name]

	provider, err := tts.Create(providerCfg, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindProvider, "provider:init", "failed to create synthesis provider", err)
	}
	state.provider = provider

	state.logger.InfoTag("BOOT", "synthesis provider ready: %s (%s)", name, providerCfg.Type)
	return nil
}

func initRouterStep(_ context.Context, state *appState) error {
	router, err := httptransport.Build(httptransport.Options{
		Config: state.config,
		Logger: state.logger,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "http:init", "failed to build router", err)
	}

	service, err := httpspeech.NewService(state.provider, state.config.Selected.TTS, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "http:init", "failed to create speech service", err)
	}
	service.Register(router)

	state.router = router
	return nil
}

func waitForShutdown(
	ctx context.Context,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "shutdown signal received, cleaning up")

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out")
		return errors.New("shutdown timed out")
	}
	return nil
}
