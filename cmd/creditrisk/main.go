package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credit-risk/internal/cfg"
	"credit-risk/internal/dashboard"
	"credit-risk/internal/metrics"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"

	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.ConfigureLogging(c, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	names := ml.ArtifactNames{Model: c.ModelFile, Features: c.FeaturesFile}
	rc := initializeContext(c, names, mw)

	srv := dashboard.NewServer(risk.NewAssessor(rc, mw), mw, dashboard.Config{
		Port:          c.ListenPort,
		ArtifactNames: names,
	})
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server start failed")
	}

	waitForShutdown(ctx, cancel)

	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("server did not stop cleanly")
	}
}

// initializeContext loads the artifacts once and picks the attribution
// provider. Missing or broken artifacts leave the service running in
// degraded mode.
func initializeContext(c cfg.Settings, names ml.ArtifactNames, mw *metrics.MetricsWrapper) *risk.Context {
	arts := ml.LoadArtifacts(c.ArtifactDir, names)
	provider := ml.SelectProvider(c.Explainer, arts.Model, arts.Features)
	rc := risk.NewContext(arts, provider, risk.DefaultLabels)

	state := rc.LoadState()
	if state.Loaded {
		mw.SetModelState(true, time.Since(rc.ModelTime()).Seconds())
		log.Info().
			Strs("top_features", ml.TopFeatures(rc.Importance(), 3)).
			Str("explainer", rc.ProviderName()).
			Msg("credit model ready")
	} else {
		mw.SetModelState(false, 0)
		log.Warn().
			Err(rc.LoadErr()).
			Bool("corrupt", state.Corrupt).
			Strs("fallback_features", rc.Schema()).
			Msg("continuing without model, predictions disabled")
	}

	return rc
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()
}
