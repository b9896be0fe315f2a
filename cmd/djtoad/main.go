// cmd/djtoad/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "djtoad/internal/command/core"
	_ "djtoad/internal/command/media"

	"djtoad/internal/command/music"
	"djtoad/internal/config"
	"djtoad/internal/discord"
	"djtoad/internal/logger"
	"djtoad/internal/middleware"
	"djtoad/internal/music/catalog"
	"djtoad/internal/music/player"
	"djtoad/internal/music/resolver"
	v "djtoad/internal/version"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, loaded, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	root, closeLog := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, File: cfg.LogFile})
	defer closeLog()
	log.Logger = root

	if len(loaded) == 0 {
		log.Info().Msg("no .env file found, using the environment only")
	}
	log.Info().Str("version", v.AppVersion).Msgf("Starting %s bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := resolver.NewPool(
		resolver.NewChain(root,
			resolver.YTDLP{Proxy: cfg.YouTubeProxy},
			resolver.NewKKDAI(cfg.YouTubeProxy, root),
		),
		cfg.ResolveWorkers, cfg.ResolveTimeout, root,
	)
	defer pool.Close()

	songs := catalog.New(catalog.YTMusic{}, catalog.Mix{Proxy: cfg.YouTubeProxy}, catalog.Options{
		Limit:  cfg.RecommendationCap,
		Logger: root,
	})

	bot, err := discord.New(cfg, root)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	ctrl := player.New(player.Options{
		Connector:          bot.Voice(),
		Catalog:            songs,
		Resolver:           pool,
		Reporter:           bot.Reporter(),
		MaxAdvanceAttempts: cfg.MaxAdvanceAttempts,
		Logger:             root,
	})
	bot.OnVoiceLost(ctrl.Disconnected)

	music.Register(bot, ctrl,
		middleware.WithRecover(),
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Discord bot error")
		}
	}

	// Sessions go first so voice connections close while the gateway is up.
	stopCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := ctrl.Close(stopCtx); err != nil {
		log.Warn().Err(err).Msg("player did not stop cleanly")
	}
	cancel()
	if err, ok := <-errCh; ok && err != nil {
		log.Error().Err(err).Msg("Discord bot error")
	}

	log.Info().Msg("Discord bot exited cleanly")
}
