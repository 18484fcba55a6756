package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hisui-dev/xmgame-autorenew/internal/browser"
	"github.com/hisui-dev/xmgame-autorenew/internal/capture"
	"github.com/hisui-dev/xmgame-autorenew/internal/config"
	"github.com/hisui-dev/xmgame-autorenew/internal/journal"
	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
	"github.com/hisui-dev/xmgame-autorenew/internal/session"
	"github.com/hisui-dev/xmgame-autorenew/internal/wizard"
)

// Process exit codes; schedulers branch on these.
const (
	exitSuccess           = 0
	exitError             = 1
	exitSkipped           = 2
	exitAuthNotConfigured = 3
	exitAuthFailed        = 4
	exitEntryNotFound     = 5
	exitSurfaceNotFound   = 6
	exitSubmitNotFound    = 7
)

func main() {
	os.Exit(run())
}

// run holds all the defers so teardown happens on every exit path.
func run() int {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	jnl := journal.New(cfg.LogPath, cfg.Timezone, log.With().Str("comp", "journal").Logger())
	if last, skip := jnl.ShouldSkip(cfg.MinInterval, cfg.ForceRenew); skip {
		log.Info().Time("last_success", last).Dur("min_interval", cfg.MinInterval).
			Msg("last success too recent, skipping run")
		return exitSkipped
	}

	// Checked before any browser work so a misconfigured deployment
	// fails fast without touching the network.
	if !cfg.HasCookie() && !cfg.HasCredentials() {
		log.Error().Msg("neither XSERVER_COOKIE nor XSERVER_EMAIL/XSERVER_PASSWORD is set")
		return exitAuthNotConfigured
	}

	launcher, err := browser.NewLauncher(ctx, cfg.Headless)
	if err != nil {
		log.Error().Err(err).Msg("browser init")
		return exitError
	}
	defer launcher.Close()

	ctrl, err := launcher.NewController(ctx, cfg.NavTimeout)
	if err != nil {
		log.Error().Err(err).Msg("browser controller")
		return exitError
	}
	defer ctrl.Close(ctx)

	rec := capture.NewRecorder(ctrl, cfg.ScreenshotDir, cfg.PagesDir, log.With().Str("comp", "capture").Logger())
	chain := locate.NewChain(cfg.ActionTimeout, log.With().Str("comp", "locate").Logger())

	establisher := session.NewEstablisher(ctrl, chain, cfg, rec, log.With().Str("comp", "session").Logger())
	if err := establisher.Establish(ctx); err != nil {
		rec.Checkpoint(ctx, "auth_failed")
		rec.DumpHTML(ctx, "auth_failed")
		log.Error().Err(err).Msg("session not authenticated")
		if errors.Is(err, session.ErrNotConfigured) {
			return exitAuthNotConfigured
		}
		return exitAuthFailed
	}

	driver := wizard.NewDriver(ctrl, chain, cfg, rec, log.With().Str("comp", "wizard").Logger())
	if err := driver.Run(ctx); err != nil {
		log.Error().Err(err).Msg("renewal wizard failed")
		switch {
		case errors.Is(err, wizard.ErrEntryNotFound):
			return exitEntryNotFound
		case errors.Is(err, wizard.ErrSurfaceNotFound):
			return exitSurfaceNotFound
		case errors.Is(err, wizard.ErrSubmitNotFound):
			return exitSubmitNotFound
		default:
			return exitError
		}
	}

	if err := jnl.RecordSuccess(); err != nil {
		log.Error().Err(err).Msg("write outcome record")
		return exitError
	}
	log.Info().Int("hours", cfg.RenewHours).Msg("renewal run completed")
	return exitSuccess
}
