package cmd

import (
	"WhatsGrapp/bot"
	"WhatsGrapp/bot/whatsapp"
	"WhatsGrapp/internal/http-server/api"
	whatsappHandlers "WhatsGrapp/internal/http-server/handlers/whatsapp"
	"WhatsGrapp/internal/lib/logger"
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/metrics"
	"WhatsGrapp/internal/service/cleanup"
	"WhatsGrapp/internal/ws"
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the WhatsApp webhook and the session cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	conf, lg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting whatsgrapp", slog.String("config", configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	metrics.Init()

	waBot := whatsapp.NewWhatsAppBot(conf.WhatsApp, lg)
	a, err := wire(ctx, conf, lg, wireOptions{sender: waBot})
	if err != nil {
		return err
	}
	defer a.close()

	hub := ws.NewHub(lg)
	a.core.SetBroadcaster(hub)

	waBot.SetProcessor(a.engine)
	waBot.SetListener(a.core)

	var webhook whatsappHandlers.Bot
	if conf.WhatsApp.VerifyToken != "" || conf.WhatsApp.AccessToken != "" {
		webhook = waBot
	} else {
		lg.Warn("whatsapp not configured, webhook disabled")
	}

	server := api.New(conf, lg, a.core, webhook, hub)
	cleaner := cleanup.New(a.core, conf.Cleanup.Schedule, lg)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		return server.Run(gCtx)
	})
	g.Go(func() error {
		return cleaner.Run(gCtx)
	})
	if tgBot != nil {
		tgBot.SetCore(a.core)
		g.Go(func() error {
			if err := tgBot.Start(gCtx); err != nil {
				lg.Error("telegram bot error", sl.Err(err))
			}
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		lg.Error("service stopped", sl.Err(err))
		return err
	}
	lg.Info("service stopped")
	return nil
}
