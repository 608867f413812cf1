package bot

import (
	"WhatsGrapp/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

// AdminCore answers the admin commands.
type AdminCore interface {
	AdminStats(ctx context.Context) (string, error)
	CleanupSessions(ctx context.Context) (int64, error)
}

// TgBot is the operator bot: it forwards log alerts to the admin chat and
// answers a couple of maintenance commands.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminId     int64
	core        AdminCore
}

func NewTgBot(botName, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) SetCore(core AdminCore) {
	t.core = core
}

// Start polls for updates until ctx is done.
func (t *TgBot) Start(ctx context.Context) error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Warn("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("stats", t.adminOnly(t.handleStats)))
	dispatcher.AddHandler(handlers.NewCommand("cleanup", t.adminOnly(t.handleCleanup)))

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	<-ctx.Done()
	return updater.Stop()
}

func (t *TgBot) adminOnly(next handlers.Response) handlers.Response {
	return func(b *tgbotapi.Bot, ctx *ext.Context) error {
		if ctx.EffectiveChat == nil || ctx.EffectiveChat.Id != t.adminId {
			t.log.Warn("command from non-admin chat")
			return nil
		}
		if t.core == nil {
			t.plainResponse(t.adminId, "core is not ready")
			return nil
		}
		return next(b, ctx)
	}
}

func (t *TgBot) handleStats(_ *tgbotapi.Bot, _ *ext.Context) error {
	stats, err := t.core.AdminStats(context.Background())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	t.plainResponse(t.adminId, stats)
	return nil
}

func (t *TgBot) handleCleanup(_ *tgbotapi.Bot, _ *ext.Context) error {
	removed, err := t.core.CleanupSessions(context.Background())
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	t.plainResponse(t.adminId, fmt.Sprintf("Removed %d expired sessions", removed))
	return nil
}

// SendMessage sends an alert to the admin chat.
func (t *TgBot) SendMessage(msg string) {
	t.plainResponse(t.adminId, msg)
}

func (t *TgBot) plainResponse(chatId int64, text string) {

	// LLM answers use ** for bold text, so we need to replace it
	text = strings.ReplaceAll(text, "**", "*")
	text = strings.ReplaceAll(text, "![", "[")

	// Send the response back to the user
	sanitized := sanitize(text, false)

	if sanitized != "" {
		_, err := t.api.SendMessage(chatId, sanitized, &tgbotapi.SendMessageOpts{
			ParseMode: "MarkdownV2",
		})
		if err != nil {
			t.log.With(
				slog.Int64("id", chatId),
			).Warn("sending message", sl.Err(err))
			_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
			if err != nil {
				t.log.With(
					slog.Int64("id", chatId),
				).Error("sending safe message", sl.Err(err))
			}
		}
	} else {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
	}
}

func sanitize(input string, preserveLinks bool) string {
	// Define a list of reserved characters that need to be escaped
	reservedChars := "\\`_{}#+-.!|()[]=>~"
	if preserveLinks {
		reservedChars = "\\`_{}#+-.!|=>~"
	}

	var sb strings.Builder
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(char)
	}
	return sb.String()
}
