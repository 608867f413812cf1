package cmd

import (
	"WhatsGrapp/ai/gemini"
	"WhatsGrapp/ai/gpt"
	"WhatsGrapp/ai/intent"
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/bot/chat/onboarding"
	chatwa "WhatsGrapp/bot/chat/whatsapp"
	"WhatsGrapp/impl/core"
	"WhatsGrapp/internal/config"
	repository "WhatsGrapp/internal/database"
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/lock"
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// app is the wired object graph shared by the commands.
type app struct {
	conf     *config.Config
	log      *slog.Logger
	core     *core.Core
	engine   *chat.ChatEngine
	workflow *onboarding.OnboardingWorkflow
	redis    *redis.Client
}

type wireOptions struct {
	// memory forces in-process storage and locks
	memory bool
	sender chatwa.MessageSender
}

func wire(ctx context.Context, conf *config.Config, log *slog.Logger, opts wireOptions) (*app, error) {
	a := &app{conf: conf, log: log}

	handler := core.New(log)
	handler.SetAuthKey(conf.Listen.ApiKey)
	handler.SetAppURL(conf.Chat.AppURL)

	var sessions chat.SessionStore
	if conf.Mongo.Enabled && !opts.memory {
		db, err := repository.NewMongoClient(conf, log)
		if err != nil {
			return nil, fmt.Errorf("mongo client: %w", err)
		}
		if err = db.EnsureIndexes(ctx); err != nil {
			log.Warn("mongo indexes", sl.Err(err))
		}
		handler.SetRepository(db)
		sessions = chat.NewMongoSessionStore(db, conf.Chat.SessionTTL)
		log.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		handler.SetRepository(repository.NewMemory())
		sessions = chat.NewMemorySessionStore(conf.Chat.SessionTTL)
		log.Info("using in-memory storage")
	}
	handler.SetSessionStore(sessions)

	var locker chat.Locker = lock.NewLocal()
	if conf.Redis.Enabled && !opts.memory {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		redisLock := lock.NewRedis(a.redis, conf.Redis.Prefix, log)
		redisLock.SetTiming(conf.Redis.LockTTL, conf.Redis.LockWait)
		locker = redisLock
		log.Info("redis lock initialized", slog.String("addr", conf.Redis.Addr))
	}

	provider, err := newProvider(conf, log)
	if err != nil {
		log.Warn("llm provider unavailable, using rules", sl.Err(err))
	}
	handler.SetResponder(intent.NewResponder(provider, log))

	var notifier onboarding.Notifier
	if opts.sender != nil {
		notifier = chatwa.NewNotifier(opts.sender, handler)
	}

	a.workflow = onboarding.NewOnboardingWorkflow(handler, handler, notifier, conf.Chat.AppURL, log)
	if err = chat.ValidateWorkflow(a.workflow); err != nil {
		return nil, fmt.Errorf("onboarding workflow: %w", err)
	}

	a.engine = chat.NewChatEngine(a.workflow, sessions, locker, log)
	a.engine.SetSideEffectTimeout(conf.Chat.SideEffectTimeout)
	handler.SetMessageProcessor(a.engine)

	a.core = handler
	return a, nil
}

// newProvider picks OpenAI, then Gemini; nil when no key is configured.
func newProvider(conf *config.Config, log *slog.Logger) (intent.Provider, error) {
	switch {
	case conf.OpenAI.ApiKey != "":
		log.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("openai provider initialized")
		return gpt.NewClient(conf, log), nil
	case conf.Gemini.ApiKey != "":
		client, err := gemini.NewClient(conf, log)
		if err != nil {
			return nil, err
		}
		log.With(
			sl.Secret("gemini_key", conf.Gemini.ApiKey),
			slog.String("model", conf.Gemini.Model),
		).Info("gemini provider initialized")
		return client, nil
	}
	return nil, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
