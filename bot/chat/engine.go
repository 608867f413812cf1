package chat

import (
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/metrics"
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	MsgServiceUnavailable = "Sorry, there was an error processing your message. Please try again."
	MsgRestart            = "Sorry, something went wrong. Type START to begin again."
	MsgFarewell           = "Thank you for using WhatsGrapp! Type START anytime to create another store."

	historyOutput = "processed"

	maxTransitions           = 20
	defaultSideEffectTimeout = 10 * time.Second
)

// ChatEngine runs inbound messages through the step registry.
type ChatEngine struct {
	workflow Workflow
	storage  SessionStore
	locker   Locker
	timeout  time.Duration
	log      *slog.Logger
}

// NewChatEngine creates a new chat engine.
func NewChatEngine(workflow Workflow, storage SessionStore, locker Locker, log *slog.Logger) *ChatEngine {
	return &ChatEngine{
		workflow: workflow,
		storage:  storage,
		locker:   locker,
		timeout:  defaultSideEffectTimeout,
		log:      log.With(sl.Module("chat.engine")),
	}
}

// SetSideEffectTimeout bounds every step handler and enter hook.
func (e *ChatEngine) SetSideEffectTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// ProcessMessage feeds one inbound text into the phone's conversation and
// returns the prompt to show next. On a store failure the returned prompt is
// the generic failure message and the error carries the cause.
func (e *ChatEngine) ProcessMessage(ctx context.Context, phone, text string) (string, error) {
	log := e.log.With(sl.Phone(phone))

	unlock, err := e.locker.Lock(ctx, phone)
	if err != nil {
		metrics.MessageProcessed("store_error")
		return MsgServiceUnavailable, fmt.Errorf("locking session: %w", err)
	}
	defer unlock()

	session, err := e.storage.Get(ctx, phone)
	if err != nil {
		metrics.MessageProcessed("store_error")
		return MsgServiceUnavailable, fmt.Errorf("loading session: %w", err)
	}

	// No active conversation, or the previous one already finished
	if session == nil || session.CurrentStep == StepEnd {
		session, err = e.start(ctx, phone)
		if err != nil {
			metrics.MessageProcessed("store_error")
			return MsgServiceUnavailable, err
		}
	}

	step, ok := e.workflow.GetStep(session.CurrentStep)
	if !ok {
		if !IsRestartKeyword(text) {
			log.Error("chat engine: step not found", slog.String("step_id", string(session.CurrentStep)))
			metrics.MessageProcessed("unknown_step")
			return MsgRestart, nil
		}
		session, err = e.start(ctx, phone)
		if err != nil {
			metrics.MessageProcessed("store_error")
			return MsgServiceUnavailable, err
		}
		step, ok = e.workflow.GetStep(session.CurrentStep)
		if !ok {
			return MsgRestart, fmt.Errorf("initial step not found: %s", session.CurrentStep)
		}
	}

	if step.Validate != nil {
		if reason := step.Validate(text); reason != nil {
			log.Debug("chat engine: input rejected",
				slog.String("step_id", string(step.ID)),
				slog.String("reason", reason.Error()),
			)
			metrics.MessageProcessed("rejected")
			return fmt.Sprintf("❌ %s\n\n%s", reason.Error(), step.PromptFor(session)), nil
		}
	}

	session.Data.SetAnswer(step.ID, text)

	if step.Handle != nil {
		e.sideEffect(ctx, log, step.ID, func(ctx context.Context) error {
			return step.Handle(ctx, session, text)
		})
	}

	entry := HistoryEntry{
		Step:      step.ID,
		Input:     text,
		Output:    historyOutput,
		Timestamp: time.Now(),
	}

	next := step.Next.Resolve(text, &session.Data, step.ID)
	reply, next := e.enter(ctx, log, session, next)

	_, err = e.storage.Update(ctx, phone, Patch{
		CurrentStep: next,
		Data:        &session.Data,
		History:     []HistoryEntry{entry},
	})
	if err != nil {
		metrics.MessageProcessed("store_error")
		return MsgServiceUnavailable, fmt.Errorf("saving session: %w", err)
	}

	log.Debug("chat engine: transitioning",
		slog.String("from", string(step.ID)),
		slog.String("to", string(next)),
	)
	metrics.MessageProcessed("accepted")

	return reply, nil
}

// start creates a fresh session at the initial step.
func (e *ChatEngine) start(ctx context.Context, phone string) (*Session, error) {
	session, err := e.storage.Create(ctx, phone, e.workflow.InitialStep())
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	e.log.Info("chat engine: session started",
		sl.Phone(phone),
		slog.String("session_id", session.ID),
	)
	return session, nil
}

// enter moves into the given step, chaining through auto steps, and returns
// the reply text together with the step the session rests on.
func (e *ChatEngine) enter(ctx context.Context, log *slog.Logger, session *Session, id StepID) (string, StepID) {
	reply := ""
	for i := 0; i < maxTransitions && id != StepEnd; i++ {
		step, ok := e.workflow.GetStep(id)
		if !ok {
			log.Error("chat engine: next step not found", slog.String("step_id", string(id)))
			return MsgRestart, id
		}
		metrics.StepEntered(string(id))

		if step.Enter != nil {
			e.sideEffect(ctx, log, id, func(ctx context.Context) error {
				return step.Enter(ctx, session)
			})
		}
		reply = step.PromptFor(session)

		if !step.Auto {
			return reply, id
		}
		id = step.Next.Resolve("", &session.Data, id)
	}

	if id != StepEnd {
		if step, ok := e.workflow.GetStep(id); ok && step.Auto {
			log.Error("chat engine: auto step chain too long", slog.String("step_id", string(id)))
		}
	}
	if reply == "" {
		reply = MsgFarewell
	}
	return reply, id
}

// sideEffect runs a handler with a bounded timeout. Failures are logged and
// counted; they never stop the conversation.
func (e *ChatEngine) sideEffect(ctx context.Context, log *slog.Logger, id StepID, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error("chat engine: step handler panic",
				slog.String("step_id", string(id)),
				slog.Any("panic", r),
			)
			metrics.SideEffectFailed(string(id))
		}
	}()

	if err := fn(ctx); err != nil {
		log.Warn("chat engine: step side effect failed",
			slog.String("step_id", string(id)),
			sl.Err(err),
		)
		metrics.SideEffectFailed(string(id))
	}
}
