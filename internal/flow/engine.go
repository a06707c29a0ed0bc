package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"freelancebot/internal/logger"
	"freelancebot/internal/session"
)

// SkipToken is the input that skips an optional step.
const SkipToken = "/skip"

const restartHint = "No active flow here. Please restart it from the menu or /help."

// Reply is what the engine wants shown to the user after processing an event.
type Reply struct {
	Text string
	// Options, when non-empty, should be rendered as inline select buttons.
	Options []Option
	// Done reports that the flow finished (successfully or not) and the
	// session is cleared.
	Done bool
}

type stepRef struct {
	def *Definition
	idx int
}

// Engine interprets flow definitions against the session store. Definitions
// are registered once at startup; afterwards the engine is safe for
// concurrent use. Events for one user are serialized through a per-user
// lock: the chat transport runs each handler in its own goroutine, so two
// quick messages from the same user would otherwise race on the session's
// state and data map.
type Engine struct {
	store   *session.Store
	flows   map[string]*Definition
	byState map[string]stepRef

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewEngine builds an engine over the given store and definitions.
// Every step's state tag must be unique across all flows.
func NewEngine(store *session.Store, defs ...*Definition) (*Engine, error) {
	e := &Engine{
		store:   store,
		flows:   make(map[string]*Definition),
		byState: make(map[string]stepRef),
		users:   make(map[int64]*sync.Mutex),
	}
	for _, def := range defs {
		if err := e.register(def); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) register(def *Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("flow: definition without a name")
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("flow %s: no steps", def.Name)
	}
	if def.Finalize == nil {
		return fmt.Errorf("flow %s: no finalize action", def.Name)
	}
	if _, exists := e.flows[def.Name]; exists {
		return fmt.Errorf("flow %s: duplicate definition", def.Name)
	}
	for i, step := range def.Steps {
		if step.State == "" || step.Field == "" {
			return fmt.Errorf("flow %s: step %d missing state or field", def.Name, i)
		}
		if _, exists := e.byState[step.State]; exists {
			return fmt.Errorf("flow %s: duplicate state tag %q", def.Name, step.State)
		}
		if step.Kind == KindSelect && len(step.Options) == 0 {
			return fmt.Errorf("flow %s: select step %q has no options", def.Name, step.State)
		}
		e.byState[step.State] = stepRef{def: def, idx: i}
	}
	e.flows[def.Name] = def
	return nil
}

// userLock returns the mutex serializing this user's events. Entries are
// never removed; dropping one while another goroutine waits on it would let
// two events into the critical section.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.users[userID]
	if !ok {
		l = &sync.Mutex{}
		e.users[userID] = l
	}
	return l
}

// InProgress reports whether the user has a live conversation.
func (e *Engine) InProgress(userID int64) bool {
	_, ok := e.store.Get(userID)
	return ok
}

// Cancel drops the user's conversation, if any, without a remote call.
// It reports whether a session existed.
func (e *Engine) Cancel(userID int64) bool {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	_, ok := e.store.Get(userID)
	e.store.Clear(userID)
	return ok
}

// Start begins the named flow for the user, replacing any live session.
func (e *Engine) Start(ctx context.Context, userID int64, flowName string) (Reply, error) {
	def, ok := e.flows[flowName]
	if !ok {
		return Reply{}, fmt.Errorf("flow: unknown flow %q", flowName)
	}
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()
	e.store.Set(userID, &session.Session{
		Flow:  def.Name,
		State: def.Steps[0].State,
		Data:  make(map[string]any),
	})
	logger.Debug(ctx, "service.flows", "flow.start",
		slog.Int64("user_id", userID),
		slog.String("flow", def.Name),
		slog.String("state", def.Steps[0].State),
	)
	return e.promptFor(def.Steps[0]), nil
}

// Input feeds a text message into the user's current step.
func (e *Engine) Input(ctx context.Context, userID int64, text string) (Reply, error) {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	sess, step, ok := e.current(ctx, userID)
	if !ok {
		return Reply{Text: restartHint, Done: true}, nil
	}

	if step.Kind == KindSelect {
		r := e.promptFor(step)
		r.Text = "Please pick one of the options below.\n" + r.Text
		return r, nil
	}

	if strings.TrimSpace(text) == SkipToken {
		if !step.Optional {
			r := e.promptFor(step)
			r.Text = "This step can't be skipped.\n" + r.Text
			return r, nil
		}
		logger.Debug(ctx, "service.flows", "flow.skip",
			slog.Int64("user_id", userID),
			slog.String("flow", sess.Flow),
			slog.String("state", step.State),
			slog.String("field", step.Field),
		)
		return e.advance(ctx, userID, sess, step, ""), nil
	}

	validate := step.Validate
	if validate == nil {
		validate = validatorFor(step.Kind)
	}
	value, err := validate(text)
	if err != nil {
		// State and collected data stay untouched; only re-prompt.
		logger.Debug(ctx, "service.flows", "flow.invalid",
			slog.Int64("user_id", userID),
			slog.String("flow", sess.Flow),
			slog.String("state", step.State),
			slog.String("input", logger.SanitizeLimit(text, 64)),
		)
		return Reply{Text: err.Error()}, nil
	}

	return e.advance(ctx, userID, sess, step, value), nil
}

// Select feeds a callback payload into the user's current select step. It
// bypasses text validation: the payload itself encodes the chosen value.
func (e *Engine) Select(ctx context.Context, userID int64, value string) (Reply, error) {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	sess, step, ok := e.current(ctx, userID)
	if !ok {
		return Reply{Text: restartHint, Done: true}, nil
	}
	if step.Kind != KindSelect {
		return e.promptFor(step), nil
	}
	v, err := validateOption(step, value)
	if err != nil {
		return Reply{Text: err.Error(), Options: step.Options}, nil
	}
	logger.Debug(ctx, "service.flows", "flow.select",
		slog.Int64("user_id", userID),
		slog.String("flow", sess.Flow),
		slog.String("state", step.State),
		slog.String("field", step.Field),
	)
	return e.advance(ctx, userID, sess, step, v), nil
}

func (e *Engine) current(ctx context.Context, userID int64) (*session.Session, Step, bool) {
	sess, ok := e.store.Get(userID)
	if !ok {
		return nil, Step{}, false
	}
	ref, ok := e.byState[sess.State]
	if !ok {
		// A state tag no longer known to any flow; drop the session.
		logger.Warn(ctx, "service.flows", "flow.state.unknown",
			slog.Int64("user_id", userID),
			slog.String("flow", sess.Flow),
			slog.String("state", sess.State),
		)
		e.store.Clear(userID)
		return nil, Step{}, false
	}
	return sess, ref.def.Steps[ref.idx], true
}

func (e *Engine) advance(ctx context.Context, userID int64, sess *session.Session, step Step, value any) Reply {
	sess.Data[step.Field] = value

	ref := e.byState[step.State]
	next := ref.idx + 1
	if next < len(ref.def.Steps) {
		sess.State = ref.def.Steps[next].State
		e.store.Touch(userID)
		logger.Debug(ctx, "service.flows", "flow.step",
			slog.Int64("user_id", userID),
			slog.String("flow", sess.Flow),
			slog.String("state", sess.State),
		)
		return e.promptFor(ref.def.Steps[next])
	}

	// Terminal step: hand the collected data to the finalize action and
	// clear the session either way. Failures are not retried; the user
	// restarts the flow.
	data := make(map[string]any, len(sess.Data))
	for k, v := range sess.Data {
		data[k] = v
	}
	e.store.Clear(userID)

	text, err := ref.def.Finalize(ctx, userID, data)
	if err != nil {
		logger.Error(ctx, "service.flows", "flow.finalize.failed",
			slog.Int64("user_id", userID),
			slog.String("flow", sess.Flow),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return Reply{Text: err.Error(), Done: true}
	}
	logger.Info(ctx, "service.flows", "flow.finalize",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("flow", sess.Flow),
	)
	return Reply{Text: text, Done: true}
}

func (e *Engine) promptFor(step Step) Reply {
	text := step.Prompt
	if step.Optional {
		text += "\nSend /skip to leave this empty."
	}
	return Reply{Text: text, Options: step.Options}
}
