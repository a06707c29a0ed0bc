// Package bot wires the billing flows, commands, and callbacks into the
// telegram transport core.
package bot

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"freelancebot/internal/api"
	"freelancebot/internal/auth"
	"freelancebot/internal/config"
	"freelancebot/internal/flow"
	"freelancebot/internal/session"
	tg "freelancebot/internal/telegram"
	"freelancebot/internal/telegram/callbacks"
	tghelpers "freelancebot/internal/telegram/helpers"
	"freelancebot/internal/telegram/keyboard"
	"freelancebot/internal/telegram/router"
)

// Callback uniques used by inline keyboards.
const (
	cbFlowSelect = "flow_select"
	cbFlowStart  = "flow_start"
	cbFlowCancel = "flow_cancel"
	cbJobApply   = "job_apply"
)

// Backend is the slice of the billing API the bot uses.
type Backend interface {
	Login(ctx context.Context, in api.LoginInput) (*api.LoginResult, error)
	CreateClient(ctx context.Context, token string, in api.ClientInput) (*api.ClientRecord, error)
	ListClients(ctx context.Context, token string) ([]api.ClientRecord, error)
	CreateContract(ctx context.Context, token string, in api.ContractInput) (*api.Contract, error)
	CreateInvoice(ctx context.Context, token string, in api.InvoiceInput) (*api.Invoice, error)
	ListInvoices(ctx context.Context, token string) ([]api.Invoice, error)
	CreateExpense(ctx context.Context, token string, in api.ExpenseInput) (*api.Expense, error)
	CreateGig(ctx context.Context, token string, in api.GigInput) (*api.Gig, error)
	GetHunterProfile(ctx context.Context, token string) (*api.HunterProfile, error)
	UpdateHunterProfile(ctx context.Context, token string, in api.HunterProfileInput) (*api.HunterProfile, error)
	ListJobs(ctx context.Context, token string) ([]api.Job, error)
	ApplyToJob(ctx context.Context, token string, jobID int64) (*api.Job, error)
}

// AccountStore is the slice of the auth repository the bot uses.
type AccountStore interface {
	Find(ctx context.Context, telegramID int64) (*auth.Account, error)
	Upsert(ctx context.Context, acc *auth.Account) error
	Delete(ctx context.Context, telegramID int64) error
}

// App holds the bot's wired dependencies.
type App struct {
	cfg      *config.Config
	backend  Backend
	accounts AccountStore
	sessions *session.Store
	engine   *flow.Engine
}

// New assembles the application: session store, flow engine with all flow
// definitions, and the command/callback registry.
func New(cfg *config.Config, backend Backend, accounts AccountStore, sessions *session.Store) (*App, error) {
	a := &App{
		cfg:      cfg,
		backend:  backend,
		accounts: accounts,
		sessions: sessions,
	}
	eng, err := flow.NewEngine(sessions, a.flowDefinitions()...)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	a.engine = eng
	return a, nil
}

// Engine exposes the flow engine (used by the text router).
func (a *App) Engine() *flow.Engine { return a.engine }

// flowDispatch adapts the engine to the text router's Flow interface.
type flowDispatch struct{ app *App }

func (d flowDispatch) InProgress(userID int64) bool { return d.app.engine.InProgress(userID) }
func (d flowDispatch) Clear(userID int64)           { d.app.engine.Cancel(userID) }

func (d flowDispatch) HandleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := d.app.engine.Input(ctx, c.Sender().ID, c.Text())
	if err != nil {
		return err
	}
	return d.app.sendReply(c, reply)
}

// sendReply renders an engine reply. Prompts carry a cancel button; select
// steps additionally carry their option buttons. Terminal replies are plain.
func (a *App) sendReply(c tele.Context, reply flow.Reply) error {
	if reply.Text == "" {
		return nil
	}
	if reply.Done {
		return tghelpers.SendText(c, reply.Text)
	}
	if len(reply.Options) == 0 {
		markup := keyboard.SingleCancelMarkup(cbFlowCancel)
		return tghelpers.SendText(c, reply.Text, &tele.SendOptions{ReplyMarkup: markup})
	}
	btns := make([]keyboard.InlineBtn, 0, len(reply.Options))
	for _, opt := range reply.Options {
		btns = append(btns, keyboard.InlineBtn{
			Text:   opt.Label,
			Unique: cbFlowSelect,
			Data:   opt.Value,
		})
	}
	markup := keyboard.InlineButtonsNPerRow(btns, 2)
	cancel := keyboard.CancelButton(markup, cbFlowCancel)
	markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{*cancel.Inline()})
	return tghelpers.SendText(c, reply.Text, &tele.SendOptions{ReplyMarkup: markup})
}

// startFlow begins a flow for the sender, replacing any live session.
func (a *App) startFlow(c tele.Context, name string) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.engine.Start(ctx, c.Sender().ID, name)
	if err != nil {
		return err
	}
	return a.sendReply(c, reply)
}

// accountKey is the telebot context key withAccount stores the resolved
// account under.
const accountKey = "account"

// withAccount gates a command on a linked billing account and exposes the
// account to the wrapped handler via the telebot context. A rejected command
// still abandons any in-flight flow, like every other top-level command.
func (a *App) withAccount(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		acc, err := a.requireAccount(c)
		if err != nil {
			return err
		}
		if acc == nil {
			a.engine.Cancel(c.Sender().ID)
			return nil
		}
		c.Set(accountKey, acc)
		return next(c)
	}
}

// account returns the sender's account resolved by withAccount, or nil when
// the handler runs outside that wrap.
func account(c tele.Context) *auth.Account {
	acc, _ := c.Get(accountKey).(*auth.Account)
	return acc
}

// requireAccount resolves the sender's linked backend account. When there is
// none it messages the user and returns (nil, nil); callers stop silently.
func (a *App) requireAccount(c tele.Context) (*auth.Account, error) {
	ctx := tghelpers.BuildContext(c)
	acc, err := a.accounts.Find(ctx, c.Sender().ID)
	if err == auth.ErrNotLinked {
		return nil, tghelpers.SendText(c, "You are not logged in yet. Use /login to link your billing account.")
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Routes builds the full route set: commands, the text dispatcher, and the
// callback router, wired with the shared middleware chain.
func (a *App) Routes(reg *tg.Registry) []tg.Route {
	a.registerCommands(reg)
	a.registerCallbacks(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:     a.cfg.Telegram.AdminID,
		RequireAuth: a.withAccount,
	})
	routes = append(routes, router.TextRoutes(flowDispatch{app: a}, reg, router.TextOptions{
		UnknownText: func(c tele.Context) error {
			return tghelpers.SendText(c, "I didn't catch that. Use /help to see what I can do.")
		},
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	return routes
}

func (a *App) registerCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback(cbFlowSelect, func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		reply, err := a.engine.Select(ctx, c.Sender().ID, callbacks.CallbackPayload(c))
		if err != nil {
			return err
		}
		return a.sendReply(c, reply)
	})

	_ = reg.RegisterCallback(cbFlowStart, func(c tele.Context) error {
		name := callbacks.CallbackPayload(c)
		if name != flowLogin {
			acc, err := a.requireAccount(c)
			if err != nil {
				return err
			}
			if acc == nil {
				return nil
			}
		}
		return a.startFlow(c, name)
	})

	_ = reg.RegisterCallback(cbFlowCancel, func(c tele.Context) error {
		if a.engine.Cancel(c.Sender().ID) {
			return tghelpers.EditOrSendMD(c, "Flow cancelled. Nothing was sent.")
		}
		return tghelpers.EditOrSendMD(c, "Nothing to cancel.")
	})

	_ = reg.RegisterCallback(cbJobApply, a.applyToJob)
}
