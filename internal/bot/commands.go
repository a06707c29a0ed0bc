package bot

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"freelancebot/internal/logger"
	tg "freelancebot/internal/telegram"
	"freelancebot/internal/telegram/callbacks"
	"freelancebot/internal/telegram/commands"
	tghelpers "freelancebot/internal/telegram/helpers"
	"freelancebot/internal/telegram/keyboard"
)

const helpText = `What I can do:

/newclient — add a billing client
/newcontract — set up a contract
/newinvoice — issue an invoice
/newexpense — record an expense
/newgig — track a gig
/hunter — update your job-hunter profile

/clients — list your clients
/invoices — list your invoices
/jobs — matched job offers
/profile — show your hunter profile

/login — link your billing account
/logout — unlink it
/cancel — abandon the current flow

While in a flow, send /skip to leave an optional field empty.`

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.abandoning(a.handleStart),
		Description: "Main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.abandoning(a.handleHelp),
		Description: "Show available commands",
		Aliases:     []string{"h"},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Abandon the current flow",
	})
	reg.RegisterCommand("/login", commands.Command{
		Handler:     a.abandoning(func(c tele.Context) error { return a.startFlow(c, flowLogin) }),
		Description: "Link your billing account",
	})
	reg.RegisterCommand("/logout", commands.Command{
		Handler:     a.abandoning(a.handleLogout),
		Description: "Unlink your billing account",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.abandoning(a.handleStats),
		Description: "Runtime stats",
		AdminOnly:   true,
		Hidden:      true,
	})

	entry := func(flowName, desc string) commands.Command {
		return commands.Command{
			Handler: a.abandoning(func(c tele.Context) error {
				return a.startFlow(c, flowName)
			}),
			Description:  desc,
			RequiresAuth: true,
		}
	}
	reg.RegisterCommand("/newclient", entry(flowClient, "Add a billing client"))
	reg.RegisterCommand("/newcontract", entry(flowContract, "Set up a contract"))
	reg.RegisterCommand("/newinvoice", entry(flowInvoice, "Issue an invoice"))
	reg.RegisterCommand("/newexpense", entry(flowExpense, "Record an expense"))
	reg.RegisterCommand("/newgig", entry(flowGig, "Track a gig"))
	reg.RegisterCommand("/hunter", entry(flowHunter, "Update your hunter profile"))

	reg.RegisterCommand("/clients", commands.Command{
		Handler:      a.abandoning(a.handleListClients),
		Description:  "List your clients",
		RequiresAuth: true,
	})
	reg.RegisterCommand("/invoices", commands.Command{
		Handler:      a.abandoning(a.handleListInvoices),
		Description:  "List your invoices",
		RequiresAuth: true,
	})
	reg.RegisterCommand("/jobs", commands.Command{
		Handler:      a.abandoning(a.handleListJobs),
		Description:  "Matched job offers",
		RequiresAuth: true,
	})
	reg.RegisterCommand("/profile", commands.Command{
		Handler:      a.abandoning(a.handleProfile),
		Description:  "Show your hunter profile",
		RequiresAuth: true,
	})

	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, "I didn't catch that. Use /help to see what I can do.")
	})
}

// abandoning drops any in-flight conversation before running a top-level
// command. Last writer wins; no remote call was made for the dropped flow.
func (a *App) abandoning(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		a.engine.Cancel(c.Sender().ID)
		return h(c)
	}
}

func (a *App) handleStart(c tele.Context) error {
	markup := keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		{Text: "➕ Client", Unique: cbFlowStart, Data: flowClient},
		{Text: "📝 Contract", Unique: cbFlowStart, Data: flowContract},
		{Text: "🧾 Invoice", Unique: cbFlowStart, Data: flowInvoice},
		{Text: "💸 Expense", Unique: cbFlowStart, Data: flowExpense},
		{Text: "🛠 Gig", Unique: cbFlowStart, Data: flowGig},
		{Text: "🎯 Hunter profile", Unique: cbFlowStart, Data: flowHunter},
	}, 2)
	text := "Hi! I'm your freelance billing assistant.\n" +
		"Pick an action below, or /help for the full command list."
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

func (a *App) handleCancel(c tele.Context) error {
	if a.engine.Cancel(c.Sender().ID) {
		return tghelpers.SendText(c, "Flow cancelled. Nothing was sent.")
	}
	return tghelpers.SendText(c, "Nothing to cancel.")
}

func (a *App) handleStats(c tele.Context) error {
	return tghelpers.SendText(c, fmt.Sprintf("Active sessions: %d", a.sessions.Len()))
}

func (a *App) handleLogout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := a.accounts.Delete(ctx, c.Sender().ID); err != nil {
		return err
	}
	logger.Info(ctx, "service.auth", "account.unlinked",
		slog.Int64("user_id", c.Sender().ID),
	)
	return tghelpers.SendText(c, "Your billing account was unlinked.")
}

func (a *App) handleProfile(c tele.Context) error {
	acc := account(c)
	if acc == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	profile, err := a.backend.GetHunterProfile(ctx, acc.APIToken)
	if err != nil {
		return tghelpers.SendText(c, err.Error())
	}
	if profile == nil || profile.Headline == "" {
		return tghelpers.SendText(c, "No hunter profile yet. Set one up with /hunter.")
	}
	return tghelpers.SendMD(c, formatHunterProfile(profile))
}

func (a *App) handleListClients(c tele.Context) error {
	acc := account(c)
	if acc == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	list, err := a.backend.ListClients(ctx, acc.APIToken)
	if err != nil {
		return tghelpers.SendText(c, err.Error())
	}
	return tghelpers.SendMD(c, formatClients(list))
}

func (a *App) handleListInvoices(c tele.Context) error {
	acc := account(c)
	if acc == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	list, err := a.backend.ListInvoices(ctx, acc.APIToken)
	if err != nil {
		return tghelpers.SendText(c, err.Error())
	}
	return tghelpers.SendMD(c, formatInvoices(list))
}

func (a *App) handleListJobs(c tele.Context) error {
	acc := account(c)
	if acc == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	list, err := a.backend.ListJobs(ctx, acc.APIToken)
	if err != nil {
		return tghelpers.SendText(c, err.Error())
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, "No matched jobs yet. Keep your /hunter profile up to date.")
	}

	btns := make([]keyboard.InlineBtn, 0, len(list))
	for _, job := range list {
		btns = append(btns, keyboard.InlineBtn{
			Text:   "Apply: " + job.Title,
			Unique: cbJobApply,
			Data:   formatID(job.ID),
		})
	}
	markup := keyboard.InlineButtonsNPerRow(btns, 1)
	return tghelpers.SendText(c, formatJobs(list), &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
}

func (a *App) applyToJob(c tele.Context) error {
	acc, err := a.requireAccount(c)
	if err != nil || acc == nil {
		return err
	}
	jobID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, "This job offer looks stale. Run /jobs again.")
	}
	ctx := tghelpers.BuildContext(c)
	job, err := a.backend.ApplyToJob(ctx, acc.APIToken, jobID)
	if err != nil {
		return tghelpers.SendText(c, err.Error())
	}
	return tghelpers.SendText(c, "Applied to "+job.Title+" ✅")
}
