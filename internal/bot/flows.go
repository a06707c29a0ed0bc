package bot

import (
	"context"
	"fmt"
	"log/slog"

	"freelancebot/internal/api"
	"freelancebot/internal/auth"
	"freelancebot/internal/flow"
	"freelancebot/internal/logger"
)

// Flow names double as entry-command suffixes and menu payloads.
const (
	flowLogin    = "login"
	flowClient   = "client"
	flowContract = "contract"
	flowInvoice  = "invoice"
	flowExpense  = "expense"
	flowGig      = "gig"
	flowHunter   = "hunter"
)

func (a *App) flowDefinitions() []*flow.Definition {
	return []*flow.Definition{
		a.loginFlow(),
		a.clientFlow(),
		a.contractFlow(),
		a.invoiceFlow(),
		a.expenseFlow(),
		a.gigFlow(),
		a.hunterFlow(),
	}
}

// token resolves the caller's API token for a finalize action.
func (a *App) token(ctx context.Context, userID int64) (string, error) {
	acc, err := a.accounts.Find(ctx, userID)
	if err == auth.ErrNotLinked {
		return "", fmt.Errorf("You are not logged in anymore. Use /login and restart the flow.")
	}
	if err != nil {
		return "", err
	}
	return acc.APIToken, nil
}

func (a *App) loginFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowLogin,
		Steps: []flow.Step{
			{State: "login_email", Prompt: "Your billing account email?", Field: "email", Kind: flow.KindEmail},
			{State: "login_password", Prompt: "Your password?", Field: "password", Kind: flow.KindText},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			res, err := a.backend.Login(ctx, api.LoginInput{
				Email:    dataString(data, "email"),
				Password: dataString(data, "password"),
			})
			if err != nil {
				return "", err
			}
			if err := a.accounts.Upsert(ctx, &auth.Account{
				TelegramID:  userID,
				APIToken:    res.Token,
				DisplayName: res.DisplayName,
			}); err != nil {
				return "", err
			}
			logger.Info(ctx, "service.auth", "account.linked",
				slog.Int64("user_id", userID),
			)
			return fmt.Sprintf("Logged in as %s. You're all set ✅", res.DisplayName), nil
		},
	}
}

func (a *App) clientFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowClient,
		Steps: []flow.Step{
			{State: "client_name", Prompt: "Client name?", Field: "name", Kind: flow.KindText},
			{State: "client_email", Prompt: "Client email?", Field: "email", Kind: flow.KindEmail},
			{State: "client_address", Prompt: "Billing address?", Field: "address", Kind: flow.KindText, Optional: true},
			{State: "client_tax_id", Prompt: "Tax ID?", Field: "tax_id", Kind: flow.KindText, Optional: true},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			token, err := a.token(ctx, userID)
			if err != nil {
				return "", err
			}
			rec, err := a.backend.CreateClient(ctx, token, api.ClientInput{
				Name:    dataString(data, "name"),
				Email:   dataString(data, "email"),
				Address: dataString(data, "address"),
				TaxID:   dataString(data, "tax_id"),
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Client #%d %s created ✅", rec.ID, rec.Name), nil
		},
	}
}

func (a *App) contractFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowContract,
		Steps: []flow.Step{
			{State: "contract_client", Prompt: "Client ID? (see /clients)", Field: "client_id", Kind: flow.KindNumber},
			{State: "contract_title", Prompt: "Contract title?", Field: "title", Kind: flow.KindText},
			{State: "contract_type", Prompt: "Contract type?", Field: "type", Kind: flow.KindSelect, Options: []flow.Option{
				{Label: "Hourly", Value: "hourly"},
				{Label: "Fixed price", Value: "fixed"},
				{Label: "Retainer", Value: "retainer"},
			}},
			{State: "contract_rate", Prompt: "Rate? (per hour for hourly, total otherwise)", Field: "rate", Kind: flow.KindNumber},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			token, err := a.token(ctx, userID)
			if err != nil {
				return "", err
			}
			rec, err := a.backend.CreateContract(ctx, token, api.ContractInput{
				ClientID: dataID(data, "client_id"),
				Title:    dataString(data, "title"),
				Type:     dataString(data, "type"),
				Rate:     dataFloat(data, "rate"),
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Contract #%d (%s, %s) created ✅", rec.ID, rec.Title, rec.Type), nil
		},
	}
}

func (a *App) invoiceFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowInvoice,
		Steps: []flow.Step{
			{State: "invoice_client", Prompt: "Client ID? (see /clients)", Field: "client_id", Kind: flow.KindNumber},
			{State: "invoice_amount", Prompt: "Invoice amount?", Field: "amount", Kind: flow.KindNumber},
			{State: "invoice_description", Prompt: "What is this invoice for?", Field: "description", Kind: flow.KindText},
			{State: "invoice_due_date", Prompt: "Due date?", Field: "due_date", Kind: flow.KindDate, Optional: true},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			token, err := a.token(ctx, userID)
			if err != nil {
				return "", err
			}
			rec, err := a.backend.CreateInvoice(ctx, token, api.InvoiceInput{
				ClientID:    dataID(data, "client_id"),
				Amount:      dataFloat(data, "amount"),
				Description: dataString(data, "description"),
				DueDate:     dataString(data, "due_date"),
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Invoice %s for %.2f created ✅", rec.Number, rec.Amount), nil
		},
	}
}

func (a *App) expenseFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowExpense,
		Steps: []flow.Step{
			{State: "expense_amount", Prompt: "Expense amount?", Field: "amount", Kind: flow.KindNumber},
			{State: "expense_category", Prompt: "Category?", Field: "category", Kind: flow.KindSelect, Options: []flow.Option{
				{Label: "Travel", Value: "travel"},
				{Label: "Software", Value: "software"},
				{Label: "Hardware", Value: "hardware"},
				{Label: "Meals", Value: "meals"},
				{Label: "Other", Value: "other"},
			}},
			{State: "expense_description", Prompt: "Short description?", Field: "description", Kind: flow.KindText, Optional: true},
			{State: "expense_date", Prompt: "Date of the expense?", Field: "date", Kind: flow.KindDate, Optional: true},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			token, err := a.token(ctx, userID)
			if err != nil {
				return "", err
			}
			rec, err := a.backend.CreateExpense(ctx, token, api.ExpenseInput{
				Amount:      dataFloat(data, "amount"),
				Category:    dataString(data, "category"),
				Description: dataString(data, "description"),
				Date:        dataString(data, "date"),
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Expense of %.2f (%s) recorded ✅", rec.Amount, rec.Category), nil
		},
	}
}

func (a *App) gigFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowGig,
		Steps: []flow.Step{
			{State: "gig_title", Prompt: "Gig title?", Field: "title", Kind: flow.KindText},
			{State: "gig_budget", Prompt: "Budget?", Field: "budget", Kind: flow.KindNumber},
			{State: "gig_deadline", Prompt: "Deadline?", Field: "deadline", Kind: flow.KindDate, Optional: true},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			token, err := a.token(ctx, userID)
			if err != nil {
				return "", err
			}
			rec, err := a.backend.CreateGig(ctx, token, api.GigInput{
				Title:    dataString(data, "title"),
				Budget:   dataFloat(data, "budget"),
				Deadline: dataString(data, "deadline"),
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Gig #%d %s created ✅", rec.ID, rec.Title), nil
		},
	}
}

func (a *App) hunterFlow() *flow.Definition {
	return &flow.Definition{
		Name: flowHunter,
		Steps: []flow.Step{
			{State: "hunter_headline", Prompt: "Profile headline? (e.g. \"Go backend engineer\")", Field: "headline", Kind: flow.KindText},
			{State: "hunter_skills", Prompt: "Your skills, comma separated?", Field: "skills", Kind: flow.KindText},
			{State: "hunter_rate", Prompt: "Your hourly rate?", Field: "rate", Kind: flow.KindNumber},
			{State: "hunter_available", Prompt: "Are you available for new work?", Field: "available", Kind: flow.KindSelect, Options: []flow.Option{
				{Label: "Available", Value: "available"},
				{Label: "Not right now", Value: "unavailable"},
			}},
		},
		Finalize: func(ctx context.Context, userID int64, data map[string]any) (string, error) {
			token, err := a.token(ctx, userID)
			if err != nil {
				return "", err
			}
			rec, err := a.backend.UpdateHunterProfile(ctx, token, api.HunterProfileInput{
				Headline:  dataString(data, "headline"),
				Skills:    dataString(data, "skills"),
				Rate:      dataFloat(data, "rate"),
				Available: dataString(data, "available"),
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Hunter profile updated: %s ✅\nCheck /jobs for matches.", rec.Headline), nil
		},
	}
}

// dataString reads a collected field as string; skipped fields come back "".
func dataString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// dataFloat reads a numeric field. Skipped optional numbers come back 0.
func dataFloat(data map[string]any, key string) float64 {
	if v, ok := data[key].(float64); ok {
		return v
	}
	return 0
}

// dataID reads a numeric field entered as an identifier.
func dataID(data map[string]any, key string) int64 {
	return int64(dataFloat(data, key))
}
