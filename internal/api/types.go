package api

// ClientRecord is a billing client as returned by the backend.
type ClientRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// ClientInput carries the fields collected by the client-creation flow.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// Contract binds a client to an engagement type and rate.
type Contract struct {
	ID       int64   `json:"id"`
	ClientID int64   `json:"client_id"`
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	Rate     float64 `json:"rate"`
	Status   string  `json:"status,omitempty"`
}

// ContractInput carries the fields collected by the contract flow.
type ContractInput struct {
	ClientID int64   `json:"client_id"`
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	Rate     float64 `json:"rate"`
}

// Invoice is a billing invoice as returned by the backend.
type Invoice struct {
	ID          int64   `json:"id"`
	Number      string  `json:"number"`
	ClientID    int64   `json:"client_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// InvoiceInput carries the fields collected by the invoice flow.
type InvoiceInput struct {
	ClientID    int64   `json:"client_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
}

// Expense is a recorded business expense.
type Expense struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date,omitempty"`
}

// ExpenseInput carries the fields collected by the expense flow.
type ExpenseInput struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// Gig is a tracked task/gig entry.
type Gig struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	ClientID int64   `json:"client_id,omitempty"`
	Budget   float64 `json:"budget"`
	Deadline string  `json:"deadline,omitempty"`
	Status   string  `json:"status,omitempty"`
}

// GigInput carries the fields collected by the gig flow.
type GigInput struct {
	Title    string  `json:"title"`
	Budget   float64 `json:"budget"`
	Deadline string  `json:"deadline"`
}

// HunterProfile is the freelancer's job-hunting profile.
type HunterProfile struct {
	ID        int64   `json:"id,omitempty"`
	Headline  string  `json:"headline"`
	Skills    string  `json:"skills"`
	Rate      float64 `json:"rate"`
	Available string  `json:"available"`
}

// HunterProfileInput carries the fields collected by the hunter flow.
type HunterProfileInput struct {
	Headline  string  `json:"headline"`
	Skills    string  `json:"skills"`
	Rate      float64 `json:"rate"`
	Available string  `json:"available"`
}

// Job is a matched job offer from the backend's hunter service.
type Job struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Company string  `json:"company,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
	Score   float64 `json:"score,omitempty"`
	Status  string  `json:"status,omitempty"`
}

// LoginInput authenticates against the backend.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token       string `json:"token"`
	DisplayName string `json:"display_name"`
}
