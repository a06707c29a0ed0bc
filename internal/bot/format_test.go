package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"freelancebot/internal/api"
)

func TestFormatClients(t *testing.T) {
	require.Contains(t, formatClients(nil), "/newclient")

	out := formatClients([]api.ClientRecord{
		{ID: 1, Name: "Acme Co", Email: "a@acme.com", TaxID: "DE-123"},
		{ID: 2, Name: "Initech", Email: "billing@initech.io"},
	})
	require.Contains(t, out, "#1 Acme Co — a@acme.com (tax DE-123)")
	require.Contains(t, out, "#2 Initech — billing@initech.io")
}

func TestFormatInvoices(t *testing.T) {
	require.Contains(t, formatInvoices(nil), "/newinvoice")

	out := formatInvoices([]api.Invoice{
		{Number: "INV-0010", Amount: 1500.50, Status: "sent", DueDate: "2026-09-15"},
	})
	require.Contains(t, out, `INV-0010 — 1500.50 \[sent], due 2026-09-15`)
}

func TestFormatJobs(t *testing.T) {
	out := formatJobs([]api.Job{
		{ID: 3, Title: "Go backend", Company: "Initech", Rate: 95, Score: 0.87},
	})
	require.Contains(t, out, "#3 Go backend @ Initech — 95/h (match 87%)")
}
