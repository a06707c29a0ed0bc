package bot

import (
	"fmt"
	"strconv"
	"strings"

	"freelancebot/internal/api"
	"freelancebot/internal/telegram/format"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// md escapes user-provided text for MarkdownV1 messages.
func md(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return out
}

func formatClients(list []api.ClientRecord) string {
	if len(list) == 0 {
		return "No clients yet. Add one with /newclient."
	}
	var b strings.Builder
	b.WriteString("*Your clients:*\n")
	for _, c := range list {
		fmt.Fprintf(&b, "\n#%d %s — %s", c.ID, md(c.Name), md(c.Email))
		if c.TaxID != "" {
			fmt.Fprintf(&b, " (tax %s)", md(c.TaxID))
		}
	}
	return b.String()
}

func formatInvoices(list []api.Invoice) string {
	if len(list) == 0 {
		return "No invoices yet. Issue one with /newinvoice."
	}
	var b strings.Builder
	b.WriteString("*Your invoices:*\n")
	for _, inv := range list {
		fmt.Fprintf(&b, "\n%s — %.2f", md(inv.Number), inv.Amount)
		if inv.Status != "" {
			fmt.Fprintf(&b, " \\[%s]", inv.Status)
		}
		if inv.DueDate != "" {
			fmt.Fprintf(&b, ", due %s", inv.DueDate)
		}
	}
	return b.String()
}

func formatHunterProfile(p *api.HunterProfile) string {
	var b strings.Builder
	b.WriteString("*Your hunter profile:*\n")
	fmt.Fprintf(&b, "\n%s", md(p.Headline))
	if p.Skills != "" {
		fmt.Fprintf(&b, "\nSkills: %s", md(p.Skills))
	}
	if p.Rate > 0 {
		fmt.Fprintf(&b, "\nRate: %.0f/h", p.Rate)
	}
	if p.Available != "" {
		fmt.Fprintf(&b, "\nStatus: %s", md(p.Available))
	}
	return b.String()
}

func formatJobs(list []api.Job) string {
	var b strings.Builder
	b.WriteString("*Matched jobs:*\n")
	for _, job := range list {
		fmt.Fprintf(&b, "\n#%d %s", job.ID, md(job.Title))
		if job.Company != "" {
			fmt.Fprintf(&b, " @ %s", md(job.Company))
		}
		if job.Rate > 0 {
			fmt.Fprintf(&b, " — %.0f/h", job.Rate)
		}
		if job.Score > 0 {
			fmt.Fprintf(&b, " (match %.0f%%)", job.Score*100)
		}
	}
	return b.String()
}
