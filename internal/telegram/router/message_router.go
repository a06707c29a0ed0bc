package router

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "freelancebot/internal/telegram"
	"freelancebot/internal/telegram/commands"
	"freelancebot/internal/telegram/middleware"
)

// Flow defines the minimal interface for the conversation engine.
type Flow interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
	Clear(userID int64)
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the text dispatch handler.
//
// While a conversation is in progress, plain text is fed to the flow engine
// as the answer to the current step. A registered top-level command still
// wins: it abandons the live conversation and runs as usual. /skip is not a
// registered command, so it falls through to the engine, which decides
// whether the current step may be skipped.
func TextRoutes(flow Flow, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if flow != nil && flow.InProgress(c.Sender().ID) {
			if isCommand(text) {
				if key, cmd, ok := lookup(reg, text); ok && cmd.Handler != nil {
					flow.Clear(c.Sender().ID)
					name := normalizeHandlerName(key)
					return handleWithSummary(c, name, start, "", "", func() error {
						return cmd.Handler(c)
					})
				}
			}
			return handleWithSummary(c, "flow", start, "", "", func() error {
				return flow.HandleText(c)
			})
		}

		if key, cmd, ok := lookup(reg, text); ok && cmd.Handler != nil {
			name := normalizeHandlerName(key)
			return handleWithSummary(c, name, start, "", "", func() error {
				return cmd.Handler(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

func lookup(reg *tg.Registry, text string) (string, commands.Command, bool) {
	if reg == nil || !isCommand(text) {
		return "", commands.Command{}, false
	}
	// Strip bot mention and arguments: "/cmd@bot arg" -> "/cmd"
	head := strings.Fields(strings.TrimSpace(text))[0]
	if at := strings.Index(head, "@"); at > 0 {
		head = head[:at]
	}
	return reg.LookupCommand(head)
}
