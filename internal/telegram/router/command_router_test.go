package router

import (
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"freelancebot/internal/config"
	"freelancebot/internal/logger"
	tg "freelancebot/internal/telegram"
	"freelancebot/internal/telegram/commands"
)

func TestCommandRoutesWrapOnlyAuthFlaggedCommands(t *testing.T) {
	_ = logger.InitLogger(&config.Config{})

	reg := tg.NewRegistry()
	noop := func(tele.Context) error { return nil }
	reg.RegisterCommand("/clients", commands.Command{
		Handler:      noop,
		Description:  "List clients",
		RequiresAuth: true,
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     noop,
		Description: "Help",
	})

	wrapped := 0
	routes := CommandRoutes(reg, CommandRouteOptions{
		RequireAuth: func(next tele.HandlerFunc) tele.HandlerFunc {
			wrapped++
			return next
		},
	})

	require.Len(t, routes, 2)
	require.Equal(t, 1, wrapped)
}
