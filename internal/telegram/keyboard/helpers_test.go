package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestSingleCancelMarkup(t *testing.T) {
	m := SingleCancelMarkup("flow_cancel")
	require.Len(t, m.InlineKeyboard, 1)
	require.Len(t, m.InlineKeyboard[0], 1)
	btn := m.InlineKeyboard[0][0]
	require.Equal(t, "flow_cancel", btn.Unique)
	require.Equal(t, defaultCancelButtonText, btn.Text)
	require.Equal(t, "cancel", btn.Data)
}

func TestSingleCancelMarkupOverrides(t *testing.T) {
	m := SingleCancelMarkup("flow_cancel", "all", "Stop")
	btn := m.InlineKeyboard[0][0]
	require.Equal(t, "all", btn.Data)
	require.Equal(t, "Stop", btn.Text)
}

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{
		{Text: "a", Unique: "u", Data: "1"},
		{Text: "b", Unique: "u", Data: "2"},
		{Text: "c", Unique: "u", Data: "3"},
	}
	m := InlineButtonsNPerRow(btns, 2)
	require.Len(t, m.InlineKeyboard, 2)
	require.Len(t, m.InlineKeyboard[0], 2)
	require.Len(t, m.InlineKeyboard[1], 1)
	require.Equal(t, "c", m.InlineKeyboard[1][0].Text)
}

func TestCancelButtonAppendsToExistingMarkup(t *testing.T) {
	m := InlineButtonsNPerRow([]InlineBtn{
		{Text: "Hourly", Unique: "flow_select", Data: "hourly"},
		{Text: "Fixed", Unique: "flow_select", Data: "fixed"},
	}, 2)
	cancel := CancelButton(m, "flow_cancel")
	m.InlineKeyboard = append(m.InlineKeyboard, []tele.InlineButton{*cancel.Inline()})

	require.Len(t, m.InlineKeyboard, 2)
	last := m.InlineKeyboard[1][0]
	require.Equal(t, "flow_cancel", last.Unique)
	require.Equal(t, "cancel", last.Data)
}
