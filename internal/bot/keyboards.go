package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-gateway-bot/internal/domain"
)

// channelsKeyboard строит клавиатуру с каналами по два в ряд и кнопкой проверки в конце.
// Для числовых ID ссылки t.me не существует, такие каналы пропускаются.
func channelsKeyboard(communities []domain.CommunityHandle) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	n := 0
	for _, c := range communities {
		if !c.IsUsername() {
			continue
		}
		n++
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL(
			fmt.Sprintf("Channel %d", n),
			"https://t.me/"+c.Username(),
		))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(joinedButton, cbCheckChannels),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuImageToURL)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func webAppKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(webAppButton, url)),
	)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Broadcast Message", cbBroadcastPfx+"msg"),
			tgbotapi.NewInlineKeyboardButtonData("🎤 Broadcast Voice", cbBroadcastPfx+"voice"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎥 Broadcast Video", cbBroadcastPfx+"video"),
			tgbotapi.NewInlineKeyboardButtonData("😀 Broadcast Sticker", cbBroadcastPfx+"sticker"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 User Stats", cbUserStats),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📁 Export Users", cbExportUsers),
		),
	)
}
