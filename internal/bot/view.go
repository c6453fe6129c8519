package bot

import (
	"fmt"
	"html"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"daily-todo/internal/history"
	"daily-todo/internal/model"
)

// historyWindow is how many snapshot cards fit in one history message.
const historyWindow = 3

// chatView draws a controller's mirror and a viewer's cards into one chat.
// The task list and the history each live in a single message that is
// edited in place.
type chatView struct {
	api    sender
	chatID int64
	logger *log.Logger

	mu          sync.Mutex
	listMsgID   int
	listSig     string
	histMsgID   int
	histSig     string
	histScroll  int
	histVisible bool
}

func newChatView(api sender, chatID int64, logger *log.Logger) *chatView {
	return &chatView{api: api, chatID: chatID, logger: logger}
}

// Render implements syncer.Renderer.
func (v *chatView) Render(tasks []model.Task) {
	text, markup, sig := formatTasks(tasks)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.listMsgID != 0 && sig == v.listSig {
		return
	}
	id, err := v.upsert(v.listMsgID, text, markup)
	if err != nil {
		v.logger.WithError(err).WithField("chat_id", v.chatID).Warn("render task list")
		return
	}
	v.listMsgID, v.listSig = id, sig
}

// Notify implements syncer.Notifier.
func (v *chatView) Notify(msg string) {
	if err := sendText(v.api, v.chatID, "✅ "+html.EscapeString(msg)); err != nil {
		v.logger.WithError(err).Warn("notify")
	}
}

// Alert implements syncer.Notifier.
func (v *chatView) Alert(msg string, err error) {
	if sendErr := sendText(v.api, v.chatID, failureText(msg, err)); sendErr != nil {
		v.logger.WithError(sendErr).Warn("alert")
	}
}

// Show implements history.Presenter.
func (v *chatView) Show(cards []history.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.histVisible = true
	v.showLocked(cards)
}

// Hide implements history.Presenter.
func (v *chatView) Hide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.histVisible = false
	if v.histMsgID == 0 {
		return
	}
	if _, err := v.api.Request(tgbotapi.NewDeleteMessage(v.chatID, v.histMsgID)); err != nil {
		v.logger.WithError(err).Warn("hide history")
	}
	v.histMsgID, v.histSig, v.histScroll = 0, "", 0
}

// pan scrolls the card strip as if the pointer had been dragged by dx cards.
func (v *chatView) pan(dx int, cards []history.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.histVisible {
		return
	}
	var gesture history.Pan
	gesture.Press(0, v.histScroll)
	offset, _ := gesture.Move(dx)
	gesture.Release()
	v.histScroll = clampScroll(offset, len(cards))
	v.showLocked(cards)
}

// detachList makes the next render post a fresh list message.
func (v *chatView) detachList() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listMsgID, v.listSig = 0, ""
}

// resetHistory makes the next Show post a fresh history message.
func (v *chatView) resetHistory() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.histMsgID, v.histSig, v.histScroll = 0, "", 0
}

func (v *chatView) showLocked(cards []history.Card) {
	v.histScroll = clampScroll(v.histScroll, len(cards))
	text, markup, sig := formatCards(cards, v.histScroll)
	if v.histMsgID != 0 && sig == v.histSig {
		return
	}
	id, err := v.upsert(v.histMsgID, text, markup)
	if err != nil {
		v.logger.WithError(err).WithField("chat_id", v.chatID).Warn("render history")
		return
	}
	v.histMsgID, v.histSig = id, sig
}

// upsert edits msgID in place, or posts a new message when msgID is zero.
func (v *chatView) upsert(msgID int, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error) {
	if msgID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(v.chatID, msgID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := v.api.Send(edit); err != nil {
			return 0, err
		}
		return msgID, nil
	}
	msg := tgbotapi.NewMessage(v.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	sent, err := v.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func clampScroll(offset, cards int) int {
	maxScroll := cards - historyWindow
	if maxScroll < 0 {
		maxScroll = 0
	}
	if offset > maxScroll {
		return maxScroll
	}
	if offset < 0 {
		return 0
	}
	return offset
}

func formatTasks(tasks []model.Task) (string, tgbotapi.InlineKeyboardMarkup, string) {
	if len(tasks) == 0 {
		return "📋 <b>Today</b>\nNo tasks yet. Send a message to add one.", tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}, "empty"
	}

	var builder, sig strings.Builder
	builder.WriteString("📋 <b>Today</b>\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for i, task := range tasks {
		builder.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, checkMark(task.Completed), html.EscapeString(task.Title)))
		fmt.Fprintf(&sig, "%d:%t:%s\n", task.ID, task.Completed, task.Title)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", checkMark(task.Completed), shortTitle(task.Title, 24)), fmt.Sprintf("%s%d", cbTogglePrefix, task.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)),
		))
	}
	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(rows...), sig.String()
}

func formatCards(cards []history.Card, scroll int) (string, tgbotapi.InlineKeyboardMarkup, string) {
	closeRow := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Close", cbHistoryClose))
	if len(cards) == 0 {
		return "🗂 <b>History</b>\nNo snapshots yet.", tgbotapi.NewInlineKeyboardMarkup(closeRow), "empty"
	}

	end := scroll + historyWindow
	if end > len(cards) {
		end = len(cards)
	}

	var builder, sig strings.Builder
	builder.WriteString("🗂 <b>History</b>\n\n")
	fmt.Fprintf(&sig, "%d/%d\n", scroll, len(cards))
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, card := range cards[scroll:end] {
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(card.Title)))
		if len(card.Items) == 0 {
			builder.WriteString("  (empty)\n")
		}
		for _, item := range card.Items {
			builder.WriteString(fmt.Sprintf("  %s %s\n", checkMark(bool(item.Completed)), html.EscapeString(item.Text)))
		}
		builder.WriteByte('\n')
		fmt.Fprintf(&sig, "%d\n", card.SnapshotID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+shortTitle(card.Title, 24), fmt.Sprintf("%s%d", cbSnapDelPrefix, card.SnapshotID)),
		))
	}
	if len(cards) > historyWindow {
		builder.WriteString(fmt.Sprintf("%d–%d of %d", scroll+1, end, len(cards)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀", cbHistPanPrefix+"1"),
			tgbotapi.NewInlineKeyboardButtonData("▶", cbHistPanPrefix+"-1"),
		))
	}
	rows = append(rows, closeRow)
	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(rows...), sig.String()
}

func checkMark(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func failureText(msg string, err error) string {
	if err == nil {
		return "⚠️ " + html.EscapeString(msg)
	}
	return fmt.Sprintf("⚠️ %s: %s", html.EscapeString(msg), html.EscapeString(err.Error()))
}

func sendText(api sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelSave),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelHistory),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
