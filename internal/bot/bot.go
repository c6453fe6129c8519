// Package bot is a Telegram front-end for the to-do list. Each chat gets its
// own mirror of the server's tasks and its own history viewer.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"daily-todo/internal/apperr"
	"daily-todo/internal/history"
	"daily-todo/internal/syncer"
)

const (
	cbTogglePrefix   = "toggle:"
	cbDeletePrefix   = "delete:"
	cbSnapDelPrefix  = "snapdel:"
	cbHistPanPrefix  = "histpan:"
	cbHistoryClose   = "history:close"
	menuLabelTasks   = "📋 Tasks"
	menuLabelSave    = "💾 Save"
	menuLabelHistory = "🗂 History"
	menuLabelHelp    = "ℹ️ Help"
)

// Backend is the REST surface the bot drives.
type Backend interface {
	syncer.TaskAPI
	syncer.SnapshotAPI
	history.SnapshotAPI
}

// sender is the part of *tgbotapi.BotAPI used to talk to chats.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type session struct {
	view   *chatView
	ctrl   *syncer.Controller
	viewer *history.Viewer
}

// Bot aggregates the Telegram API with per-chat controllers.
type Bot struct {
	api     sender
	poller  *tgbotapi.BotAPI
	backend Backend
	chatID  int64
	logger  *log.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

// New connects to Telegram. When chatID is not zero, updates from any other
// chat are ignored.
func New(token string, chatID int64, backend Backend, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, backend, chatID, logger)
	b.poller = api
	b.logger.WithField("account", api.Self.UserName).Info("bot authorized")
	return b, nil
}

func newBot(api sender, backend Backend, chatID int64, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bot{
		api:      api,
		backend:  backend,
		chatID:   chatID,
		logger:   logger,
		sessions: make(map[int64]*session),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.poller == nil {
		return errors.New("bot has no telegram connection")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.poller.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.poller.StopReceivingUpdates()
	}()

	for update := range updates {
		if err := b.HandleUpdate(ctx, update); err != nil {
			b.logger.WithError(err).Warn("handle update")
		}
	}
	return ctx.Err()
}

// HandleUpdate dispatches one update from Telegram.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) allowed(chatID int64) bool {
	return b.chatID == 0 || b.chatID == chatID
}

// session returns the chat's controller, loading the task list on first use.
func (b *Bot) session(ctx context.Context, chatID int64) (*session, error) {
	b.mu.Lock()
	s, ok := b.sessions[chatID]
	if !ok {
		view := newChatView(b.api, chatID, b.logger)
		s = &session{
			view:   view,
			ctrl:   syncer.New(b.backend, b.backend, view, view, b.logger),
			viewer: history.NewViewer(b.backend, view, b.logger),
		}
		b.sessions[chatID] = s
	}
	b.mu.Unlock()

	if !ok {
		if err := s.ctrl.Load(ctx); err != nil {
			b.mu.Lock()
			delete(b.sessions, chatID)
			b.mu.Unlock()
			return nil, err
		}
	}
	return s, nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil || !b.allowed(msg.Chat.ID) {
		return nil
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.logger.WithFields(log.Fields{"chat_id": chatID, "command": msg.Command()}).Info("command")
		return b.handleCommand(ctx, msg)
	}

	text := strings.TrimSpace(msg.Text)
	switch text {
	case "":
		return nil
	case menuLabelTasks:
		return b.handleList(ctx, chatID)
	case menuLabelSave:
		return b.handleSave(ctx, chatID, "")
	case menuLabelHistory:
		return b.handleHistory(ctx, chatID)
	case menuLabelHelp:
		return b.sendText(chatID, helpText)
	}
	return b.handleAdd(ctx, chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "add":
		if args == "" {
			return b.sendText(chatID, "Tell me what to add: /add Buy milk")
		}
		return b.handleAdd(ctx, chatID, args)
	case "list", "tasks":
		return b.handleList(ctx, chatID)
	case "edit":
		return b.handleEdit(ctx, chatID, args)
	case "save":
		return b.handleSave(ctx, chatID, args)
	case "history":
		return b.handleHistory(ctx, chatID)
	case "close":
		s, err := b.session(ctx, chatID)
		if err != nil {
			return b.sendFailure(chatID, "Could not reach the server", err)
		}
		s.viewer.Dismiss()
		return nil
	default:
		return b.sendText(chatID, "Unknown command. Send /help for the list.")
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, text string) error {
	s, err := b.session(ctx, chatID)
	if err != nil {
		return b.sendFailure(chatID, "Could not reach the server", err)
	}
	// Failures are reported to the chat by the controller.
	_ = s.ctrl.Add(ctx, text)
	return nil
}

func (b *Bot) handleList(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	s, ok := b.sessions[chatID]
	b.mu.Unlock()
	if !ok {
		_, err := b.session(ctx, chatID)
		if err != nil {
			return b.sendFailure(chatID, "Could not load tasks", err)
		}
		return nil
	}
	s.view.detachList()
	_ = s.ctrl.Load(ctx)
	return nil
}

func (b *Bot) handleEdit(ctx context.Context, chatID int64, args string) error {
	posRaw, title, _ := strings.Cut(args, " ")
	pos, err := strconv.Atoi(posRaw)
	if err != nil || strings.TrimSpace(title) == "" {
		return b.sendText(chatID, "Usage: /edit 2 New title")
	}
	s, err := b.session(ctx, chatID)
	if err != nil {
		return b.sendFailure(chatID, "Could not reach the server", err)
	}
	tasks := s.ctrl.Tasks()
	if pos < 1 || pos > len(tasks) {
		return b.sendText(chatID, fmt.Sprintf("There is no task #%d.", pos))
	}
	_ = s.ctrl.Edit(ctx, tasks[pos-1].ID, title)
	return nil
}

func (b *Bot) handleSave(ctx context.Context, chatID int64, title string) error {
	s, err := b.session(ctx, chatID)
	if err != nil {
		return b.sendFailure(chatID, "Could not reach the server", err)
	}
	_, _ = s.ctrl.Capture(ctx, title)
	return nil
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64) error {
	s, err := b.session(ctx, chatID)
	if err != nil {
		return b.sendFailure(chatID, "Could not reach the server", err)
	}
	s.view.resetHistory()
	if err := s.viewer.Open(ctx); err != nil {
		return b.sendFailure(chatID, "Could not load history", err)
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.WithError(err).Warn("callback ack")
	}
	chatID := cb.Message.Chat.ID
	if !b.allowed(chatID) {
		return nil
	}
	b.logger.WithFields(log.Fields{"chat_id": chatID, "data": cb.Data}).Info("callback")

	s, err := b.session(ctx, chatID)
	if err != nil {
		return b.sendFailure(chatID, "Could not reach the server", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		id, err := parseID(data, cbTogglePrefix)
		if err != nil {
			return nil
		}
		return b.staleIfMissing(ctx, s, chatID, s.ctrl.Toggle(ctx, id))
	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.staleIfMissing(ctx, s, chatID, s.ctrl.Remove(ctx, id))
	case strings.HasPrefix(data, cbSnapDelPrefix):
		id, err := parseID(data, cbSnapDelPrefix)
		if err != nil {
			return nil
		}
		if err := s.viewer.CloseCard(ctx, id); err != nil {
			return b.sendFailure(chatID, "Could not delete snapshot", err)
		}
		return nil
	case strings.HasPrefix(data, cbHistPanPrefix):
		dx, err := strconv.Atoi(strings.TrimPrefix(data, cbHistPanPrefix))
		if err != nil {
			return nil
		}
		s.view.pan(dx, s.viewer.Cards())
		return nil
	case data == cbHistoryClose:
		s.viewer.Dismiss()
		return nil
	}
	return nil
}

// staleIfMissing reloads the list when a button refers to a task this chat no
// longer holds. Other failures were already reported by the controller.
func (b *Bot) staleIfMissing(ctx context.Context, s *session, chatID int64, err error) error {
	if err == nil || !errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if sendErr := b.sendText(chatID, "That task is no longer on the list."); sendErr != nil {
		return sendErr
	}
	_ = s.ctrl.Load(ctx)
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return sendText(b.api, chatID, text)
}

func (b *Bot) sendFailure(chatID int64, msg string, err error) error {
	b.logger.WithError(err).WithField("chat_id", chatID).Warn(strings.ToLower(msg))
	return b.sendText(chatID, failureText(msg, err))
}

func parseID(data, prefix string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

const helpText = "👋 <b>Daily to-do</b>\n" +
	"Send any text to add it as a task.\n\n" +
	"• /list — show today's tasks, tap one to toggle it\n" +
	"• /edit &lt;n&gt; &lt;title&gt; — rename task number n\n" +
	"• /save [title] — save a snapshot (defaults to today's date)\n" +
	"• /history — browse saved snapshots\n" +
	"• /close — hide the history"
