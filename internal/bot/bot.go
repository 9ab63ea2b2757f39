package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-gateway-bot/internal/domain"
	tglog "telegram-gateway-bot/internal/log"
	"telegram-gateway-bot/internal/pkg/config"
	"telegram-gateway-bot/internal/ports"
	"telegram-gateway-bot/internal/telegram"
)

const (
	startCommand      = "start"
	adminPanelCommand = "adminpanel"
)

// Verifier проверяет членство пользователя в обязательных сообществах.
type Verifier interface {
	Verify(ctx context.Context, userID int64) domain.MembershipResult
	Communities() []domain.CommunityHandle
}

// Relay переносит фото на хостинг изображений.
type Relay interface {
	Relay(ctx context.Context, fileID string) (*domain.RelayArtifact, error)
}

// Broadcaster рассылает сообщение всем пользователям.
type Broadcaster interface {
	Broadcast(ctx context.Context, callerID int64, payload domain.BroadcastPayload) (int, error)
}

// Services объединяет зависимости бота.
type Services struct {
	Verifier    Verifier
	Relay       Relay
	Broadcaster Broadcaster
	Registry    ports.UserRegistry
	Exporter    ports.Exporter
}

// Bot представляет собой основной объект Telegram-бота.
// Единственное изменяемое состояние — выбор типа рассылки администратором.
type Bot struct {
	api        telegram.API
	cfg        config.Bot
	assets     config.Assets
	svc        Services
	selections *SelectionStore
	userLocks  *keyedMutex
	handlers   sync.WaitGroup
	logger     *slog.Logger
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(api telegram.API, cfg config.Bot, assets config.Assets, svc Services, logger *slog.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		assets:     assets,
		svc:        svc,
		selections: NewSelectionStore(),
		userLocks:  newKeyedMutex(),
		logger:     logger,
	}
}

// Start запускает основной цикл обработки обновлений от Telegram.
// Каждое обновление обрабатывается в отдельной горутине. После отмены ctx
// метод дожидается завершения уже начатых обработчиков.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)
	// Обработчики не прерываются при остановке, их время ограничено таймаутами вызовов.
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			b.handlers.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.handlers.Wait()
				return
			}
			b.handlers.Add(1)
			go func() {
				defer b.handlers.Done()
				b.HandleUpdate(handlerCtx, update)
			}()
		}
	}
}

// HandleUpdate обрабатывает одно обновление, сериализуя обновления одного пользователя.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	userID, ok := senderID(update)
	if !ok {
		return
	}

	unlock := b.userLocks.Lock(userID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", slog.Int("update_id", update.UpdateID), slog.Any("panic", r))
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func senderID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return userID == b.cfg.AdminID
}

// handleMessage распределяет входящее сообщение по обработчикам.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand() && msg.Command() == startCommand:
		b.handleStart(ctx, msg)
	case msg.Text == menuImageToURL:
		b.handleImageRequest(msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.IsCommand() && msg.Command() == adminPanelCommand:
		b.handleAdminPanel(msg)
	case b.hasPendingSelection(msg.From.ID):
		b.handleBroadcastContent(ctx, msg)
	default:
		b.logger.Debug("ignoring message", slog.Int64("user_id", msg.From.ID))
	}
}

func (b *Bot) hasPendingSelection(userID int64) bool {
	if !b.isAdmin(userID) {
		return false
	}
	_, ok := b.selections.Get(userID)
	return ok
}

// handleStart регистрирует пользователя и показывает меню или список каналов.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	logger := b.logger.With(slog.Int64("user_id", from.ID))

	err := b.svc.Registry.UpsertSeen(ctx, domain.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		JoinedAt:  time.Now(),
	})
	if err != nil {
		logger.Error("failed to save user", slog.String("error", err.Error()))
	}

	if b.verify(ctx, from.ID).Satisfied() {
		b.showMainMenu(msg.Chat.ID)
		return
	}
	b.showJoinGate(msg.Chat.ID)
}

// verify проверяет членство и уведомляет администратора об ошибке проверки.
func (b *Bot) verify(ctx context.Context, userID int64) domain.MembershipResult {
	res := b.svc.Verifier.Verify(ctx, userID)
	if res.OperationalFailure() {
		alert := tgbotapi.NewMessage(b.cfg.AdminID, tglog.MaskTokens(fmt.Sprintf(checkFailedFmt, res.FailingCommunity, res.Err)))
		b.sendMessage(alert)
	}
	return res
}

func (b *Bot) showJoinGate(chatID int64) {
	keyboard := channelsKeyboard(b.svc.Verifier.Communities())

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(b.assets.GateImageURL))
	photo.Caption = gateCaption
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyMarkup = keyboard
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send join requirement", slog.String("error", err.Error()))
		reply := tgbotapi.NewMessage(chatID, gateFallback)
		reply.ReplyMarkup = keyboard
		b.sendMessage(reply)
	}
}

func (b *Bot) showMainMenu(chatID int64) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(b.assets.WelcomeImageURL))
	if b.cfg.WebAppURL != "" {
		photo.ReplyMarkup = webAppKeyboard(b.cfg.WebAppURL)
	}
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send welcome banner", slog.String("error", err.Error()))
	}

	reply := tgbotapi.NewMessage(chatID, mainMenuText)
	reply.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(reply)
}

func (b *Bot) handleImageRequest(msg *tgbotapi.Message) {
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(b.assets.InstructionsImageURL))
	photo.Caption = instructionsCaption
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send instructions", slog.String("error", err.Error()))
		reply := tgbotapi.NewMessage(msg.Chat.ID, instructionsFallback)
		reply.ParseMode = tgbotapi.ModeHTML
		b.sendMessage(reply)
	}
}

// handlePhoto прогоняет фото через конвейер загрузки и возвращает ссылку.
// Статусное сообщение редактируется ровно один раз.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With(slog.Int64("chat_id", chatID))

	status := tgbotapi.NewMessage(chatID, relayProcessing)
	status.ParseMode = tgbotapi.ModeHTML
	status.ReplyToMessageID = msg.MessageID
	statusMsg, err := b.api.Send(status)
	if err != nil {
		logger.Error("failed to send processing status", slog.String("error", err.Error()))
		b.replyHTML(msg, relayFailed)
		return
	}

	artifact, err := b.svc.Relay.Relay(ctx, largestPhoto(msg.Photo).FileID)
	if err != nil {
		logger.Warn("image relay failed", slog.String("error", err.Error()))
		b.editStatus(chatID, statusMsg.MessageID, relayFailed)
		return
	}

	result := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: artifact.FileName, Bytes: artifact.Data})
	result.Caption = fmt.Sprintf(relayCaption, html.EscapeString(artifact.HostedURL))
	result.ParseMode = tgbotapi.ModeHTML
	result.ReplyToMessageID = msg.MessageID
	result.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.api.Send(result); err != nil {
		logger.Error("failed to send relay result", slog.String("error", err.Error()))
		b.editStatus(chatID, statusMsg.MessageID, relayFailed)
		return
	}
	b.editStatus(chatID, statusMsg.MessageID, relayComplete)
}

func (b *Bot) editStatus(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(edit)
}

// largestPhoto выбирает вариант фото с наибольшим разрешением.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}

func (b *Bot) handleAdminPanel(msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, notAdmin)
		reply.ReplyToMessageID = msg.MessageID
		b.sendMessage(reply)
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, adminPanelTitle)
	reply.ReplyMarkup = adminPanelKeyboard()
	b.sendMessage(reply)
}

// handleBroadcastContent забирает выбор администратора и запускает рассылку.
// Выбор удаляется до рассылки, поэтому не переживает ее ошибку.
func (b *Bot) handleBroadcastContent(ctx context.Context, msg *tgbotapi.Message) {
	kind, ok := b.selections.Take(msg.From.ID)
	if !ok {
		return
	}

	payload, err := payloadFromMessage(kind, msg)
	if err != nil {
		b.replyText(msg, errorText(err))
		return
	}

	n, err := b.svc.Broadcaster.Broadcast(ctx, msg.From.ID, payload)
	if err != nil {
		b.logger.Error("broadcast failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
		b.replyText(msg, errorText(err))
		return
	}
	b.replyText(msg, fmt.Sprintf(broadcastSentFmt, n))
}

var errWrongContent = errors.New("message does not match the selected broadcast type")

func payloadFromMessage(kind domain.ContentKind, msg *tgbotapi.Message) (domain.BroadcastPayload, error) {
	p := domain.BroadcastPayload{Kind: kind}
	switch kind {
	case domain.ContentText:
		if msg.Text == "" {
			return p, fmt.Errorf("%w: expected %s", errWrongContent, kind.Label())
		}
		p.Text = msg.Text
	case domain.ContentVideo:
		if msg.Video == nil {
			return p, fmt.Errorf("%w: expected %s", errWrongContent, kind.Label())
		}
		p.FileID, p.Caption = msg.Video.FileID, msg.Caption
	case domain.ContentVoice:
		if msg.Voice == nil {
			return p, fmt.Errorf("%w: expected %s", errWrongContent, kind.Label())
		}
		p.FileID, p.Caption = msg.Voice.FileID, msg.Caption
	case domain.ContentSticker:
		if msg.Sticker == nil {
			return p, fmt.Errorf("%w: expected %s", errWrongContent, kind.Label())
		}
		p.FileID = msg.Sticker.FileID
	}
	return p, nil
}

// handleCallback обрабатывает нажатия inline-кнопок. На каждый callback отправляется ровно один ответ.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	switch data := cq.Data; {
	case data == cbCheckChannels:
		b.handleCheckChannels(ctx, cq)
	case strings.HasPrefix(data, cbBroadcastPfx):
		b.handleBroadcastSelection(cq, strings.TrimPrefix(data, cbBroadcastPfx))
	case data == cbUserStats:
		b.handleUserStats(ctx, cq)
	case data == cbExportUsers:
		b.handleExportUsers(ctx, cq)
	default:
		b.answer(tgbotapi.NewCallback(cq.ID, ""))
	}
}

func (b *Bot) handleCheckChannels(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if !b.verify(ctx, cq.From.ID).Satisfied() {
		b.answer(tgbotapi.NewCallbackWithAlert(cq.ID, mustJoinAlert))
		return
	}

	b.answer(tgbotapi.NewCallback(cq.ID, ""))
	if cq.Message == nil {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(cq.Message.Chat.ID, cq.Message.MessageID)); err != nil {
		b.logger.Warn("failed to delete join requirement", slog.String("error", err.Error()))
	}
	b.showMainMenu(cq.Message.Chat.ID)
}

func (b *Bot) handleBroadcastSelection(cq *tgbotapi.CallbackQuery, action string) {
	if !b.isAdmin(cq.From.ID) {
		b.answer(tgbotapi.NewCallback(cq.ID, notAdmin))
		return
	}

	kind, ok := domain.ParseContentKind(action)
	if !ok {
		b.logger.Warn("unknown broadcast action", slog.String("action", action))
		b.answer(tgbotapi.NewCallback(cq.ID, ""))
		return
	}

	b.selections.Set(cq.From.ID, kind)
	b.answer(tgbotapi.NewCallback(cq.ID, ""))
	if cq.Message != nil {
		b.sendMessage(tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, fmt.Sprintf(broadcastPrompt, kind.Label())))
	}
}

func (b *Bot) handleUserStats(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if !b.isAdmin(cq.From.ID) {
		b.answer(tgbotapi.NewCallback(cq.ID, notAdminStats))
		return
	}

	count, err := b.svc.Registry.Count(ctx)
	if err != nil {
		b.logger.Error("failed to count users", slog.String("error", err.Error()))
		count = 0
	}

	b.answer(tgbotapi.NewCallback(cq.ID, ""))
	if cq.Message != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, fmt.Sprintf(totalUsersFmt, count), adminPanelKeyboard())
		b.sendMessage(edit)
	}
}

func (b *Bot) handleExportUsers(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if !b.isAdmin(cq.From.ID) {
		b.answer(tgbotapi.NewCallback(cq.ID, notAdmin))
		return
	}
	b.answer(tgbotapi.NewCallback(cq.ID, ""))

	chatID := cq.From.ID
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
	}

	users, err := b.svc.Registry.List(ctx)
	if err != nil {
		b.logger.Error("failed to list users", slog.String("error", err.Error()))
		b.sendMessage(tgbotapi.NewMessage(chatID, errorText(err)))
		return
	}

	var buf bytes.Buffer
	if err := b.svc.Exporter.Export(&buf, users); err != nil {
		b.logger.Error("failed to export users", slog.String("error", err.Error()))
		b.sendMessage(tgbotapi.NewMessage(chatID, errorText(err)))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("users_%s.xlsx", time.Now().Format("2006-01-02_15-04-05")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf(exportCaptionFmt, len(users))
	b.sendMessage(doc)
}

func (b *Bot) replyText(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	b.sendMessage(reply)
}

func (b *Bot) replyHTML(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID
	b.sendMessage(reply)
}

func (b *Bot) answer(cb tgbotapi.CallbackConfig) {
	if _, err := b.api.Request(cb); err != nil {
		b.logger.Error("failed to answer callback", slog.String("error", err.Error()))
	}
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}

// errorText форматирует ошибку для пользователя без токенов и ключей API.
func errorText(err error) string {
	return tglog.MaskTokens(fmt.Sprintf(errorFmt, err))
}
