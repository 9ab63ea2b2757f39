// Package telegram адаптирует Telegram Bot API к портам приложения.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-gateway-bot/internal/domain"
	tglog "telegram-gateway-bot/internal/log"
	"telegram-gateway-bot/internal/pkg/config"
)

// API — подмножество методов tgbotapi.BotAPI, которые использует приложение.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewBotAPI создает клиента Bot API с ограничением времени на каждый HTTP-запрос.
// Логи библиотеки перенаправляются в slog.
func NewBotAPI(cfg config.Bot, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(&tglog.TGBotAPIAdapter{Logger: logger.With(slog.String("component", "tgbotapi"))}); err != nil {
		return nil, fmt.Errorf("failed to set bot api logger: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))
	return api, nil
}

// DeliveryAPI возвращает копию клиента, у которой каждый HTTP-запрос ограничен timeout.
// Используется для рассылки: запрос завершается вместе с таймаутом отправки, а не
// продолжает выполняться после него.
func DeliveryAPI(api *tgbotapi.BotAPI, timeout time.Duration) *tgbotapi.BotAPI {
	clone := *api
	clone.Client = &http.Client{Timeout: timeout}
	return &clone
}

// Gateway реализует MembershipOracle, FileLocator и Deliverer поверх Bot API.
type Gateway struct {
	api API
	log *slog.Logger
}

// NewGateway создает адаптер.
func NewGateway(api API, logger *slog.Logger) *Gateway {
	return &Gateway{api: api, log: logger}
}

// MembershipStatus запрашивает getChatMember и нормализует статус.
func (g *Gateway) MembershipStatus(ctx context.Context, community domain.CommunityHandle, userID int64) (domain.MemberStatus, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if community.IsUsername() {
		cfg.SuperGroupUsername = string(community)
	} else {
		chatID, err := strconv.ParseInt(string(community), 10, 64)
		if err != nil {
			return domain.MemberStatusUnknown, fmt.Errorf("invalid community handle %q: %w", community, err)
		}
		cfg.ChatID = chatID
	}

	member, err := call(ctx, func() (tgbotapi.ChatMember, error) {
		return g.api.GetChatMember(cfg)
	})
	if err != nil {
		return domain.MemberStatusUnknown, fmt.Errorf("getChatMember %s: %w", community, scrubTransport(err))
	}
	return NormalizeStatus(member.Status), nil
}

// NormalizeStatus сводит статусы Telegram к статусам домена.
func NormalizeStatus(status string) domain.MemberStatus {
	switch status {
	case "creator", "administrator", "member", "restricted":
		return domain.MemberStatusActive
	case "left":
		return domain.MemberStatusLeft
	case "kicked":
		return domain.MemberStatusKicked
	default:
		return domain.MemberStatusUnknown
	}
}

// FileURL возвращает прямую ссылку на файл через getFile.
func (g *Gateway) FileURL(ctx context.Context, fileID string) (string, error) {
	u, err := call(ctx, func() (string, error) {
		return g.api.GetFileDirectURL(fileID)
	})
	if err != nil {
		return "", fmt.Errorf("getFile: %w", scrubTransport(err))
	}
	return u, nil
}

// Deliver отправляет одно сообщение рассылки и дожидается ответа Bot API.
// Запрос не бросается по ctx: его длительность ограничена таймаутом HTTP-клиента
// (см. DeliveryAPI), поэтому результат всегда соответствует фактической доставке.
func (g *Gateway) Deliver(ctx context.Context, chatID int64, payload domain.BroadcastPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := BroadcastMessage(chatID, payload)
	if err != nil {
		return err
	}
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, scrubTransport(err))
	}
	return nil
}

// BroadcastMessage строит сообщение Bot API для указанного типа содержимого.
func BroadcastMessage(chatID int64, payload domain.BroadcastPayload) (tgbotapi.Chattable, error) {
	switch payload.Kind {
	case domain.ContentText:
		return tgbotapi.NewMessage(chatID, payload.Text), nil
	case domain.ContentVideo:
		v := tgbotapi.NewVideo(chatID, tgbotapi.FileID(payload.FileID))
		v.Caption = payload.Caption
		return v, nil
	case domain.ContentVoice:
		v := tgbotapi.NewVoice(chatID, tgbotapi.FileID(payload.FileID))
		v.Caption = payload.Caption
		return v, nil
	case domain.ContentSticker:
		return tgbotapi.NewSticker(chatID, tgbotapi.FileID(payload.FileID)), nil
	default:
		return nil, fmt.Errorf("unsupported content kind %q", payload.Kind)
	}
}

// scrubTransport убирает URL запроса из транспортной ошибки: в нем содержится токен бота.
func scrubTransport(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request failed: %w", uerr.Op, uerr.Err)
	}
	return err
}

// call выполняет блокирующий вызов библиотеки, не дожидаясь его дольше, чем живет ctx.
// Сам HTTP-запрос ограничен таймаутом клиента.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}
