package ports

import (
	"context"
	"io"

	"telegram-gateway-bot/internal/domain"
)

// MembershipOracle определяет интерфейс для запроса статуса пользователя в сообществе.
type MembershipOracle interface {
	// MembershipStatus возвращает нормализованный статус пользователя.
	MembershipStatus(ctx context.Context, community domain.CommunityHandle, userID int64) (domain.MemberStatus, error)
}

// FileLocator преобразует идентификатор файла Telegram в прямую ссылку на скачивание.
type FileLocator interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

// ImageHost определяет интерфейс внешнего хостинга изображений.
type ImageHost interface {
	// Upload загружает изображение и возвращает его публичный URL.
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Deliverer доставляет одно сообщение рассылки одному получателю.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, payload domain.BroadcastPayload) error
}

// UserRegistry — постоянное хранилище пользователей, хотя бы раз запустивших бота.
type UserRegistry interface {
	// UpsertSeen сохраняет пользователя, если его еще нет. Повторный вызов ничего не меняет.
	UpsertSeen(ctx context.Context, user domain.User) error
	Count(ctx context.Context) (int, error)
	// AllIDs возвращает снимок всех идентификаторов в порядке регистрации.
	AllIDs(ctx context.Context) ([]int64, error)
	List(ctx context.Context) ([]domain.User, error)
	Close() error
}

// Exporter определяет интерфейс для вывода списка пользователей.
type Exporter interface {
	Export(w io.Writer, users []domain.User) error
}
