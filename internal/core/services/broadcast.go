package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"telegram-gateway-bot/internal/domain"
	"telegram-gateway-bot/internal/ports"
)

var (
	// ErrNotAuthorized возвращается, если операцию запрашивает не администратор.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidPayload возвращается, если содержимое рассылки не соответствует своему типу.
	ErrInvalidPayload = errors.New("invalid broadcast payload")
)

// BroadcastOption - функциональная опция для настройки BroadcastEngine.
type BroadcastOption func(*BroadcastEngine)

// WithPoolSize устанавливает количество одновременных отправок.
func WithPoolSize(n int) BroadcastOption {
	return func(e *BroadcastEngine) {
		if n > 0 {
			e.poolSize = n
		}
	}
}

// WithSendTimeout устанавливает таймаут одной отправки.
func WithSendTimeout(d time.Duration) BroadcastOption {
	return func(e *BroadcastEngine) {
		if d > 0 {
			e.sendTimeout = d
		}
	}
}

// WithBroadcastLogger устанавливает логгер для рассылки.
func WithBroadcastLogger(l *slog.Logger) BroadcastOption {
	return func(e *BroadcastEngine) {
		if l != nil {
			e.log = l
		}
	}
}

// BroadcastEngine доставляет одно сообщение всем зарегистрированным пользователям.
// Каждому получателю делается ровно одна попытка, ошибки не прерывают рассылку.
type BroadcastEngine struct {
	registry    ports.UserRegistry
	deliverer   ports.Deliverer
	adminID     int64
	poolSize    int
	sendTimeout time.Duration
	log         *slog.Logger
}

// NewBroadcastEngine создает движок рассылки. По умолчанию используется 3 воркера.
func NewBroadcastEngine(registry ports.UserRegistry, deliverer ports.Deliverer, adminID int64, opts ...BroadcastOption) *BroadcastEngine {
	e := &BroadcastEngine{
		registry:    registry,
		deliverer:   deliverer,
		adminID:     adminID,
		poolSize:    3,
		sendTimeout: 10 * time.Second,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsAdmin сообщает, является ли пользователь администратором.
func (e *BroadcastEngine) IsAdmin(userID int64) bool {
	return userID == e.adminID
}

// Broadcast рассылает payload по снимку реестра и возвращает число успешных доставок.
func (e *BroadcastEngine) Broadcast(ctx context.Context, callerID int64, payload domain.BroadcastPayload) (int, error) {
	if !e.IsAdmin(callerID) {
		return 0, ErrNotAuthorized
	}
	if err := payload.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ids, err := e.registry.AllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load recipients: %w", err)
	}

	log := e.log.With(
		slog.String("broadcast_id", uuid.NewString()),
		slog.String("kind", string(payload.Kind)),
	)
	log.InfoContext(ctx, "Starting broadcast", "recipients", len(ids), "pool_size", e.poolSize)

	if len(ids) == 0 {
		return 0, nil
	}

	tasks := make(chan int64, len(ids))
	results := make(chan bool, len(ids))
	var wg sync.WaitGroup

	workers := e.poolSize
	if workers > len(ids) {
		workers = len(ids)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go e.worker(ctx, &wg, log, payload, tasks, results)
	}

	for _, id := range ids {
		tasks <- id
	}
	close(tasks)
	wg.Wait()
	close(results)

	delivered := 0
	for ok := range results {
		if ok {
			delivered++
		}
	}

	log.InfoContext(ctx, "Broadcast finished", "delivered", delivered, "failed", len(ids)-delivered)
	return delivered, nil
}

func (e *BroadcastEngine) worker(ctx context.Context, wg *sync.WaitGroup, log *slog.Logger, payload domain.BroadcastPayload, tasks <-chan int64, results chan<- bool) {
	defer wg.Done()
	for id := range tasks {
		results <- e.deliver(ctx, log, id, payload)
	}
}

func (e *BroadcastEngine) deliver(ctx context.Context, log *slog.Logger, chatID int64, payload domain.BroadcastPayload) bool {
	ctx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	if err := e.deliverer.Deliver(ctx, chatID, payload); err != nil {
		log.WarnContext(ctx, "Failed to deliver broadcast", "recipient", chatID, "error", err)
		return false
	}
	return true
}
