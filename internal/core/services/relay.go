package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"telegram-gateway-bot/internal/domain"
	"telegram-gateway-bot/internal/ports"
)

var (
	// ErrFetchFailed — не удалось получить исходное изображение из Telegram.
	ErrFetchFailed = errors.New("image fetch failed")
	// ErrUploadFailed — хостинг изображений отклонил загрузку или вернул некорректный ответ.
	ErrUploadFailed = errors.New("image upload failed")
)

const (
	uploadFileName = "image.jpg"
	resultFileName = "result.jpg"
	resultMIME     = "image/jpeg"
)

// RelayOption - функциональная опция для настройки MediaRelay.
type RelayOption func(*MediaRelay)

// WithFetchTimeout устанавливает таймаут скачивания исходного файла.
func WithFetchTimeout(d time.Duration) RelayOption {
	return func(r *MediaRelay) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// WithUploadTimeout устанавливает таймаут загрузки на хостинг.
func WithUploadTimeout(d time.Duration) RelayOption {
	return func(r *MediaRelay) {
		if d > 0 {
			r.uploadTimeout = d
		}
	}
}

// WithMaxImageBytes ограничивает размер скачиваемого файла.
func WithMaxImageBytes(n int64) RelayOption {
	return func(r *MediaRelay) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithHTTPClient задает HTTP-клиент для скачивания файлов.
func WithHTTPClient(c *http.Client) RelayOption {
	return func(r *MediaRelay) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithRelayLogger устанавливает логгер для конвейера.
func WithRelayLogger(l *slog.Logger) RelayOption {
	return func(r *MediaRelay) {
		if l != nil {
			r.log = l
		}
	}
}

// MediaRelay переносит изображение из Telegram на внешний хостинг.
// Не хранит состояния между вызовами и безопасен для одновременного использования.
type MediaRelay struct {
	locator       ports.FileLocator
	host          ports.ImageHost
	httpClient    *http.Client
	fetchTimeout  time.Duration
	uploadTimeout time.Duration
	maxBytes      int64
	log           *slog.Logger
}

// NewMediaRelay создает конвейер с таймаутами 20 и 30 секунд по умолчанию.
func NewMediaRelay(locator ports.FileLocator, host ports.ImageHost, opts ...RelayOption) *MediaRelay {
	r := &MediaRelay{
		locator:       locator,
		host:          host,
		httpClient:    &http.Client{},
		fetchTimeout:  20 * time.Second,
		uploadTimeout: 30 * time.Second,
		maxBytes:      20 << 20,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Relay выполняет шаги строго последовательно: адрес файла, скачивание, загрузка.
// При ошибке скачивания загрузка не выполняется.
func (r *MediaRelay) Relay(ctx context.Context, fileID string) (*domain.RelayArtifact, error) {
	log := r.log.With(slog.String("relay_id", uuid.NewString()))

	fileURL, err := r.locator.FileURL(ctx, fileID)
	if err != nil {
		log.ErrorContext(ctx, "failed to resolve file url", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: resolve file: %v", ErrFetchFailed, err)
	}

	data, err := r.fetch(ctx, fileURL)
	if err != nil {
		log.ErrorContext(ctx, "failed to download image", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	log.DebugContext(ctx, "image downloaded", slog.Int("bytes", len(data)))

	hostedURL, err := r.upload(ctx, data)
	if err != nil {
		log.ErrorContext(ctx, "failed to upload image", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	log.InfoContext(ctx, "image relayed", slog.String("url", hostedURL))

	return &domain.RelayArtifact{
		Data:        data,
		HostedURL:   hostedURL,
		ContentType: resultMIME,
		FileName:    resultFileName,
	}, nil
}

func (r *MediaRelay) fetch(ctx context.Context, fileURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", r.maxBytes)
	}
	return data, nil
}

func (r *MediaRelay) upload(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.uploadTimeout)
	defer cancel()
	return r.host.Upload(ctx, uploadFileName, data)
}
