package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// maskRule заменяет все совпадения pattern на replacement.
type maskRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var defaultRules = []maskRule{
	// токен бота в URL Bot API: bot<id>:<secret>
	{regexp.MustCompile(`\bbot\d+:[A-Za-z0-9_-]{35,}`), "bot***:***masked-token***"},
	// ключ ImgBB передается в query-параметре key
	{regexp.MustCompile(`([?&]key=)[^&\s"']+`), "${1}***masked-key***"},
}

const maskedSecret = "***masked***"

// masker применяет правила и затем вырезает известные секреты дословно.
type masker struct {
	rules   []maskRule
	secrets []string
}

func newMasker(secrets []string) *masker {
	m := &masker{rules: defaultRules}
	for _, s := range secrets {
		// Короткие строки дали бы ложные совпадения в обычном тексте.
		if len(s) >= 8 {
			m.secrets = append(m.secrets, s)
		}
	}
	return m
}

func (m *masker) mask(text string) string {
	for _, r := range m.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	for _, s := range m.secrets {
		text = strings.ReplaceAll(text, s, maskedSecret)
	}
	return text
}

func (m *masker) maskValue(value slog.Value) slog.Value {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(m.mask(value.String()))
	case slog.KindAny:
		// Ошибки транспорта содержат полный URL запроса вместе с токеном.
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(m.mask(err.Error()))
		}
		return value
	case slog.KindGroup:
		return slog.GroupValue(m.maskAttrs(value.Group())...)
	default:
		return value
	}
}

func (m *masker) maskAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: a.Key, Value: m.maskValue(a.Value)}
	}
	return out
}

// MaskTokens маскирует текст правилами по умолчанию. Нужен для текста, который
// уходит не в лог, а пользователю: ответы об ошибках, оповещения администратору.
func MaskTokens(text string) string {
	return newMasker(nil).mask(text)
}

// TokenMaskerHandler - обертка для slog.Handler, которая маскирует токены и ключи API в логах
type TokenMaskerHandler struct {
	handler slog.Handler
	masker  *masker
}

// NewTokenMaskerHandler создает новый обработчик с маскировкой токенов.
// secrets дополнительно вырезаются из логов как есть (токен бота, ключ ImgBB).
func NewTokenMaskerHandler(handler slog.Handler, secrets ...string) *TokenMaskerHandler {
	return &TokenMaskerHandler{
		handler: handler,
		masker:  newMasker(secrets),
	}
}

// Enabled реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Новая запись вместо Clone: атрибуты исходной записи не должны попасть в вывод немаскированными.
	r := slog.NewRecord(record.Time, record.Level, h.masker.mask(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(slog.Attr{Key: a.Key, Value: h.masker.maskValue(a.Value)})
		return true
	})
	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TokenMaskerHandler{
		handler: h.handler.WithAttrs(h.masker.maskAttrs(attrs)),
		masker:  h.masker,
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{
		handler: h.handler.WithGroup(name),
		masker:  h.masker,
	}
}

// NewMaskedLogger создает новый экземпляр slog.Logger с маскировкой токенов
func NewMaskedLogger(handler slog.Handler, secrets ...string) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(handler, secrets...))
}
