package domain

import (
	"fmt"
	"strings"
	"time"
)

// User представляет любого, кто хотя бы раз отправил боту команду /start.
// Запись создается один раз и больше никогда не изменяется.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	JoinedAt  time.Time `json:"joined_at"`
}

// CommunityHandle — идентификатор канала или группы, членство в которой
// обязательно для доступа к основной функции (например, "@channel" или "-100123").
type CommunityHandle string

// Username возвращает имя канала без ведущего "@".
func (h CommunityHandle) Username() string {
	return strings.TrimPrefix(string(h), "@")
}

// IsUsername сообщает, задан ли канал через публичное имя, а не числовой ID.
func (h CommunityHandle) IsUsername() bool {
	return strings.HasPrefix(string(h), "@")
}

// MemberStatus - нормализованный статус пользователя в сообществе.
type MemberStatus string

const (
	MemberStatusActive  MemberStatus = "active"
	MemberStatusLeft    MemberStatus = "left"
	MemberStatusKicked  MemberStatus = "kicked"
	MemberStatusUnknown MemberStatus = "unknown"
)

// IsAbsent сообщает, что пользователь не является участником сообщества.
func (s MemberStatus) IsAbsent() bool {
	return s == MemberStatusLeft || s == MemberStatusKicked
}

// MembershipOutcome — явное состояние результата проверки членства.
type MembershipOutcome int

const (
	OutcomeSatisfied MembershipOutcome = iota
	OutcomeNotMember
	OutcomeCheckFailed
)

func (o MembershipOutcome) String() string {
	switch o {
	case OutcomeSatisfied:
		return "satisfied"
	case OutcomeNotMember:
		return "not_member"
	case OutcomeCheckFailed:
		return "check_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MembershipResult — эфемерный результат проверки; никогда не кэшируется.
type MembershipResult struct {
	Outcome MembershipOutcome
	// FailingCommunity пуст, если все проверки пройдены.
	FailingCommunity CommunityHandle
	Diagnostic       string
	// Err заполнен только для OutcomeCheckFailed.
	Err error
}

// Satisfied возвращает true, только если пользователь состоит во всех сообществах.
func (r MembershipResult) Satisfied() bool {
	return r.Outcome == OutcomeSatisfied
}

// OperationalFailure сообщает, что проверка не состоялась из-за ошибки вызова,
// а не из-за отсутствия пользователя в сообществе.
func (r MembershipResult) OperationalFailure() bool {
	return r.Outcome == OutcomeCheckFailed
}

// ContentKind - тип содержимого рассылки.
type ContentKind string

const (
	ContentText    ContentKind = "text"
	ContentVideo   ContentKind = "video"
	ContentVoice   ContentKind = "voice"
	ContentSticker ContentKind = "sticker"
)

// ParseContentKind разбирает суффикс callback-данных панели администратора.
// "msg" исторически обозначает текстовое сообщение.
func ParseContentKind(s string) (ContentKind, bool) {
	switch s {
	case "msg", "text":
		return ContentText, true
	case "video":
		return ContentVideo, true
	case "voice":
		return ContentVoice, true
	case "sticker":
		return ContentSticker, true
	default:
		return "", false
	}
}

// Label возвращает человекочитаемое название типа для сообщений администратору.
func (k ContentKind) Label() string {
	if k == ContentText {
		return "message"
	}
	return string(k)
}

// BroadcastPayload описывает одно сообщение рассылки.
// Для текста используется Text, для медиа — FileID (и Caption для видео и голоса).
type BroadcastPayload struct {
	Kind    ContentKind
	Text    string
	FileID  string
	Caption string
}

// Validate проверяет, что форма полезной нагрузки соответствует ее типу.
func (p BroadcastPayload) Validate() error {
	switch p.Kind {
	case ContentText:
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("text broadcast requires non-empty text")
		}
	case ContentVideo, ContentVoice, ContentSticker:
		if p.FileID == "" {
			return fmt.Errorf("%s broadcast requires a file id", p.Kind)
		}
		if p.Kind == ContentSticker && p.Caption != "" {
			return fmt.Errorf("sticker broadcast cannot carry a caption")
		}
	default:
		return fmt.Errorf("unknown content kind %q", p.Kind)
	}
	return nil
}

// RelayArtifact — изображение, прошедшее через конвейер ретрансляции.
// Живет только в памяти на время обработки одного фото.
type RelayArtifact struct {
	Data        []byte
	HostedURL   string
	ContentType string
	FileName    string
}
