package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"telegram-gateway-bot/internal/domain"
	"telegram-gateway-bot/internal/ports"
)

// MembershipOption - функциональная опция для настройки MembershipVerifier.
type MembershipOption func(*MembershipVerifier)

// WithCheckTimeout устанавливает таймаут одного запроса статуса.
func WithCheckTimeout(d time.Duration) MembershipOption {
	return func(v *MembershipVerifier) {
		if d > 0 {
			v.checkTimeout = d
		}
	}
}

// WithMembershipLogger устанавливает логгер для проверки членства.
func WithMembershipLogger(l *slog.Logger) MembershipOption {
	return func(v *MembershipVerifier) {
		if l != nil {
			v.log = l
		}
	}
}

// MembershipVerifier проверяет, состоит ли пользователь во всех обязательных сообществах.
// Проверка не имеет побочных эффектов: уведомление администратора остается за вызывающей стороной.
type MembershipVerifier struct {
	oracle       ports.MembershipOracle
	communities  []domain.CommunityHandle
	checkTimeout time.Duration
	log          *slog.Logger
}

// NewMembershipVerifier создает проверку для упорядоченного списка сообществ.
func NewMembershipVerifier(oracle ports.MembershipOracle, communities []domain.CommunityHandle, opts ...MembershipOption) *MembershipVerifier {
	v := &MembershipVerifier{
		oracle:       oracle,
		communities:  append([]domain.CommunityHandle(nil), communities...),
		checkTimeout: 10 * time.Second,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if len(v.communities) == 0 {
		v.log.Warn("no required communities configured, membership gate admits everyone")
	}
	return v
}

// Communities возвращает копию списка обязательных сообществ в порядке проверки.
func (v *MembershipVerifier) Communities() []domain.CommunityHandle {
	return append([]domain.CommunityHandle(nil), v.communities...)
}

// Verify опрашивает сообщества по порядку и останавливается на первом отказе.
func (v *MembershipVerifier) Verify(ctx context.Context, userID int64) domain.MembershipResult {
	log := v.log.With(slog.Int64("user_id", userID))

	for _, community := range v.communities {
		status, err := v.status(ctx, community, userID)
		if err != nil {
			log.ErrorContext(ctx, "membership check failed",
				slog.String("community", string(community)),
				slog.String("error", err.Error()),
			)
			return domain.MembershipResult{
				Outcome:          domain.OutcomeCheckFailed,
				FailingCommunity: community,
				Diagnostic:       fmt.Sprintf("Channel check failed for %s: %v", community, err),
				Err:              err,
			}
		}

		if status.IsAbsent() {
			log.DebugContext(ctx, "user is not a member",
				slog.String("community", string(community)),
				slog.String("status", string(status)),
			)
			return domain.MembershipResult{
				Outcome:          domain.OutcomeNotMember,
				FailingCommunity: community,
				Diagnostic:       fmt.Sprintf("user has status %s in %s", status, community),
			}
		}
	}

	return domain.MembershipResult{Outcome: domain.OutcomeSatisfied}
}

func (v *MembershipVerifier) status(ctx context.Context, community domain.CommunityHandle, userID int64) (domain.MemberStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, v.checkTimeout)
	defer cancel()
	return v.oracle.MembershipStatus(ctx, community, userID)
}
