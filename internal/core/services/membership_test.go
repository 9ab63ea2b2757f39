package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"telegram-gateway-bot/internal/domain"
)

var testCommunities = []domain.CommunityHandle{"@c1", "@c2", "@c3"}

func TestMembershipVerifier_AllActive(t *testing.T) {
	oracle := new(mockOracle)
	for _, c := range testCommunities {
		oracle.On("MembershipStatus", mock.Anything, c, int64(7)).Return(domain.MemberStatusActive, nil).Once()
	}
	v := NewMembershipVerifier(oracle, testCommunities, WithMembershipLogger(quietLogger()))

	res := v.Verify(context.Background(), 7)

	assert.True(t, res.Satisfied())
	assert.Empty(t, res.FailingCommunity)
	assert.NoError(t, res.Err)
	oracle.AssertExpectations(t)
}

// TestMembershipVerifier_FailFast проверяет, что после первого отказа остальные сообщества не опрашиваются.
func TestMembershipVerifier_FailFast(t *testing.T) {
	for _, status := range []domain.MemberStatus{domain.MemberStatusLeft, domain.MemberStatusKicked} {
		t.Run(string(status), func(t *testing.T) {
			oracle := new(mockOracle)
			oracle.On("MembershipStatus", mock.Anything, domain.CommunityHandle("@c1"), int64(7)).Return(domain.MemberStatusActive, nil).Once()
			oracle.On("MembershipStatus", mock.Anything, domain.CommunityHandle("@c2"), int64(7)).Return(status, nil).Once()
			v := NewMembershipVerifier(oracle, testCommunities, WithMembershipLogger(quietLogger()))

			res := v.Verify(context.Background(), 7)

			assert.Equal(t, domain.OutcomeNotMember, res.Outcome)
			assert.Equal(t, domain.CommunityHandle("@c2"), res.FailingCommunity)
			assert.False(t, res.OperationalFailure())
			oracle.AssertExpectations(t)
			oracle.AssertNotCalled(t, "MembershipStatus", mock.Anything, domain.CommunityHandle("@c3"), int64(7))
		})
	}
}

func TestMembershipVerifier_CallError(t *testing.T) {
	oracle := new(mockOracle)
	apiErr := errors.New("Bad Request: chat not found")
	oracle.On("MembershipStatus", mock.Anything, domain.CommunityHandle("@c1"), int64(7)).Return(domain.MemberStatusUnknown, apiErr).Once()
	v := NewMembershipVerifier(oracle, testCommunities, WithMembershipLogger(quietLogger()))

	res := v.Verify(context.Background(), 7)

	assert.Equal(t, domain.OutcomeCheckFailed, res.Outcome)
	assert.True(t, res.OperationalFailure())
	assert.Equal(t, domain.CommunityHandle("@c1"), res.FailingCommunity)
	assert.ErrorIs(t, res.Err, apiErr)
	assert.Contains(t, res.Diagnostic, "@c1")
	oracle.AssertNumberOfCalls(t, "MembershipStatus", 1)
}

func TestMembershipVerifier_UnknownStatusCountsAsPresent(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("MembershipStatus", mock.Anything, mock.Anything, int64(7)).Return(domain.MemberStatusUnknown, nil)
	v := NewMembershipVerifier(oracle, testCommunities[:1], WithMembershipLogger(quietLogger()))

	assert.True(t, v.Verify(context.Background(), 7).Satisfied())
}

func TestMembershipVerifier_EmptyList(t *testing.T) {
	oracle := new(mockOracle)
	v := NewMembershipVerifier(oracle, nil, WithMembershipLogger(quietLogger()))

	assert.True(t, v.Verify(context.Background(), 7).Satisfied())
	oracle.AssertNotCalled(t, "MembershipStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewMembershipVerifier_WarnsOnEmptyList(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NewMembershipVerifier(new(mockOracle), testCommunities, WithMembershipLogger(logger))
	assert.Empty(t, buf.String())

	NewMembershipVerifier(new(mockOracle), nil, WithMembershipLogger(logger))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "membership gate admits everyone")
}

func TestMembershipVerifier_PerCallTimeout(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("MembershipStatus", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 50*time.Millisecond
	}), domain.CommunityHandle("@c1"), int64(7)).Return(domain.MemberStatusActive, nil).Once()
	v := NewMembershipVerifier(oracle, testCommunities[:1], WithCheckTimeout(50*time.Millisecond), WithMembershipLogger(quietLogger()))

	assert.True(t, v.Verify(context.Background(), 7).Satisfied())
	oracle.AssertExpectations(t)
}
