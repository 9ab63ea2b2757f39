package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"telegram-gateway-bot/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockOracle - мок для интерфейса ports.MembershipOracle.
type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) MembershipStatus(ctx context.Context, community domain.CommunityHandle, userID int64) (domain.MemberStatus, error) {
	args := m.Called(ctx, community, userID)
	return args.Get(0).(domain.MemberStatus), args.Error(1)
}

// mockLocator - мок для интерфейса ports.FileLocator.
type mockLocator struct {
	mock.Mock
}

func (m *mockLocator) FileURL(ctx context.Context, fileID string) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

// mockHost - мок для интерфейса ports.ImageHost.
type mockHost struct {
	mock.Mock
}

func (m *mockHost) Upload(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

// mockDeliverer - мок для интерфейса ports.Deliverer.
type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, chatID int64, payload domain.BroadcastPayload) error {
	args := m.Called(ctx, chatID, payload)
	return args.Error(0)
}

// mockRegistry - мок для интерфейса ports.UserRegistry.
type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) UpsertSeen(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRegistry) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRegistry) AllIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if ids := args.Get(0); ids != nil {
		return ids.([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistry) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistry) Close() error { return nil }
