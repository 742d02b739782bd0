package account

import (
	"context"
	"errors"
	"testing"

	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	return m.Called(event.Type, event.AccountID).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestService(t *testing.T, publisher events.Publisher, purgers ...OwnedRecordsPurger) (*ServiceImplementation, Repository) {
	t.Helper()
	repo := NewGORMRepository(newTestDB(t))
	return NewService(repo, purgers, publisher, zap.NewNop()), repo
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, events.NoopPublisher{})

	acc := New("google", "g-1", "jane@example.com", "", "Jane")
	require.NoError(t, repo.Create(ctx, acc))

	updated, err := svc.UpdateProfile(ctx, acc.ID, UpdateProfileRequest{
		Nickname: strPtr("  Janie  "),
		Goal:     intPtr(24),
	})
	require.NoError(t, err)
	assert.Equal(t, "Janie", updated.Nickname)
	assert.Equal(t, 24, updated.Goal)
	assert.Equal(t, DefaultBio, updated.Bio, "absent fields are untouched")

	stored, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janie", stored.Nickname)
}

func TestService_UpdateProfileRejectsBlankNickname(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, events.NoopPublisher{})

	acc := New("google", "g-1", "jane@example.com", "", "Jane")
	require.NoError(t, repo.Create(ctx, acc))

	_, err := svc.UpdateProfile(ctx, acc.ID, UpdateProfileRequest{Nickname: strPtr("   ")})
	assert.True(t, errors.Is(err, common.ErrValidation))

	stored, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.Nickname)
}

func TestService_DeletePublishesEvent(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	purger := &recordingPurger{}
	svc, repo := newTestService(t, pub, purger)

	acc := New("google", "g-1", "jane@example.com", "", "Jane")
	require.NoError(t, repo.Create(ctx, acc))
	pub.On("Publish", events.AccountDeleted, acc.ID).Return(nil).Once()

	require.NoError(t, svc.Delete(ctx, acc.ID))
	assert.Equal(t, acc.ID, purger.calledWith)
	pub.AssertExpectations(t)

	err := svc.Delete(ctx, acc.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestService_DeleteFailureIsReported(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	svc, repo := newTestService(t, pub, &recordingPurger{err: errors.New("boom")})

	acc := New("google", "g-1", "jane@example.com", "", "Jane")
	require.NoError(t, repo.Create(ctx, acc))

	err := svc.Delete(ctx, acc.ID)
	assert.True(t, errors.Is(err, common.ErrInternalServer))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_PromoteByEmail(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, events.NoopPublisher{})

	acc := New("google", "g-1", "jane@example.com", "", "Jane")
	require.NoError(t, repo.Create(ctx, acc))

	promoted, err := svc.PromoteByEmail(ctx, " Jane@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, promoted.Role)

	stored, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasRole(RoleAdmin))

	_, err = svc.PromoteByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestService_ListPaginates(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, events.NoopPublisher{})
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, New("google", uuid.NewString(), "r@example.com", "", "Reader")))
	}

	accounts, pagination, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.EqualValues(t, 3, pagination.TotalItems)
	assert.Equal(t, 2, pagination.TotalPages)
}
