package auth

import (
	"context"
	"errors"
	"testing"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/events"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/platform/database"
	"bookmarked_backend/internal/platform/metrics"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	return m.Called(event.Type).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

// blindRepository hides existing accounts from lookups, reproducing the
// window in which two onboarding requests both miss the re-check.
type blindRepository struct {
	account.Repository
}

func (r blindRepository) FindByProvider(context.Context, string, string) (*account.Account, error) {
	return nil, common.ErrNotFound
}

type ProvisioningTestSuite struct {
	suite.Suite
	db        *gorm.DB
	repo      account.Repository
	publisher *mockPublisher
	metrics   *metrics.Metrics
	svc       *ProvisioningService
}

func (s *ProvisioningTestSuite) SetupTest() {
	db, err := database.NewSQLiteInMemory()
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&account.Account{}))
	s.db = db
	s.repo = account.NewGORMRepository(db)
	s.publisher = &mockPublisher{}
	s.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	s.metrics = metrics.New()
	s.svc = NewProvisioningService(s.repo, s.publisher, s.metrics, zap.NewNop())
}

func (s *ProvisioningTestSuite) TearDownTest() {
	database.CloseGORMDB(s.db)
}

func janeIdentity() identity.External {
	return identity.External{
		Provider:  ProviderGoogle,
		Subject:   "g-1",
		Email:     "jane@example.com",
		AvatarURL: "https://example.com/jane.png",
	}
}

func (s *ProvisioningTestSuite) countAccounts() int64 {
	n, err := s.repo.Count(context.Background())
	s.Require().NoError(err)
	return n
}

func (s *ProvisioningTestSuite) outcomeCount(outcome string) float64 {
	return s.metrics.ProvisioningCount(outcome)
}

func (s *ProvisioningTestSuite) TestResolveIdentity_NewIdentityIsStaged() {
	p, err := s.svc.ResolveIdentity(context.Background(), janeIdentity())
	s.Require().NoError(err)

	s.Equal(identity.KindStaged, p.Kind)
	s.Require().NotNil(p.Staged)
	s.True(p.Staged.IsNew)
	s.Equal("g-1", p.Staged.Subject)
	s.Equal("jane@example.com", p.Staged.Email)
	s.Nil(p.Account)
	s.EqualValues(0, s.countAccounts(), "staging never writes to the store")
	s.Equal(1.0, s.outcomeCount(metrics.OutcomeStaged))
}

func (s *ProvisioningTestSuite) TestCreateProfile_ProvisionsAccount() {
	ctx := context.Background()
	s.publisher.ExpectedCalls = nil
	s.publisher.On("Publish", events.AccountCreated).Return(nil).Once()

	staged, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)

	acc, reused, err := s.svc.CreateProfile(ctx, staged, "  Jane  ")
	s.Require().NoError(err)
	s.False(reused)
	s.Equal("Jane", acc.Nickname)
	s.Equal("Jane", acc.DisplayName)
	s.Equal("google", acc.Provider)
	s.Equal("g-1", acc.ProviderID)
	s.Equal("jane@example.com", acc.Email)
	s.Equal(account.RoleStandard, acc.Role)
	s.Equal(account.DefaultBio, acc.Bio)
	s.Equal(account.DefaultFavoriteGenre, acc.FavoriteGenre)
	s.Equal(account.DefaultGoal, acc.Goal)
	s.publisher.AssertExpectations(s.T())

	returning, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)
	s.Equal(identity.KindAccount, returning.Kind)
	s.Equal(acc.ID, returning.Account.ID)
}

func (s *ProvisioningTestSuite) TestCreateProfile_BlankNicknameRejected() {
	ctx := context.Background()
	staged, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)

	_, _, err = s.svc.CreateProfile(ctx, staged, "   ")
	s.True(errors.Is(err, common.ErrValidation))
	s.EqualValues(0, s.countAccounts())
}

func (s *ProvisioningTestSuite) TestCreateProfile_NoPrincipal() {
	_, _, err := s.svc.CreateProfile(context.Background(), nil, "Jane")
	s.True(errors.Is(err, common.ErrUnauthorized))
}

func (s *ProvisioningTestSuite) TestCreateProfile_IsIdempotent() {
	ctx := context.Background()
	staged, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)

	first, _, err := s.svc.CreateProfile(ctx, staged, "Jane")
	s.Require().NoError(err)

	// Same staged session submitted again, e.g. a double click.
	second, reused, err := s.svc.CreateProfile(ctx, staged, "Someone Else")
	s.Require().NoError(err)
	s.True(reused)
	s.Equal(first.ID, second.ID)
	s.Equal("Jane", second.Nickname, "an existing nickname is never overwritten")

	// Re-submission from an already provisioned session.
	third, reused, err := s.svc.CreateProfile(ctx, identity.AccountPrincipal(first), "Other")
	s.Require().NoError(err)
	s.True(reused)
	s.Equal(first.ID, third.ID)

	s.EqualValues(1, s.countAccounts())
	s.Equal(2.0, s.outcomeCount(metrics.OutcomeReused))
}

func (s *ProvisioningTestSuite) TestCreateProfile_LostRaceIsConflict() {
	ctx := context.Background()
	staged, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)
	_, _, err = s.svc.CreateProfile(ctx, staged, "Jane")
	s.Require().NoError(err)

	racing := NewProvisioningService(blindRepository{s.repo}, s.publisher, s.metrics, zap.NewNop())
	_, _, err = racing.CreateProfile(ctx, staged, "Jane")
	s.True(errors.Is(err, common.ErrConflict))
	s.EqualValues(1, s.countAccounts())
	s.Equal(1.0, s.outcomeCount(metrics.OutcomeConflict))
}

func (s *ProvisioningTestSuite) TestLoadPrincipal() {
	ctx := context.Background()
	staged, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)

	p, err := s.svc.LoadPrincipal(ctx, staged.Claim())
	s.Require().NoError(err)
	s.Equal(identity.KindStaged, p.Kind)
	s.Equal("g-1", p.Staged.Subject)

	acc, _, err := s.svc.CreateProfile(ctx, staged, "Jane")
	s.Require().NoError(err)

	p, err = s.svc.LoadPrincipal(ctx, identity.AccountClaim(acc))
	s.Require().NoError(err)
	s.True(p.IsProvisioned())
	s.Equal(acc.ID, p.Account.ID)

	s.Require().NoError(s.repo.Delete(ctx, acc.ID))
	p, err = s.svc.LoadPrincipal(ctx, identity.AccountClaim(acc))
	s.Require().NoError(err)
	s.Nil(p, "a deleted account resolves to no identity")

	again, err := s.svc.ResolveIdentity(ctx, janeIdentity())
	s.Require().NoError(err)
	s.Equal(identity.KindStaged, again.Kind, "after deletion the identity is treated as new")
}

func TestProvisioningTestSuite(t *testing.T) {
	suite.Run(t, new(ProvisioningTestSuite))
}
