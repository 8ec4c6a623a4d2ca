package like

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/recipebook/internal/application/session"
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/recipebook/pkg/errors"
	"github.com/alchemorsel/recipebook/test/testutils"
)

type SynchronizerTestSuite struct {
	suite.Suite
	ctx      context.Context
	kv       *memory.KeyValueStore
	sessions *session.Store
	remote   *testutils.MockPersonalizationService
	metrics  *testutils.RecordingMetrics
	sync     *Synchronizer
}

func (s *SynchronizerTestSuite) SetupTest() {
	s.ctx = context.Background()
	logger := zaptest.NewLogger(s.T())

	s.kv = memory.NewKeyValueStore()
	s.metrics = testutils.NewRecordingMetrics()
	s.sessions = session.NewStore(s.kv, s.metrics, logger)
	s.remote = new(testutils.MockPersonalizationService)
	s.sync = NewSynchronizer(s.sessions, s.remote, testutils.NewRecipeFactory(1).Index(20), s.metrics, logger)
}

func (s *SynchronizerTestSuite) login(likes ...int) {
	_, err := s.sessions.Login(s.ctx, user.Info{IDUser: 11}, testutils.IDs(likes...))
	s.Require().NoError(err)
}

func (s *SynchronizerTestSuite) waitForNotifications() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	s.Require().NoError(s.sync.Wait(ctx))
}

func (s *SynchronizerTestSuite) TestToggleLikeAddsAndPersists() {
	s.login(1)
	s.remote.On("Like", mock.Anything, user.ID(11), recipe.ID(4)).Return(nil).Once()

	likes, err := s.sync.ToggleLike(s.ctx, 4)
	s.Require().NoError(err)
	s.waitForNotifications()

	s.Equal(testutils.IDs(1, 4), likes.IDs())
	s.True(s.sync.IsLiked(4))
	s.Equal(testutils.IDs(1, 4), s.sessions.Current().Likes.IDs())

	persisted, err := s.kv.Get(s.ctx, session.KeyLikes)
	s.Require().NoError(err)
	s.JSONEq(`[1,4]`, string(persisted))
	s.Equal(1, s.metrics.Count(s.metrics.LikeNotifications, "success"))
	s.remote.AssertExpectations(s.T())
}

func (s *SynchronizerTestSuite) TestRepeatedLikesNeverDuplicate() {
	s.login()
	s.remote.On("Like", mock.Anything, user.ID(11), recipe.ID(7)).Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := s.sync.ToggleLike(s.ctx, 7)
		s.Require().NoError(err)
	}
	s.waitForNotifications()

	s.Equal(testutils.IDs(7), s.sessions.Current().Likes.IDs())
	s.remote.AssertNumberOfCalls(s.T(), "Like", 3)
}

func (s *SynchronizerTestSuite) TestRemoteFailureKeepsOptimisticLike() {
	s.login()
	s.remote.On("Like", mock.Anything, user.ID(11), recipe.ID(2)).
		Return(errors.NewNetworkError("/like", stderrors.New("connection refused"))).Once()

	likes, err := s.sync.ToggleLike(s.ctx, 2)
	s.Require().NoError(err)
	s.waitForNotifications()

	s.True(likes.Contains(2))
	s.True(s.sync.IsLiked(2))
	s.Equal(1, s.metrics.Count(s.metrics.LikeNotifications, "failure"))
}

func (s *SynchronizerTestSuite) TestLikeIsVisibleBeforeNotificationCompletes() {
	s.login()
	release := make(chan struct{})
	s.remote.On("Like", mock.Anything, user.ID(11), recipe.ID(3)).
		Run(func(mock.Arguments) { <-release }).Return(nil).Once()

	likes, err := s.sync.ToggleLike(s.ctx, 3)
	s.Require().NoError(err)
	s.True(likes.Contains(3))
	s.True(s.sync.IsLiked(3))

	close(release)
	s.waitForNotifications()
}

func (s *SynchronizerTestSuite) TestToggleLikeRequiresSession() {
	_, err := s.sync.ToggleLike(s.ctx, 1)

	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeNotAuthenticated))
	s.remote.AssertNotCalled(s.T(), "Like", mock.Anything, mock.Anything, mock.Anything)
}

func (s *SynchronizerTestSuite) TestSavedResolvesInLikeOrderAndDropsUnknown() {
	s.login(9, 500, 2)

	saved := s.sync.Saved()

	s.Equal(testutils.IDs(9, 2), saved.IDs())
	s.Equal(1, s.metrics.Count(s.metrics.Gaps, "saved"))
}

func (s *SynchronizerTestSuite) TestWaitHonoursContext() {
	s.login()
	release := make(chan struct{})
	defer close(release)
	s.remote.On("Like", mock.Anything, user.ID(11), recipe.ID(5)).
		Run(func(mock.Arguments) { <-release }).Return(nil).Once()

	_, err := s.sync.ToggleLike(s.ctx, 5)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.sync.Wait(ctx), context.DeadlineExceeded)
}

func TestSynchronizerTestSuite(t *testing.T) {
	suite.Run(t, new(SynchronizerTestSuite))
}
