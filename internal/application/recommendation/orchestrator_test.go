package recommendation

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/recipebook/internal/application/session"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/test/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	sessions *session.Store
	remote   *testutils.MockPersonalizationService
	metrics  *testutils.RecordingMetrics
	orch     *Orchestrator
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	logger := zaptest.NewLogger(s.T())

	s.metrics = testutils.NewRecordingMetrics()
	s.sessions = session.NewStore(memory.NewKeyValueStore(), s.metrics, logger)
	s.remote = new(testutils.MockPersonalizationService)
	s.orch = NewOrchestrator(s.sessions, s.remote, testutils.NewRecipeFactory(5).Index(40), s.metrics, logger, DefaultOptions())
}

func (s *OrchestratorTestSuite) loginWithLikes(n int) {
	likes := make([]int, n)
	for i := range likes {
		likes[i] = i + 1
	}
	_, err := s.sessions.Login(s.ctx, user.Info{IDUser: 21}, testutils.IDs(likes...))
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestBelowThresholdIsGatedWithoutRemoteCall() {
	s.loginWithLikes(4)

	state := s.orch.Refresh(s.ctx, 21)

	s.False(state.Eligible)
	s.Equal("Like at least 5 recipes to get custom recommendations", state.Message)
	s.Empty(state.Visible())
	s.remote.AssertNotCalled(s.T(), "Recommend", mock.Anything, mock.Anything)
}

func (s *OrchestratorTestSuite) TestAtThresholdFetchesOnce() {
	s.loginWithLikes(5)
	s.remote.On("Recommend", mock.Anything, user.ID(21)).
		Return(testutils.IDs(30, 31, 999, 32, 33, 34, 35, 36), nil).Once()

	state := s.orch.Refresh(s.ctx, 21)

	s.True(state.Eligible)
	s.Len(state.Items, 7)
	s.Equal(testutils.IDs(30, 31, 32, 33, 34), state.Visible().IDs())
	s.True(state.CanRevealMore())
	s.Equal(1, s.metrics.Count(s.metrics.Gaps, "recommendation"))
	s.remote.AssertNumberOfCalls(s.T(), "Recommend", 1)
}

func (s *OrchestratorTestSuite) TestEveryRefreshFetchesAgain() {
	s.loginWithLikes(6)
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Return(testutils.IDs(1, 2), nil).Twice()

	s.orch.Refresh(s.ctx, 21)
	s.orch.Refresh(s.ctx, 21)

	s.remote.AssertNumberOfCalls(s.T(), "Recommend", 2)
}

func (s *OrchestratorTestSuite) TestRevealMore() {
	s.loginWithLikes(5)
	s.remote.On("Recommend", mock.Anything, user.ID(21)).
		Return(testutils.IDs(1, 2, 3, 4, 5, 6, 7, 8, 9), nil).Once()
	s.orch.Refresh(s.ctx, 21)

	state := s.orch.RevealMore()
	s.Equal(8, state.RevealCount)
	s.Len(state.Visible(), 8)

	state = s.orch.RevealMore()
	s.Equal(11, state.RevealCount)
	s.Len(state.Visible(), 9)
	s.False(state.CanRevealMore())
	s.remote.AssertNumberOfCalls(s.T(), "Recommend", 1)
}

func (s *OrchestratorTestSuite) TestRevealMoreWhileGatedIsNoop() {
	state := s.orch.RevealMore()

	s.False(state.Eligible)
	s.Equal(5, state.RevealCount)
}

func (s *OrchestratorTestSuite) TestRevealCountResetsWhenEligibilityFlips() {
	s.loginWithLikes(5)
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Return(testutils.IDs(1, 2, 3), nil)
	s.orch.Refresh(s.ctx, 21)
	s.orch.RevealMore()
	s.Equal(8, s.orch.Current().RevealCount)

	s.orch.Refresh(s.ctx, 21)
	s.Equal(8, s.orch.Current().RevealCount)

	s.sessions.Logout(s.ctx)
	s.Equal(5, s.orch.Refresh(s.ctx, 21).RevealCount)

	s.loginWithLikes(5)
	s.Equal(5, s.orch.Refresh(s.ctx, 21).RevealCount)
}

func (s *OrchestratorTestSuite) TestNetworkFailureKeepsPreviousItems() {
	s.loginWithLikes(5)
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Return(testutils.IDs(3, 4), nil).Once()
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Return(nil, stderrors.New("connection reset")).Once()

	s.orch.Refresh(s.ctx, 21)
	state := s.orch.Refresh(s.ctx, 21)

	s.True(state.Eligible)
	s.Equal(testutils.IDs(3, 4), state.Items.IDs())
}

func (s *OrchestratorTestSuite) TestFailedFetchAtThresholdIsStillEligible() {
	s.loginWithLikes(5)
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Return(nil, stderrors.New("connection reset")).Once()

	state := s.orch.Refresh(s.ctx, 21)

	s.True(state.Eligible)
	s.Empty(state.Message)
	s.Empty(state.Items.IDs())
	s.Equal(DefaultOptions().InitialReveal, state.RevealCount)
	s.Equal(state, s.orch.Current())
}

func (s *OrchestratorTestSuite) TestZeroOptionsUseDefaultThreshold() {
	orch := NewOrchestrator(s.sessions, s.remote, testutils.NewRecipeFactory(5).Index(40), s.metrics, zaptest.NewLogger(s.T()), Options{})
	s.loginWithLikes(4)

	state := orch.Refresh(s.ctx, 21)

	s.False(state.Eligible)
	s.Equal(DefaultOptions().GatedMessage(), state.Message)
	s.remote.AssertNotCalled(s.T(), "Recommend", mock.Anything, mock.Anything)
}

func (s *OrchestratorTestSuite) TestSupersededResponseIsDiscarded() {
	s.loginWithLikes(5)
	started, release := make(chan struct{}), make(chan struct{})
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(testutils.IDs(1), nil).Once()
	s.remote.On("Recommend", mock.Anything, user.ID(21)).Return(testutils.IDs(2), nil).Once()

	var published []inbound.RecommendationState
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.orch.Refresh(s.ctx, 21)
	}()
	<-started

	s.orch.Refresh(s.ctx, 21)
	unsubscribe := s.orch.Subscribe(func(state inbound.RecommendationState) {
		published = append(published, state)
	})
	close(release)
	<-done
	unsubscribe()

	s.Empty(published)
	s.Equal(testutils.IDs(2), s.orch.Current().Items.IDs())
	s.Equal(1, s.metrics.Count(s.metrics.Stale, "recommendation"))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func TestRecommendationState_Visible(t *testing.T) {
	state := inbound.RecommendationState{}
	assert.NotNil(t, state.Visible())
	assert.Empty(t, state.Visible())
}
