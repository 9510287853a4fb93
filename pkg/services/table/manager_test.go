package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/internal/types"
	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/entities/decktest"
	"github.com/fadedpez/blackjacktable/pkg/repositories/game"
	mock_game "github.com/fadedpez/blackjacktable/pkg/repositories/game/mock"
	walletRepo "github.com/fadedpez/blackjacktable/pkg/repositories/wallet"
	"github.com/fadedpez/blackjacktable/pkg/services/blackjack"
	"github.com/fadedpez/blackjacktable/pkg/services/wallet"
	mock_wallet_service "github.com/fadedpez/blackjacktable/pkg/services/wallet/mock"
)

var c = decktest.C

// playerWinsOnStand deals player 10,9 against dealer 6,5; the dealer draws a 6
var playerWinsOnStand = []entities.Card{
	c(entities.Ten, entities.Spades), c(entities.Six, entities.Clubs),
	c(entities.Nine, entities.Hearts), c(entities.Five, entities.Diamonds),
	c(entities.Six, entities.Hearts),
}

func bet(v int64) *int64 {
	return &v
}

type ManagerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	wallets *mock_wallet_service.MockWalletService
	history *mock_game.MockRepository
	clock   *quartz.Mock
	manager *Manager
	ctx     context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.wallets = mock_wallet_service.NewMockWalletService(s.ctrl)
	s.history = mock_game.NewMockRepository(s.ctrl)
	s.clock = quartz.NewMock(s.T())
	s.manager = NewManager(s.wallets, s.history,
		WithClock(s.clock),
		WithLogger(logging.NewLoggerWithOutput(logging.ERROR, io.Discard)),
		WithIdleTimeout(30*time.Minute),
		WithRandomSource(func() entities.RandomSource {
			return decktest.NewStacked(playerWinsOnStand...)
		}),
	)
}

func (s *ManagerTestSuite) expectWallet(player string, balance int64) {
	s.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), player).
		Return(&entities.Wallet{UserID: player, Balance: balance}, false, nil).AnyTimes()
}

func (s *ManagerTestSuite) TestStandSettlesOnce() {
	s.expectWallet("alice", 1000)
	s.wallets.EXPECT().Settle(gomock.Any(), "alice", int64(10), gomock.Any()).
		Return(&entities.Wallet{UserID: "alice", Balance: 1010}, nil).Times(1)

	var saved *entities.RoundResult
	s.history.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *entities.RoundResult) error {
			saved = r
			return nil
		}).Times(1)

	snap, err := s.manager.Start(s.ctx, "alice", bet(10))
	s.Require().NoError(err)
	s.False(snap.RoundOver)
	roundID := snap.RoundID

	snap, err = s.manager.Stand(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(snap.RoundOver)
	s.Equal(int64(1010), snap.Balance)

	s.Require().NotNil(saved)
	s.Equal(roundID, saved.RoundID)
	s.Equal("alice", saved.PlayerID)
	s.Equal(entities.ResultWin, saved.Result)
	s.Equal(int64(10), saved.Delta)
	s.Equal(int64(1010), saved.BalanceAfter)
	s.Equal(19, saved.PlayerScore)
	s.Equal(17, saved.DealerScore)
	s.Len(saved.DealerCards, 3)
	s.Equal(s.clock.Now(), saved.CompletedAt)

	_, err = s.manager.Stand(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrInvalidPhase))
	_, err = s.manager.Hit(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrInvalidPhase))
}

func (s *ManagerTestSuite) TestRejectedActionsDoNotSettle() {
	s.expectWallet("alice", 100)

	_, err := s.manager.Start(s.ctx, "alice", bet(0))
	s.True(types.IsGameError(err, types.ErrInvalidBet))

	_, err = s.manager.Start(s.ctx, "alice", bet(101))
	s.True(types.IsGameError(err, types.ErrInvalidBet))

	_, err = s.manager.Act(s.ctx, "alice", "split", nil)
	s.True(types.IsGameError(err, types.ErrInvalidAction))

	_, err = s.manager.Hit(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrInvalidPhase))
}

func (s *ManagerTestSuite) TestStartUsesCurrentWalletBalance() {
	first := s.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), "alice").
		Return(&entities.Wallet{UserID: "alice", Balance: 1000}, false, nil).Times(1)
	s.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), "alice").
		Return(&entities.Wallet{UserID: "alice", Balance: 5}, false, nil).After(first)

	_, err := s.manager.Start(s.ctx, "alice", bet(10))

	s.True(types.IsGameError(err, types.ErrInvalidBet), "bet must be checked against the stored balance")
}

func (s *ManagerTestSuite) TestWalletFailureIsRetriedBeforeNextAction() {
	s.expectWallet("alice", 1000)
	gomock.InOrder(
		s.wallets.EXPECT().Settle(gomock.Any(), "alice", int64(10), gomock.Any()).
			Return(nil, errors.New("database is locked")),
		s.wallets.EXPECT().Settle(gomock.Any(), "alice", int64(10), gomock.Any()).
			Return(&entities.Wallet{UserID: "alice", Balance: 1010}, nil),
	)
	s.history.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := s.manager.Start(s.ctx, "alice", bet(10))
	s.Require().NoError(err)

	_, err = s.manager.Stand(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrDatabaseError))
	s.ErrorContains(err, "finished but could not be settled yet")
	s.ErrorContains(err, "database is locked")

	snap, err := s.manager.State(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(snap.RoundOver, "the round itself is over")

	_, err = s.manager.Hit(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrInvalidPhase), "pending settlement is flushed, then the hit is rejected")
}

func (s *ManagerTestSuite) TestHistoryFailureDoesNotSettleWalletTwice() {
	s.expectWallet("alice", 1000)
	s.wallets.EXPECT().Settle(gomock.Any(), "alice", int64(10), gomock.Any()).
		Return(&entities.Wallet{UserID: "alice", Balance: 1010}, nil).Times(1)
	gomock.InOrder(
		s.history.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(errors.New("disk full")),
		s.history.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(game.ErrDuplicateRound),
	)

	_, err := s.manager.Start(s.ctx, "alice", bet(10))
	s.Require().NoError(err)
	_, err = s.manager.Stand(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrDatabaseError))

	_, err = s.manager.Stand(s.ctx, "alice")
	s.True(types.IsGameError(err, types.ErrInvalidPhase))
}

func (s *ManagerTestSuite) TestStateWithoutSeat() {
	s.expectWallet("bob", 250)

	snap, err := s.manager.State(s.ctx, "bob")

	s.Require().NoError(err)
	s.Equal(blackjack.PhaseAwaitingBet, snap.Phase)
	s.Equal(int64(250), snap.Balance)
	s.Equal(0, s.manager.Seats(), "reading state must not seat the player")
}

func (s *ManagerTestSuite) TestWalletLoadFailure() {
	s.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), "alice").Return(nil, false, errors.New("offline"))

	_, err := s.manager.Start(s.ctx, "alice", nil)

	s.True(types.IsGameError(err, types.ErrDatabaseError))
	s.Equal(0, s.manager.Seats())
}

func (s *ManagerTestSuite) TestEvictIdle() {
	s.expectWallet("alice", 1000)
	s.expectWallet("bob", 1000)

	_, err := s.manager.Start(s.ctx, "alice", nil)
	s.Require().NoError(err)

	s.clock.Advance(20 * time.Minute).MustWait(s.ctx)
	_, err = s.manager.Start(s.ctx, "bob", nil)
	s.Require().NoError(err)

	s.clock.Advance(11 * time.Minute).MustWait(s.ctx)
	s.Equal(1, s.manager.EvictIdle(s.ctx))
	s.Equal(1, s.manager.Seats())

	snap, err := s.manager.State(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(blackjack.PhaseAwaitingBet, snap.Phase, "alice's abandoned round is gone")

	snap, err = s.manager.State(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(blackjack.PhaseInProgress, snap.Phase)

	s.clock.Advance(time.Hour).MustWait(s.ctx)
	s.Equal(1, s.manager.EvictIdle(s.ctx))
	s.Equal(0, s.manager.Seats())
}

func (s *ManagerTestSuite) TestEvictIdleKeepsUnsettledSeats() {
	s.expectWallet("alice", 1000)
	s.wallets.EXPECT().Settle(gomock.Any(), "alice", int64(10), gomock.Any()).
		Return(nil, errors.New("database is locked"))

	_, err := s.manager.Start(s.ctx, "alice", bet(10))
	s.Require().NoError(err)
	_, err = s.manager.Stand(s.ctx, "alice")
	s.Require().Error(err)

	s.clock.Advance(2 * time.Hour).MustWait(s.ctx)

	s.Equal(0, s.manager.EvictIdle(s.ctx))
	s.Equal(1, s.manager.Seats())
}

// TestConcurrentPlayersSettleExactlyOnce plays many rounds against real
// in-memory stores and checks the wallets against the recorded history.
func TestConcurrentPlayersSettleExactlyOnce(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewLoggerWithOutput(logging.ERROR, io.Discard)
	history := game.NewMemoryRepository()
	wallets := wallet.NewService(walletRepo.NewMemoryRepository(), wallet.WithLogger(logger))
	manager := NewManager(wallets, history, WithLogger(logger))

	var wg sync.WaitGroup
	players := 8
	for p := 0; p < players; p++ {
		player := fmt.Sprintf("player-%d", p)
		// Two clients per player race each other on the same seat.
		for client := 0; client < 2; client++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					manager.Start(ctx, player, bet(5))
					manager.Hit(ctx, player)
					manager.Stand(ctx, player)
				}
			}()
		}
	}
	wg.Wait()

	for p := 0; p < players; p++ {
		player := fmt.Sprintf("player-%d", p)

		results, err := history.GetPlayerResults(ctx, player, 1000)
		if err != nil {
			t.Fatal(err)
		}
		var sum int64
		seen := make(map[string]bool)
		for _, r := range results {
			if seen[r.RoundID] {
				t.Fatalf("round %s recorded twice", r.RoundID)
			}
			seen[r.RoundID] = true
			sum += r.Delta
		}

		w, _, err := wallets.GetOrCreateWallet(ctx, player)
		if err != nil {
			t.Fatal(err)
		}
		if w.Balance != wallet.DefaultStartingBalance+sum {
			t.Fatalf("%s: wallet %d, history says %d", player, w.Balance, wallet.DefaultStartingBalance+sum)
		}

		txs, err := wallets.GetRecentTransactions(ctx, player, 1000)
		if err != nil {
			t.Fatal(err)
		}
		if len(txs) != len(results) {
			t.Fatalf("%s: %d wallet transactions for %d rounds", player, len(txs), len(results))
		}
	}
}
