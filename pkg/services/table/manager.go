// Package table seats players at their own blackjack round and settles
// finished rounds against the wallet and the round history.
package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/internal/types"
	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/repositories/game"
	"github.com/fadedpez/blackjacktable/pkg/services/blackjack"
	"github.com/fadedpez/blackjacktable/pkg/services/wallet"
)

// DefaultIdleTimeout is how long a seat may sit untouched before EvictIdle removes it
const DefaultIdleTimeout = 30 * time.Minute

// Manager owns one seat per player. Actions on a seat run one at a time;
// different players never block each other.
type Manager struct {
	mu    sync.RWMutex
	seats map[string]*seat

	wallets     wallet.WalletService
	history     game.Repository
	clock       quartz.Clock
	logger      *logging.Logger
	defaultBet  int64
	idleTimeout time.Duration
	newSource   func() entities.RandomSource
}

// seat is a player's round plus the bookkeeping needed to settle it once
type seat struct {
	mu         sync.Mutex
	playerID   string
	round      *blackjack.Round
	lastActive time.Time
	evicted    bool
	pending    *settlement
}

// settlement tracks a finished round until both stores have it
type settlement struct {
	result     *entities.RoundResult
	walletDone bool
}

// Option configures a Manager
type Option func(*Manager)

func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaultBet sets the bet used when a round is started without one
func WithDefaultBet(bet int64) Option {
	return func(m *Manager) {
		m.defaultBet = bet
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// WithRandomSource sets the factory that gives each new seat its shuffle source
func WithRandomSource(fn func() entities.RandomSource) Option {
	return func(m *Manager) {
		m.newSource = fn
	}
}

// NewManager creates a table manager settling rounds into wallets and history
func NewManager(wallets wallet.WalletService, history game.Repository, opts ...Option) *Manager {
	m := &Manager{
		seats:       make(map[string]*seat),
		wallets:     wallets,
		history:     history,
		clock:       quartz.NewReal(),
		logger:      logging.Default,
		defaultBet:  blackjack.DefaultBet,
		idleTimeout: DefaultIdleTimeout,
		newSource:   entities.NewRandomSource,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a new round for the player
func (m *Manager) Start(ctx context.Context, playerID string, bet *int64) (*blackjack.Snapshot, error) {
	return m.Act(ctx, playerID, blackjack.ActionStart, bet)
}

// Hit deals the player another card
func (m *Manager) Hit(ctx context.Context, playerID string) (*blackjack.Snapshot, error) {
	return m.Act(ctx, playerID, blackjack.ActionHit, nil)
}

// Stand ends the player's turn and resolves the round
func (m *Manager) Stand(ctx context.Context, playerID string) (*blackjack.Snapshot, error) {
	return m.Act(ctx, playerID, blackjack.ActionStand, nil)
}

// Act performs an action on the player's seat. A round that finishes is
// settled exactly once: the wallet gets the delta and the history gets the
// result. If either store fails the settlement is retried before the
// seat's next action.
func (m *Manager) Act(ctx context.Context, playerID string, action blackjack.Action, bet *int64) (*blackjack.Snapshot, error) {
	s, err := m.lockSeat(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	s.lastActive = m.clock.Now()

	if err := m.flush(ctx, s); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError,
			fmt.Sprintf("previous round %s is still waiting to be settled", s.pending.result.RoundID), err)
	}

	if action == blackjack.ActionStart && s.round.Phase() != blackjack.PhaseInProgress {
		w, _, err := m.wallets.GetOrCreateWallet(ctx, playerID)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, "failed to load wallet", err)
		}
		if err := s.round.SetBalance(w.Balance); err != nil {
			return nil, err
		}
	}

	snap, err := s.round.Perform(action, bet)
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"player": playerID,
			"action": action,
			"code":   types.CodeOf(err),
		}).Debug("action rejected")
		return nil, err
	}

	if s.round.IsFinished() {
		s.pending = &settlement{result: m.roundResult(s)}
		if err := m.flush(ctx, s); err != nil {
			return nil, types.WrapError(types.ErrDatabaseError,
				fmt.Sprintf("round %s finished but could not be settled yet, it will be retried on the next action", s.round.ID()), err)
		}
	}

	return snap, nil
}

// State returns the player's current snapshot without changing anything.
// A player without a seat sees an empty table with their wallet balance.
func (m *Manager) State(ctx context.Context, playerID string) (*blackjack.Snapshot, error) {
	m.mu.RLock()
	s, ok := m.seats[playerID]
	m.mu.RUnlock()

	if ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.evicted {
			return s.round.Snapshot(), nil
		}
	}

	w, _, err := m.wallets.GetOrCreateWallet(ctx, playerID)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load wallet", err)
	}
	return m.newRound(w.Balance).Snapshot(), nil
}

// EvictIdle drops seats that have been idle longer than the idle timeout
// and returns how many were removed. Busy seats and seats with an unsettled
// round are kept. An unfinished round is abandoned; its bet was never taken.
func (m *Manager) EvictIdle(ctx context.Context) int {
	cutoff := m.clock.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for playerID, s := range m.seats {
		if !s.mu.TryLock() {
			continue
		}
		if s.pending == nil && !s.lastActive.After(cutoff) {
			if s.round.Phase() == blackjack.PhaseInProgress {
				m.logger.Info("Abandoning idle round %s for player %s", s.round.ID(), playerID)
			}
			s.evicted = true
			delete(m.seats, playerID)
			evicted++
		}
		s.mu.Unlock()
	}

	if evicted > 0 {
		m.logger.Debug("Evicted %d idle seats, %d remain", evicted, len(m.seats))
	}
	return evicted
}

// Seats returns the number of occupied seats
func (m *Manager) Seats() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seats)
}

// lockSeat returns the player's seat with its mutex held, creating the seat
// from the player's wallet on first use
func (m *Manager) lockSeat(ctx context.Context, playerID string) (*seat, error) {
	for {
		m.mu.RLock()
		s, ok := m.seats[playerID]
		m.mu.RUnlock()

		if !ok {
			w, _, err := m.wallets.GetOrCreateWallet(ctx, playerID)
			if err != nil {
				return nil, types.WrapError(types.ErrDatabaseError, "failed to load wallet", err)
			}

			m.mu.Lock()
			if s, ok = m.seats[playerID]; !ok {
				s = &seat{
					playerID:   playerID,
					round:      m.newRound(w.Balance),
					lastActive: m.clock.Now(),
				}
				m.seats[playerID] = s
			}
			m.mu.Unlock()
		}

		s.mu.Lock()
		if !s.evicted {
			return s, nil
		}
		// Lost a race with EvictIdle; look the seat up again.
		s.mu.Unlock()
	}
}

func (m *Manager) newRound(balance int64) *blackjack.Round {
	return blackjack.NewRound(balance,
		blackjack.WithDefaultBet(m.defaultBet),
		blackjack.WithRandomSource(m.newSource()),
	)
}

func (m *Manager) roundResult(s *seat) *entities.RoundResult {
	outcome := s.round.Outcome()
	return &entities.RoundResult{
		RoundID:      s.round.ID(),
		PlayerID:     s.playerID,
		GameType:     entities.GameTypeBlackjack,
		Bet:          s.round.Bet(),
		Result:       outcome.Result,
		Message:      outcome.Message,
		PlayerScore:  outcome.PlayerScore,
		DealerScore:  outcome.DealerScore,
		PlayerCards:  s.round.PlayerCards(),
		DealerCards:  s.round.DealerCards(),
		Delta:        outcome.Delta,
		BalanceAfter: s.round.Balance(),
		Natural:      outcome.Natural,
		PlayerBusted: outcome.PlayerBusted,
		DealerBusted: outcome.DealerBusted,
		CompletedAt:  m.clock.Now(),
	}
}

// flush pushes a pending settlement to the wallet and then the history.
// The caller holds the seat lock.
func (m *Manager) flush(ctx context.Context, s *seat) error {
	p := s.pending
	if p == nil {
		return nil
	}
	result := p.result

	if !p.walletDone {
		w, err := m.wallets.Settle(ctx, s.playerID, result.Delta, result.RoundID)
		if err != nil {
			m.logger.Error("Failed to settle round %s for player %s: %v", result.RoundID, s.playerID, err)
			return fmt.Errorf("settle wallet: %w", err)
		}
		p.walletDone = true
		result.BalanceAfter = w.Balance
	}

	// A duplicate means an earlier attempt reached the store after all.
	if err := m.history.SaveRoundResult(ctx, result); err != nil && !errors.Is(err, game.ErrDuplicateRound) {
		m.logger.Error("Failed to record round %s for player %s: %v", result.RoundID, s.playerID, err)
		return fmt.Errorf("record round: %w", err)
	}

	s.pending = nil
	m.logger.WithFields(logrus.Fields{
		"player":  s.playerID,
		"round":   result.RoundID,
		"result":  result.Result,
		"delta":   result.Delta,
		"balance": result.BalanceAfter,
	}).Info("round settled")
	return nil
}
