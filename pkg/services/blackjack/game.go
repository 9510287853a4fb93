package blackjack

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fadedpez/blackjacktable/internal/types"
	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// Phase is the lifecycle stage of a round
type Phase string

const (
	PhaseAwaitingBet Phase = "AWAITING_BET"
	PhaseInProgress  Phase = "IN_PROGRESS"
	PhaseFinished    Phase = "FINISHED"
)

// Action is a player command accepted by Perform
type Action string

const (
	ActionStart Action = "start"
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
)

// Option configures a Round
type Option func(*Round)

// WithDefaultBet sets the bet used when Start is called without one
func WithDefaultBet(bet int64) Option {
	return func(r *Round) {
		r.defaultBet = bet
	}
}

// WithRandomSource sets the source used to shuffle each round's deck
func WithRandomSource(src entities.RandomSource) Option {
	return func(r *Round) {
		r.src = src
	}
}

// WithIDGenerator overrides how round IDs are generated
func WithIDGenerator(fn func() string) Option {
	return func(r *Round) {
		r.newID = fn
	}
}

// Round is a single player's seat against the dealer. It holds the bankroll
// across rounds and the deck and hands of the current round. A Round is not
// safe for concurrent use.
type Round struct {
	id      string
	phase   Phase
	deck    *entities.Deck
	player  *Hand
	dealer  *Hand
	bet     int64
	balance int64
	outcome *Outcome
	natural bool

	defaultBet int64
	src        entities.RandomSource
	newID      func() string
}

// NewRound creates a round awaiting a bet with the given bankroll
func NewRound(balance int64, opts ...Option) *Round {
	r := &Round{
		phase:      PhaseAwaitingBet,
		deck:       &entities.Deck{},
		player:     NewHand(),
		dealer:     NewHand(),
		balance:    balance,
		defaultBet: DefaultBet,
		newID:      func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.src == nil {
		r.src = entities.NewRandomSource()
	}

	return r
}

// ID returns the identifier of the current or last round
func (r *Round) ID() string {
	return r.id
}

func (r *Round) Phase() Phase {
	return r.phase
}

func (r *Round) Bet() int64 {
	return r.bet
}

// Balance returns the bankroll, already settled for a finished round
func (r *Round) Balance() int64 {
	return r.balance
}

func (r *Round) IsFinished() bool {
	return r.phase == PhaseFinished
}

// SetBalance replaces the bankroll between rounds. It fails while a round is
// in progress because the bet has already been checked against the balance.
func (r *Round) SetBalance(balance int64) error {
	if r.phase == PhaseInProgress {
		return types.NewGameError(types.ErrInvalidPhase, "cannot change balance during a round")
	}
	r.balance = balance
	return nil
}

// Outcome returns the resolution of the round, or nil while no round has finished
func (r *Round) Outcome() *Outcome {
	if r.outcome == nil {
		return nil
	}
	o := *r.outcome
	return &o
}

// PlayerCards returns a copy of the player's hand
func (r *Round) PlayerCards() []entities.Card {
	return r.player.Clone().Cards
}

// DealerCards returns a copy of the dealer's full hand, hole card included
func (r *Round) DealerCards() []entities.Card {
	return r.dealer.Clone().Cards
}

// Perform dispatches an action by name. bet is only read by ActionStart.
func (r *Round) Perform(action Action, bet *int64) (*Snapshot, error) {
	switch action {
	case ActionStart:
		return r.Start(bet)
	case ActionHit:
		return r.Hit()
	case ActionStand:
		return r.Stand()
	default:
		return nil, types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("unknown action %q", action))
	}
}

// Start validates the bet, shuffles a fresh deck and deals two cards each,
// alternating player then dealer. A starting 21 resolves the round at once.
func (r *Round) Start(bet *int64) (*Snapshot, error) {
	if r.phase == PhaseInProgress {
		return nil, types.NewGameError(types.ErrInvalidPhase, "a round is already in progress")
	}

	amount := r.defaultBet
	if bet != nil {
		amount = *bet
	}
	if amount <= 0 {
		return nil, types.NewGameError(types.ErrInvalidBet, "bet must be a positive amount")
	}
	if amount > r.balance {
		return nil, types.NewGameError(types.ErrInvalidBet,
			fmt.Sprintf("bet of %d exceeds balance of %d", amount, r.balance))
	}

	deck := entities.NewDeck()
	deck.Shuffle(r.src)
	player, dealer := NewHand(), NewHand()

	for i := 0; i < 2; i++ {
		for _, hand := range []*Hand{player, dealer} {
			card, err := deck.Draw()
			if err != nil {
				return nil, types.WrapError(types.ErrEmptyDeck, "not enough cards to deal", err)
			}
			hand.AddCard(card)
		}
	}

	var outcome *Outcome
	if player.Value() >= BlackjackScore {
		o, err := playOut(deck, player, dealer, amount)
		if err != nil {
			return nil, err
		}
		outcome = o
	}

	r.id = r.newID()
	r.deck, r.player, r.dealer = deck, player, dealer
	r.bet = amount
	r.outcome = nil
	r.natural = IsNatural(player.Cards)
	r.phase = PhaseInProgress

	if outcome != nil {
		r.finish(outcome)
	}

	return r.Snapshot(), nil
}

// Hit deals one card to the player. Reaching 21 or more resolves the round
// the same way Stand does.
func (r *Round) Hit() (*Snapshot, error) {
	if r.phase != PhaseInProgress {
		return nil, types.NewGameError(types.ErrInvalidPhase, "no round in progress")
	}

	deck, player, dealer := r.deck.Clone(), r.player.Clone(), r.dealer.Clone()

	card, err := deck.Draw()
	if err != nil {
		return nil, types.WrapError(types.ErrEmptyDeck, "no cards left to deal", err)
	}
	player.AddCard(card)

	var outcome *Outcome
	if player.Value() >= BlackjackScore {
		outcome, err = playOut(deck, player, dealer, r.bet)
		if err != nil {
			return nil, err
		}
	}

	r.deck, r.player, r.dealer = deck, player, dealer
	if outcome != nil {
		r.finish(outcome)
	}

	return r.Snapshot(), nil
}

// Stand ends the player's turn, plays the dealer's hand and settles the bet
func (r *Round) Stand() (*Snapshot, error) {
	if r.phase != PhaseInProgress {
		return nil, types.NewGameError(types.ErrInvalidPhase, "no round in progress")
	}

	deck, player, dealer := r.deck.Clone(), r.player.Clone(), r.dealer.Clone()

	outcome, err := playOut(deck, player, dealer, r.bet)
	if err != nil {
		return nil, err
	}

	r.deck, r.player, r.dealer = deck, player, dealer
	r.finish(outcome)

	return r.Snapshot(), nil
}

// finish applies the outcome. It is only reached on the transition out of
// PhaseInProgress, so the balance changes once per round.
func (r *Round) finish(outcome *Outcome) {
	outcome.Natural = r.natural
	r.outcome = outcome
	r.balance += outcome.Delta
	r.phase = PhaseFinished
}

// playOut draws for the dealer until the stand threshold and resolves the
// round. It only mutates the deck and dealer hand it is given.
func playOut(deck *entities.Deck, player, dealer *Hand, bet int64) (*Outcome, error) {
	for DealerShouldHit(dealer.Cards) {
		card, err := deck.Draw()
		if err != nil {
			return nil, types.WrapError(types.ErrEmptyDeck, "no cards left for the dealer", err)
		}
		dealer.AddCard(card)
	}

	o := ResolveOutcome(player.Value(), dealer.Value(), bet)
	return &o, nil
}
