package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	gmux "github.com/gorilla/mux"

	"github.com/fadedpez/blackjacktable/internal/types"
	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/services/blackjack"
	"github.com/fadedpez/blackjacktable/pkg/services/statistics"
)

const defaultTransactions = 10

type actionRequest struct {
	Bet json.RawMessage `json:"bet"`
}

// bet returns the requested bet, or nil when none was sent. Anything other
// than a whole number is an invalid bet.
func (a actionRequest) bet() (*int64, error) {
	if len(a.Bet) == 0 || string(a.Bet) == "null" {
		return nil, nil
	}

	var bet int64
	if err := json.Unmarshal(a.Bet, &bet); err != nil {
		return nil, types.NewGameError(types.ErrInvalidBet, "bet must be a whole number of chips")
	}
	return &bet, nil
}

// postAction runs start, hit or stand on the caller's seat
func (m *Mux) postAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if !m.decodeOptionalRequest(w, r, &req) {
			return
		}

		action := blackjack.Action(gmux.Vars(r)["action"])

		var bet *int64
		if action == blackjack.ActionStart {
			var err error
			if bet, err = req.bet(); err != nil {
				m.writeGameError(w, err)
				return
			}
		}

		snap, err := m.tables.Act(r.Context(), playerID(r), action, bet)
		if err != nil {
			m.writeGameError(w, err)
			return
		}

		m.writeJSON(w, http.StatusOK, snap)
	}
}

func (m *Mux) getState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := m.tables.State(r.Context(), playerID(r))
		if err != nil {
			m.writeGameError(w, err)
			return
		}

		m.writeJSON(w, http.StatusOK, snap)
	}
}

func (m *Mux) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recent, err := parseRows(r, "recent", statistics.DefaultRecentRounds)
		if err != nil {
			m.writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		summary, err := m.stats.GetPlayerSummary(r.Context(), playerID(r), recent)
		if err != nil {
			m.writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		m.writeJSON(w, http.StatusOK, summary)
	}
}

type walletResponse struct {
	PlayerID     string                  `json:"playerId"`
	Balance      int64                   `json:"balance"`
	Transactions []*entities.Transaction `json:"transactions"`
}

func (m *Mux) getWallet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := parseRows(r, "rows", defaultTransactions)
		if err != nil {
			m.writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		var txType entities.TransactionType
		if name := r.FormValue("type"); name != "" {
			var ok bool
			if txType, ok = entities.ParseTransactionType(name); !ok {
				m.writeJSONError(w, http.StatusBadRequest, fmt.Errorf("unknown transaction type %q", name))
				return
			}
		}

		player := playerID(r)
		wallet, _, err := m.wallets.GetOrCreateWallet(r.Context(), player)
		if err != nil {
			m.writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		var txs []*entities.Transaction
		if txType != "" {
			txs, err = m.wallets.GetRecentTransactionsByType(r.Context(), player, txType, rows)
		} else {
			txs, err = m.wallets.GetRecentTransactions(r.Context(), player, rows)
		}
		if err != nil {
			m.writeJSONError(w, http.StatusInternalServerError, err)
			return
		}
		if txs == nil {
			txs = []*entities.Transaction{}
		}

		m.writeJSON(w, http.StatusOK, walletResponse{
			PlayerID:     player,
			Balance:      wallet.Balance,
			Transactions: txs,
		})
	}
}
