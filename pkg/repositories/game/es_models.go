package game

import (
	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// roundIndexMapping is the mapping of the rounds index. Documents are
// entities.RoundResult encoded with its JSON tags.
const roundIndexMapping = `{
	"mappings": {
		"properties": {
			"round_id": { "type": "keyword" },
			"player_id": { "type": "keyword" },
			"game_type": { "type": "keyword" },
			"bet": { "type": "long" },
			"result": { "type": "keyword" },
			"message": { "type": "text" },
			"player_score": { "type": "integer" },
			"dealer_score": { "type": "integer" },
			"player_cards": {
				"properties": {
					"rank": { "type": "keyword" },
					"suit": { "type": "keyword" }
				}
			},
			"dealer_cards": {
				"properties": {
					"rank": { "type": "keyword" },
					"suit": { "type": "keyword" }
				}
			},
			"delta": { "type": "long" },
			"balance_after": { "type": "long" },
			"natural": { "type": "boolean" },
			"player_busted": { "type": "boolean" },
			"dealer_busted": { "type": "boolean" },
			"completed_at": { "type": "date" }
		}
	}
}`

// esSearchResponse is the part of a search response the repository reads
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string               `json:"_id"`
			Source entities.RoundResult `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
