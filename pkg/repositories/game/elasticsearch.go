package game

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	// Transport overrides the HTTP transport, mainly for tests
	Transport http.RoundTripper
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "blackjack",
	}
}

// ElasticsearchRepository decorates a base repository. The base store stays
// the source of truth; every saved round is also indexed for search, and
// history reads are served from the index with the base store as fallback.
type ElasticsearchRepository struct {
	baseRepo Repository
	client   *elasticsearch.Client
	index    string
	logger   *logging.Logger
}

var _ Repository = (*ElasticsearchRepository)(nil)

// NewElasticsearchRepository creates the client and makes sure the rounds index exists
func NewElasticsearchRepository(ctx context.Context, baseRepo Repository, config *ElasticsearchConfig, logger *logging.Logger) (*ElasticsearchRepository, error) {
	if logger == nil {
		logger = logging.Default
	}

	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
		Transport: config.Transport,
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := config.IndexPrefix
	if prefix == "" {
		prefix = DefaultElasticsearchConfig().IndexPrefix
	}

	repo := &ElasticsearchRepository{
		baseRepo: baseRepo,
		client:   client,
		index:    prefix + "_rounds",
		logger:   logger,
	}

	if err := repo.initIndex(ctx); err != nil {
		return nil, fmt.Errorf("error initializing index: %w", err)
	}

	return repo, nil
}

// initIndex creates the rounds index if it doesn't exist
func (r *ElasticsearchRepository) initIndex(ctx context.Context) error {
	res, err := r.client.Indices.Exists([]string{r.index}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: r.index,
		Body:  bytes.NewReader([]byte(roundIndexMapping)),
	}

	res, err = req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	r.logger.Info("Created Elasticsearch index %s", r.index)
	return nil
}

// SaveRoundResult saves to the base repository and then indexes the round.
// Indexing failures are logged; the round is already durable.
func (r *ElasticsearchRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if err := r.baseRepo.SaveRoundResult(ctx, result); err != nil {
		return err
	}

	if err := r.IndexRoundResult(ctx, result); err != nil {
		r.logger.Warn("Error indexing round %s: %v", result.RoundID, err)
	}

	return nil
}

// IndexRoundResult writes a round document keyed by its round ID
func (r *ElasticsearchRepository) IndexRoundResult(ctx context.Context, result *entities.RoundResult) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("error marshaling round result: %w", err)
	}

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(jsonData),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(result.RoundID),
		r.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("error indexing round result: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing round result: %s", res.String())
	}

	return nil
}

// GetPlayerResults searches the index for a player's rounds
func (r *ElasticsearchRepository) GetPlayerResults(ctx context.Context, playerID string, limit int) ([]*entities.RoundResult, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"player_id": playerID},
		},
		"sort": []interface{}{
			map[string]interface{}{"completed_at": map[string]string{"order": "desc"}},
		},
	}

	results, err := r.search(ctx, query, limit)
	if err != nil {
		r.logger.Warn("Falling back to base repository for player %s: %v", playerID, err)
		return r.baseRepo.GetPlayerResults(ctx, playerID, limit)
	}
	return results, nil
}

// GetRecentResults searches the index for the latest rounds
func (r *ElasticsearchRepository) GetRecentResults(ctx context.Context, limit int) ([]*entities.RoundResult, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"completed_at": map[string]string{"order": "desc"}},
		},
	}

	results, err := r.search(ctx, query, limit)
	if err != nil {
		r.logger.Warn("Falling back to base repository for recent rounds: %v", err)
		return r.baseRepo.GetRecentResults(ctx, limit)
	}
	return results, nil
}

func (r *ElasticsearchRepository) search(ctx context.Context, query map[string]interface{}, limit int) ([]*entities.RoundResult, error) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, fmt.Errorf("error encoding query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(&body),
		r.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching rounds: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching rounds: %s", res.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error parsing search response: %w", err)
	}

	results := make([]*entities.RoundResult, 0, len(parsed.Hits.Hits))
	for i := range parsed.Hits.Hits {
		result := parsed.Hits.Hits[i].Source
		results = append(results, &result)
	}
	return results, nil
}

// GetPlayerStatistics is served by the base repository
func (r *ElasticsearchRepository) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	return r.baseRepo.GetPlayerStatistics(ctx, playerID)
}

// Close closes the base repository
func (r *ElasticsearchRepository) Close() error {
	return r.baseRepo.Close()
}

// IndexName returns the name of the rounds index
func (r *ElasticsearchRepository) IndexName() string {
	return r.index
}
