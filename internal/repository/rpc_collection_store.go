package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// RPCCollectionStoreConfig configures the spreadsheet web-app endpoint.
type RPCCollectionStoreConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RPCCollectionStore reads collections from the spreadsheet request handler. Each collection is
// one GET carrying `action=<collection>`; the reply is `{"success": true, "<collection>": [...]}`
// or `{"success": false, "error": "..."}`.
type RPCCollectionStore struct {
	cfg        RPCCollectionStoreConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRPCCollectionStore constructs the store. A nil client gets a default one bounded by cfg.Timeout.
func NewRPCCollectionStore(cfg RPCCollectionStoreConfig, client *http.Client, logger *zap.Logger) *RPCCollectionStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCCollectionStore{cfg: cfg, httpClient: client, logger: logger}
}

// Fetch performs one read. Transport errors are returned; an explicit `success:false` reply is
// returned as an unsuccessful FetchResult.
func (s *RPCCollectionStore) Fetch(ctx context.Context, collection models.Collection, params models.FetchParams) (*models.FetchResult, error) {
	endpoint, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	query := endpoint.Query()
	query.Set("action", string(collection))
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query.Set(key, params[key])
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", collection, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	s.logger.Debug("fetching collection", zap.String("collection", string(collection)))
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", collection, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: HTTP %d", collection, resp.StatusCode)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", collection, err)
	}
	var success bool
	if raw, ok := envelope["success"]; ok {
		if err := json.Unmarshal(raw, &success); err != nil {
			return nil, fmt.Errorf("decode %s success flag: %w", collection, err)
		}
	}
	if !success {
		var message string
		if raw, ok := envelope["error"]; ok {
			_ = json.Unmarshal(raw, &message)
		}
		return &models.FetchResult{Success: false, Error: message}, nil
	}

	rows, err := decodeRowArray(envelope[string(collection)])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", collection, err)
	}
	return &models.FetchResult{Success: true, Rows: rows}, nil
}
