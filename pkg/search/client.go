package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/apperrors"
)

// Client wraps the OpenSearch client with the handful of operations the
// indexer and query router need.
type Client struct {
	os            *opensearch.Client
	healthTimeout time.Duration
	logger        *zap.Logger
}

// Config holds the search store connection settings.
type Config struct {
	URL           string
	HealthTimeout time.Duration
}

// NewClient creates an OpenSearch client. It does not contact the cluster;
// availability is probed per-operation so an unreachable search store never
// blocks startup or ingestion.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	healthTimeout := cfg.HealthTimeout
	if healthTimeout == 0 {
		healthTimeout = 500 * time.Millisecond
	}

	return &Client{
		os:            osClient,
		healthTimeout: healthTimeout,
		logger:        logger.Named("search"),
	}, nil
}

// Ping probes cluster availability within the configured health timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	res, err := opensearchapi.PingRequest{}.Do(ctx, c.os)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSearchUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", apperrors.ErrSearchUnavailable, res.Status())
	}
	return nil
}

// Info returns the cluster version string, for health reporting.
func (c *Client) Info(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	res, err := opensearchapi.InfoRequest{}.Do(ctx, c.os)
	if err != nil {
		return "", fmt.Errorf("search store unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("search store unhealthy: %s", res.Status())
	}

	var info struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode cluster info: %w", err)
	}
	return info.Version.Number, nil
}

// EnsureIndices creates the companies and persons indices with their mappings
// if they do not exist yet.
func (c *Client) EnsureIndices(ctx context.Context) error {
	for index, mapping := range map[string]string{
		CompanyIndex: companyMapping,
		PersonIndex:  personMapping,
	} {
		exists, err := c.indexExists(ctx, index)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		res, err := opensearchapi.IndicesCreateRequest{
			Index: index,
			Body:  strings.NewReader(mapping),
		}.Do(ctx, c.os)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", index, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("failed to create index %s: %s", index, res.Status())
		}
		c.logger.Info("created search index", zap.String("index", index))
	}
	return nil
}

func (c *Client) indexExists(ctx context.Context, index string) (bool, error) {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.os)
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", index, err)
	}
	defer res.Body.Close()
	return res.StatusCode == 200, nil
}

// BulkDoc is one document destined for a bulk upsert.
type BulkDoc struct {
	ID     string
	Source any
}

// Bulk upserts documents into the index in one request. Re-indexing the same
// id overwrites the prior document, which is what makes rebuilds idempotent.
func (c *Client) Bulk(ctx context.Context, index string, docs []BulkDoc) error {
	if len(docs) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		meta := map[string]map[string]string{"index": {"_index": index, "_id": doc.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(doc.Source); err != nil {
			return fmt.Errorf("failed to encode bulk document: %w", err)
		}
	}

	res, err := opensearchapi.BulkRequest{Body: &body}.Do(ctx, c.os)
	if err != nil {
		return fmt.Errorf("bulk indexing request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk indexing failed: %s", res.Status())
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if result.Errors {
		return fmt.Errorf("bulk indexing reported item errors for index %s", index)
	}
	return nil
}

// Refresh makes freshly indexed documents immediately queryable.
func (c *Client) Refresh(ctx context.Context, indices ...string) error {
	res, err := opensearchapi.IndicesRefreshRequest{Index: indices}.Do(ctx, c.os)
	if err != nil {
		return fmt.Errorf("index refresh failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index refresh failed: %s", res.Status())
	}
	return nil
}

// search executes a query body against an index and returns hit ids in
// relevance order plus the total hit count.
func (c *Client) search(ctx context.Context, index string, body map[string]any) ([]string, int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("failed to encode search body: %w", err)
	}

	res, err := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  &buf,
	}.Do(ctx, c.os)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, 0, fmt.Errorf("search failed: %s: %s", res.Status(), msg)
	}

	var result struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, result.Hits.Total.Value, nil
}
