// internal/common/database/elasticsearch.go
package database

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/metrics"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/observability"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

// ElasticsearchClient wraps the Elasticsearch client. It is built once at
// startup and shared by all requests.
type ElasticsearchClient struct {
	Client *elasticsearch.Client

	requestTimeout time.Duration
	logger         logger.Logger
	obs            *observability.Observability
}

type ElasticsearchOption func(*ElasticsearchClient)

func WithLogger(l logger.Logger) ElasticsearchOption {
	return func(c *ElasticsearchClient) { c.logger = l }
}

func WithObservability(o *observability.Observability) ElasticsearchOption {
	return func(c *ElasticsearchClient) { c.obs = o }
}

// NewElasticsearch creates a new Elasticsearch client
func NewElasticsearch(cfg config.ElasticsearchConfig, opts ...ElasticsearchOption) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{
		Addresses: addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	if cfg.InsecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed clusters
		esCfg.Transport = transport
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	c := &ElasticsearchClient{
		Client:         es,
		requestTimeout: config.GetDuration(cfg.RequestTimeout),
		logger:         logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ping tests the Elasticsearch connection
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}

// ClusterInfo is the subset of the root endpoint response we log at startup.
type ClusterInfo struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Info returns cluster information
func (c *ElasticsearchClient) Info(ctx context.Context) (*ClusterInfo, error) {
	res, err := c.Client.Info(
		c.Client.Info.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info error: %s", res.Status())
	}

	var info ClusterInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode elasticsearch info: %w", err)
	}
	return &info, nil
}

type searchResponse struct {
	Took     int64 `json:"took"`
	TimedOut bool  `json:"timed_out"`
	Hits     struct {
		Total struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		Hits []search.Hit `json:"hits"`
	} `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// Search implements search.Searcher.
func (c *ElasticsearchClient) Search(ctx context.Context, index string, body dsl.Body) (*search.Response, error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("encode search body: %w", err))
	}

	start := time.Now()
	resp, err := c.do(ctx, index, payload)
	elapsed := time.Since(start)

	outcome := "success"
	hits := 0
	if err != nil {
		outcome = string(errors.CodeOf(err))
	} else {
		hits = len(resp.Hits)
	}
	metrics.SearchRequestsTotal.WithLabelValues(index, outcome).Inc()
	metrics.SearchDuration.WithLabelValues(index).Observe(elapsed.Seconds())
	c.obs.RecordSearch(ctx, index, outcome, elapsed, hits)

	if err != nil {
		c.logger.Warn("Search request failed", map[string]interface{}{
			"index":   index,
			"error":   err,
			"elapsed": elapsed.String(),
		})
		return nil, err
	}

	c.logger.Debug("Search request completed", map[string]interface{}{
		"index":   index,
		"total":   resp.Total,
		"hits":    hits,
		"elapsed": elapsed.String(),
	})
	return resp, nil
}

func (c *ElasticsearchClient) do(ctx context.Context, index string, payload []byte) (*search.Response, error) {
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(payload),
	}

	res, err := req.Do(ctx, c.Client)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewUpstreamTimeoutError(err)
		}
		return nil, errors.NewUpstreamError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		var er errorResponse
		detail := res.Status()
		if json.Unmarshal(raw, &er) == nil && er.Error.Reason != "" {
			detail = fmt.Sprintf("%s: %s: %s", res.Status(), er.Error.Type, er.Error.Reason)
		}
		return nil, errors.NewUpstreamError(fmt.Errorf("search %s failed: %s", index, detail)).
			WithMetadata("status", res.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, errors.NewUpstreamError(fmt.Errorf("decode search response: %w", err))
	}
	if sr.TimedOut {
		return nil, errors.NewUpstreamTimeoutError(fmt.Errorf("search %s timed out after %dms", index, sr.Took))
	}

	hits := sr.Hits.Hits
	if hits == nil {
		hits = []search.Hit{}
	}
	return &search.Response{
		Total:        sr.Hits.Total.Value,
		Hits:         hits,
		Aggregations: sr.Aggregations,
	}, nil
}
