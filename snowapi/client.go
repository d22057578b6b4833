// Package snowapi is a client for the Snowflake SQL API (v2): a
// keypair-JWT authenticator, a pooled/retrying request executor, and a
// partition-fetch engine that materializes result sets via streaming,
// single-threaded, or threaded strategies.
package snowapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/lakebound/snowapi/internal/auth"
)

// Client is the Snowflake SQL API facade: it binds the authenticator,
// connection pool, and retrying executor to one configuration and
// exposes Query as its single entry point.
type Client struct {
	config   Config
	executor *executor
}

// NewClient validates cfg, applies its defaults, and constructs a
// Client. The connection pool and token cache are held ready but do no
// I/O until the first Query.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	kp, err := auth.ParseKeyPair(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, newConfigError(fmt.Sprintf("parsing private key: %v", err), nil)
	}

	tokens := auth.NewCache(kp, auth.TokenClaims{
		Organization: cfg.Organization,
		Account:      cfg.Account,
		User:         cfg.User,
		TTL:          cfg.JWTTTL,
	})

	pool := newConnPool(cfg.MaxConnections, cfg.ConnectionTimeout)
	ex := newExecutor(cfg.BaseURI, pool, tokens, cfg.HTTPRetries, cfg.Logger)

	return &Client{config: cfg, executor: ex}, nil
}

// queryOptions holds the optional parameters to Query.
type queryOptions struct {
	warehouse string
	streaming bool
}

// QueryOption customizes a single Query call.
type QueryOption func(*queryOptions)

// WithWarehouse overrides the client's default warehouse for one query.
func WithWarehouse(warehouse string) QueryOption {
	return func(o *queryOptions) { o.warehouse = warehouse }
}

// WithStreaming selects the streaming materialization strategy: rows
// beyond partition 0 are fetched lazily as the Result is iterated.
func WithStreaming(streaming bool) QueryOption {
	return func(o *queryOptions) { o.streaming = streaming }
}

// Query submits sql to the Service and returns its decoded Result. The
// materialization strategy is streaming (if requested), single-thread
// in-memory (if the computed worker count is 1), or threaded in-memory
// otherwise.
func (c *Client) Query(ctx context.Context, sql string, opts ...QueryOption) (*Result, error) {
	options := queryOptions{warehouse: c.config.DefaultWarehouse}
	for _, opt := range opts {
		opt(&options)
	}

	reqBody, err := json.Marshal(statementRequest{Statement: sql, Warehouse: options.warehouse})
	if err != nil {
		return nil, newRequestError("failed to marshal statement request", map[string]any{"cause": err.Error()})
	}

	path := "/api/v2/statements?requestId=" + uuid.NewString()
	respBody, err := c.executor.request(ctx, "POST", path, reqBody)
	if err != nil {
		return nil, err
	}

	var submission submissionResponse
	if err := json.Unmarshal(respBody, &submission); err != nil {
		return nil, fmt.Errorf("snowapi: decoding submission response: %w", err)
	}

	if submission.ResultSetMetaData == nil {
		// Statements without a result set (e.g. DDL) yield an empty
		// Result.
		return newEmptyResult(), nil
	}

	rowTypes := submission.ResultSetMetaData.RowType
	partitionInfo := submission.ResultSetMetaData.PartitionInfo
	partitionCount := len(partitionInfo)
	if partitionCount == 0 {
		partitionCount = 1
	}

	fetch := func(ctx context.Context, idx int) ([][]*string, error) {
		return c.fetchPartition(ctx, submission.StatementHandle, idx)
	}

	if options.streaming {
		return newStreamingResult(ctx, rowTypes, partitionInfo, partitionCount, submission.Data, fetch), nil
	}

	workers := computeWorkers(partitionCount, c.config.ThreadScaleFactor, c.config.MaxThreadsPerQuery)

	var rest [][][]*string
	if workers == 1 {
		rest, err = fetchRemainingSequential(ctx, partitionCount, fetch)
	} else {
		rest, err = fetchRemainingThreaded(ctx, partitionCount, workers, fetch)
	}
	if err != nil {
		return nil, err
	}

	parts := make([][][]*string, 0, len(rest)+1)
	parts = append(parts, submission.Data)
	parts = append(parts, rest...)

	return newMaterializedResult(rowTypes, partitionInfo, parts), nil
}

// fetchPartition retrieves one partition's rows via GET
// /api/v2/statements/<handle>?partition=<i>, through the same retrying
// executor and connection pool as the submission.
func (c *Client) fetchPartition(ctx context.Context, handle string, index int) ([][]*string, error) {
	path := fmt.Sprintf("/api/v2/statements/%s?partition=%d&requestId=%s", handle, index, uuid.NewString())
	body, err := c.executor.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var pr partitionResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("snowapi: decoding partition %d response: %w", index, err)
	}
	return pr.Data, nil
}
