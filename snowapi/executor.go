package snowapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakebound/snowapi/internal/auth"
)

// isRetryableStatus reports the Service's idiosyncratic retryable set: the
// listed 4xx codes plus every 5xx. 403 is included because the Service
// returns it for a token that expired mid-flight, which a retry heals
// by re-minting.
func isRetryableStatus(status int) bool {
	switch status {
	case 400, 403, 405, 408, 429:
		return true
	}
	return status >= 500 && status <= 599
}

// executor composes auth headers onto one request, dispatches it
// through the connection pool, and retries retryable responses up to
// httpRetries+1 total attempts.
type executor struct {
	baseURI     string
	pool        *connPool
	tokens      *auth.Cache
	httpRetries int
	logger      zerolog.Logger
}

func newExecutor(baseURI string, pool *connPool, tokens *auth.Cache, httpRetries int, logger zerolog.Logger) *executor {
	return &executor{
		baseURI:     baseURI,
		pool:        pool,
		tokens:      tokens,
		httpRetries: httpRetries,
		logger:      logger,
	}
}

// request runs method/path (with optional JSON body) to completion,
// retrying retryable responses. It returns the response body of the
// first 200, or a BadResponseError on a terminal status or exhausted
// retries.
func (ex *executor) request(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	maxAttempts := ex.httpRetries + 1
	var lastStatus int
	var lastBody []byte

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token, err := ex.tokens.Current(nil)
		if err != nil {
			return nil, err
		}

		status, respBody, err := ex.doOnce(ctx, method, path, body, token)
		if err != nil {
			return nil, err
		}

		if status == http.StatusOK {
			return respBody, nil
		}

		lastStatus, lastBody = status, respBody

		if !isRetryableStatus(status) {
			return nil, newBadResponseError(status, string(respBody), map[string]any{"attempt": attempt})
		}

		if status == http.StatusForbidden {
			// The Service returns 403 for a token it considers expired
			// even if our local clock hasn't caught up. Force a re-mint
			// so the next attempt heals instead of repeating the same
			// stale Authorization header.
			ex.tokens.Invalidate()
		}

		if attempt < maxAttempts {
			ex.logger.Info().Msgf("Retry attempt %d because %s", attempt, retryReason(status))
		}
	}

	return nil, newBadResponseError(lastStatus, string(lastBody), map[string]any{"attempts": maxAttempts})
}

func retryReason(status int) string {
	return fmt.Sprintf("status %d", status)
}

// doOnce dispatches a single attempt through the connection pool.
func (ex *executor) doOnce(ctx context.Context, method, path string, body []byte, token string) (int, []byte, error) {
	url := ex.baseURI + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, newRequestError("failed to construct request", map[string]any{"cause": err.Error(), "url": url})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "KEYPAIR_JWT")

	var status int
	var respBody []byte

	err = ex.pool.Do(ctx, func(client *http.Client) error {
		start := time.Now()
		resp, doErr := client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		b, readErr := io.ReadAll(resp.Body)
		elapsed := time.Since(start)

		ex.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("request completed")

		if readErr != nil {
			return readErr
		}
		status = resp.StatusCode
		respBody = b
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return status, respBody, nil
}
