package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client is the recommendation backend.
type Client interface {
	// Questions fetches the questionnaire in display order.
	Questions(ctx context.Context) ([]questionnaire.Question, error)

	// Recommend posts the collected answers and returns the scored
	// recommendations.
	Recommend(ctx context.Context, req questionnaire.Request) (*questionnaire.RecommendationResponse, error)
}

// Options configures an HTTPClient.
type Options struct {
	QuestionsURL string
	RecommendURL string

	// DefaultMode applies to choice questions without a declared
	// selection mode.
	DefaultMode questionnaire.SelectionMode

	// Timeout bounds each HTTP request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// HTTPClient talks to the backend over HTTP/JSON.
type HTTPClient struct {
	questionsURL string
	recommendURL string
	defaultMode  questionnaire.SelectionMode
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a backend client.
func NewHTTPClient(opts Options, logger *zap.Logger) *HTTPClient {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	mode := opts.DefaultMode
	if mode == "" {
		mode = questionnaire.ModeSingle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		questionsURL: opts.QuestionsURL,
		recommendURL: opts.RecommendURL,
		defaultMode:  mode,
		httpClient:   hc,
		logger:       logger.Named("backend"),
	}
}

// Questions implements Client.
func (c *HTTPClient) Questions(ctx context.Context) ([]questionnaire.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.questionsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build questions request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	questions, err := decodeQuestions(raw, c.defaultMode)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("questions decoded", zap.Int("count", len(questions)))
	return questions, nil
}

// Recommend implements Client.
func (c *HTTPClient) Recommend(ctx context.Context, r questionnaire.Request) (*questionnaire.RecommendationResponse, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal recommend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.recommendURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build recommend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := decodeRecommendation(raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("recommendations decoded", zap.Int("count", len(resp.Recommendations)))
	return resp, nil
}

// do executes req and returns the body of a 2xx response.
func (c *HTTPClient) do(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()

	recordStatus(ctx, resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrUnavailable{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &ErrStatus{Code: resp.StatusCode, Body: truncate(string(body), 512)}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &ErrRateLimit{
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        statusErr,
			}
		}
		return nil, statusErr
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
