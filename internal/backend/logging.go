package backend

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/store"
)

// Endpoint labels used in request events.
const (
	EndpointQuestions = "/questions"
	EndpointRecommend = "/recommend"
)

// LoggingClient is a decorator that logs every backend call and records it
// as a request event.
type LoggingClient struct {
	inner     Client
	logger    *zap.Logger
	eventRepo store.EventRepo
}

// WithLogging wraps a Client with call logging. repo may be nil.
func WithLogging(c Client, logger *zap.Logger, repo store.EventRepo) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingClient{inner: c, logger: logger.Named("backend"), eventRepo: repo}
}

func (l *LoggingClient) Questions(ctx context.Context) ([]questionnaire.Question, error) {
	ctx, info := withCallInfo(ctx)
	start := time.Now()
	qs, err := l.inner.Questions(ctx)
	l.record(ctx, EndpointQuestions, http.MethodGet, info, time.Since(start), err,
		zap.Int("questions", len(qs)))
	return qs, err
}

func (l *LoggingClient) Recommend(ctx context.Context, req questionnaire.Request) (*questionnaire.RecommendationResponse, error) {
	ctx, info := withCallInfo(ctx)
	start := time.Now()
	resp, err := l.inner.Recommend(ctx, req)
	fields := []zap.Field{zap.Int("answers", len(req.Answers))}
	if resp != nil {
		fields = append(fields, zap.Int("recommendations", len(resp.Recommendations)))
	}
	l.record(ctx, EndpointRecommend, http.MethodPost, info, time.Since(start), err, fields...)
	return resp, err
}

func (l *LoggingClient) record(ctx context.Context, endpoint, method string, info *callInfo, elapsed time.Duration, err error, extra ...zap.Field) {
	status := info.status
	if status == 0 {
		status = StatusCode(err)
	}

	fields := append([]zap.Field{
		zap.String("endpoint", endpoint),
		zap.String("method", method),
		zap.Int("status", status),
		zap.Duration("latency", elapsed),
	}, extra...)
	if err != nil {
		l.logger.Warn("backend call failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Info("backend call", fields...)
	}

	if l.eventRepo == nil {
		return
	}
	data := store.RequestEventData{
		SessionID:  SessionFrom(ctx),
		Endpoint:   endpoint,
		Method:     method,
		StatusCode: status,
		LatencyMs:  elapsed.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	// A failed write must not fail the call.
	if logErr := l.eventRepo.AppendRequestEvent(context.WithoutCancel(ctx), data); logErr != nil {
		l.logger.Warn("failed to record request event", zap.Error(logErr))
	}
}
