package store

import (
	"context"
	"time"
)

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	Before int64     // sequence < Before (0 = no bound)
	From   time.Time // timestamp >= From
}

// RequestEventData captures a single backend HTTP call.
type RequestEventData struct {
	SessionID    string
	Endpoint     string
	Method       string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEventRecord is a stored request event.
type RequestEventRecord struct {
	RequestEventData
	ID        int64
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to request events.
type EventRepo interface {
	// AppendRequestEvent records a backend call.
	AppendRequestEvent(ctx context.Context, data RequestEventData) error

	// QueryRequestEvents returns events newest first.
	QueryRequestEvents(ctx context.Context, opts QueryOpts) ([]RequestEventRecord, error)
}

// RecommendationData is one stored recommendation.
type RecommendationData struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// SubmissionData captures a completed questionnaire.
type SubmissionData struct {
	SessionID       string
	RequestName     string
	Answers         map[string][]string
	QuerySummary    string
	Recommendations []RecommendationData
}

// SubmissionRecord is a stored submission.
type SubmissionRecord struct {
	SubmissionData
	ID        string
	Sequence  int64
	Timestamp time.Time
}

// SubmissionRepo stores completed questionnaires and their results.
type SubmissionRepo interface {
	// Save stores a submission and returns its generated id.
	Save(ctx context.Context, data SubmissionData) (string, error)

	// Get returns one submission, or nil if it does not exist.
	Get(ctx context.Context, id string) (*SubmissionRecord, error)

	// Recent returns submissions newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]SubmissionRecord, error)
}
