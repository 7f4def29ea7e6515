package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// submissionColumns is the select order scanned by scanSubmission.
var submissionColumns = []string{
	"id", "sequence", "timestamp_ms", "session_id", "request_name",
	"answers", "query_summary", "recommendations",
}

type submissionRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *submissionRepo) Save(ctx context.Context, data SubmissionData) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", err
	}

	answers, err := json.Marshal(data.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	recs := data.Recommendations
	if recs == nil {
		recs = []RecommendationData{}
	}
	recommendations, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("marshal recommendations: %w", err)
	}

	id := uuid.New().String()
	query, args := builder().Insert(submissionsTable.Name).
		Columns(submissionColumns...).
		Values(id, seqNum, time.Now().UnixMilli(), data.SessionID, data.RequestName,
			string(answers), data.QuerySummary, string(recommendations)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return "", fmt.Errorf("save submission: %w", err)
	}
	return id, nil
}

func (r *submissionRepo) Get(ctx context.Context, id string) (*SubmissionRecord, error) {
	b := builder()
	sel := b.Select(submissionColumns...).
		From(b.Table(submissionsTable.Name)).
		Where(entsql.EQ("id", id)).
		Limit(1)
	recs, err := r.query(ctx, sel)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

func (r *submissionRepo) Recent(ctx context.Context, opts QueryOpts) ([]SubmissionRecord, error) {
	b := builder()
	return r.query(ctx, opts.apply(b.Select(submissionColumns...).From(b.Table(submissionsTable.Name))))
}

func (r *submissionRepo) query(ctx context.Context, sel *entsql.Selector) ([]SubmissionRecord, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRecord
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSubmission(rows *entsql.Rows) (SubmissionRecord, error) {
	var rec SubmissionRecord
	var ts int64
	var answers, recommendations string
	if err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.SessionID, &rec.RequestName,
		&answers, &rec.QuerySummary, &recommendations); err != nil {
		return rec, fmt.Errorf("scan submission: %w", err)
	}
	rec.Timestamp = time.UnixMilli(ts)
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return rec, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendations), &rec.Recommendations); err != nil {
		return rec, fmt.Errorf("decode recommendations: %w", err)
	}
	return rec, nil
}
