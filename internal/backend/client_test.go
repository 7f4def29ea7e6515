package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

const questionsBody = `{
  "questions": {
    "q1": "What type of data model do you need?",
    "q3": "Anything else?",
    "q2": "What are your consistency requirements?"
  },
  "answer_choices": {
    "q1": ["SQL", "NoSQL", "Graph"],
    "q2": ["Need strong consistency", "Eventual is fine"],
    "q3": []
  },
  "selection_modes": {"q2": "multi"}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Options{
		QuestionsURL: srv.URL + "/questions",
		RecommendURL: srv.URL + "/recommend",
		Timeout:      time.Second,
	}, nil)
}

func TestQuestions_KeepsDocumentOrder(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/questions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, questionsBody)
	})

	qs, err := c.Questions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("questions = %d, want 3", len(qs))
	}

	wantIDs := []string{"q1", "q3", "q2"}
	for i, id := range wantIDs {
		if qs[i].ID != id {
			t.Errorf("qs[%d].ID = %q, want %q", i, qs[i].ID, id)
		}
	}
	if qs[0].Mode != questionnaire.ModeSingle || len(qs[0].Choices) != 3 {
		t.Errorf("q1 = %+v, want single choice with 3 options", qs[0])
	}
	if !qs[1].IsFreeText() || qs[1].Mode != questionnaire.ModeText {
		t.Errorf("q3 = %+v, want free text", qs[1])
	}
	if qs[2].Mode != questionnaire.ModeMulti {
		t.Errorf("q2 mode = %s, want multi", qs[2].Mode)
	}
}

func TestQuestions_MissingChoicesIsFreeText(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"questions":{"q1":"Describe your workload"},"answer_choices":null}`)
	})

	qs, err := c.Questions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 || !qs[0].IsFreeText() {
		t.Fatalf("questions = %+v, want one free-text question", qs)
	}
}

func TestQuestions_DuplicateKeyFirstWins(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"questions":{"q1":"first","q2":"second","q1":"again"}}`)
	})

	qs, err := c.Questions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("questions = %d, want 2", len(qs))
	}
	if qs[0].ID != "q1" || qs[0].Text != "first" {
		t.Errorf("qs[0] = %+v, want q1/first", qs[0])
	}
}

func TestQuestions_EmptyPayload(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"questions":{}}`)
	})

	qs, err := c.Questions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("questions = %d, want 0", len(qs))
	}
}

func TestQuestions_InvalidShape(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"questions":["not","an","object"]}`)
	})

	_, err := c.Questions(context.Background())
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
	if IsRetryable(err) {
		t.Error("invalid response should not be retryable")
	}
}

func TestQuestions_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	})

	_, err := c.Questions(context.Background())
	var st *ErrStatus
	if !errors.As(err, &st) {
		t.Fatalf("expected ErrStatus, got %T: %v", err, err)
	}
	if st.Code != 500 || st.Body != "boom" {
		t.Errorf("status error = %+v", st)
	}
	if !IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestRecommend_PostsPayload(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommend" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var got questionnaire.Request
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if got.Name != questionnaire.DefaultRequestName {
			t.Errorf("name = %q", got.Name)
		}
		if len(got.Answers["q1"]) != 1 || got.Answers["q1"][0] != "NoSQL" {
			t.Errorf("answers = %v", got.Answers)
		}
		io.WriteString(w, `{
			"query_summary": "Non-relational, strongly consistent",
			"recommendations": [
				{"name": "MongoDB", "score": 0.875, "explanation": "Document store"},
				{"name": "CockroachDB", "score": 0.5, "explanation": "Distributed SQL"}
			]
		}`)
	})

	resp, err := c.Recommend(context.Background(), questionnaire.Request{
		Name:    questionnaire.DefaultRequestName,
		Answers: map[string][]string{"q1": {"NoSQL"}, "q2": {"Need strong consistency"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.QuerySummary != "Non-relational, strongly consistent" {
		t.Errorf("summary = %q", resp.QuerySummary)
	}
	if len(resp.Recommendations) != 2 || resp.Recommendations[0].Name != "MongoDB" {
		t.Fatalf("recommendations = %+v", resp.Recommendations)
	}
	if got := questionnaire.FormatScore(resp.Recommendations[0].Score); got != "87.5%" {
		t.Errorf("score = %s, want 87.5%%", got)
	}
}

func TestRecommend_ScoreMustBeNumber(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"query_summary":"x","recommendations":[{"name":"A","score":"high"}]}`)
	})

	_, err := c.Recommend(context.Background(), questionnaire.Request{Name: "n", Answers: map[string][]string{}})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
}

func TestRecommend_RateLimited(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Recommend(context.Background(), questionnaire.Request{Name: "n", Answers: map[string][]string{}})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T: %v", err, err)
	}
	if rl.RetryAfter != 2*time.Second {
		t.Errorf("RetryAfter = %s, want 2s", rl.RetryAfter)
	}
	if StatusCode(err) != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", StatusCode(err))
	}
}

func TestQuestions_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(Options{QuestionsURL: url + "/questions", Timeout: time.Second}, nil)
	_, err := c.Questions(context.Background())
	var unavail *ErrUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrUnavailable, got %T: %v", err, err)
	}
}

func TestQuestions_CanceledContext(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, questionsBody)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Questions(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("canceled context should not be retryable")
	}
}
