package backend

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

// MockQuestions is a canned Questions result.
type MockQuestions struct {
	Questions []questionnaire.Question
	Err       error
}

// MockRecommendation is a canned Recommend result.
type MockRecommendation struct {
	Response *questionnaire.RecommendationResponse
	Err      error
}

// MockClient is a deterministic Client for testing.
// It returns canned results in FIFO order and records all requests.
type MockClient struct {
	mu              sync.Mutex
	questions       []MockQuestions
	recommendations []MockRecommendation

	QuestionCalls int
	Requests      []questionnaire.Request
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// AddQuestions appends a canned Questions result.
func (m *MockClient) AddQuestions(r MockQuestions) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, r)
	return m
}

// AddRecommendation appends a canned Recommend result.
func (m *MockClient) AddRecommendation(r MockRecommendation) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations = append(m.recommendations, r)
	return m
}

// Questions returns the next canned result or ErrUnavailable when the
// queue is empty.
func (m *MockClient) Questions(ctx context.Context) ([]questionnaire.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QuestionCalls++
	if len(m.questions) == 0 {
		return nil, &ErrUnavailable{Err: errors.New("no canned questions")}
	}
	r := m.questions[0]
	m.questions = m.questions[1:]
	if r.Err == nil {
		recordStatus(ctx, 200)
	}
	return r.Questions, r.Err
}

// Recommend returns the next canned result or ErrUnavailable when the
// queue is empty.
func (m *MockClient) Recommend(ctx context.Context, req questionnaire.Request) (*questionnaire.RecommendationResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if len(m.recommendations) == 0 {
		return nil, &ErrUnavailable{Err: errors.New("no canned recommendation")}
	}
	r := m.recommendations[0]
	m.recommendations = m.recommendations[1:]
	if r.Err == nil {
		recordStatus(ctx, 200)
	}
	return r.Response, r.Err
}

// CallCount returns the total number of calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QuestionCalls + len(m.Requests)
}

// LastRequest returns the most recent Recommend request.
func (m *MockClient) LastRequest() (questionnaire.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return questionnaire.Request{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}
