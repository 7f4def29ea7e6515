package fixture

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

//go:embed default.yaml
var defaultFixture []byte

// Question is a fixture question. Empty Choices makes it free text.
type Question struct {
	ID      string   `yaml:"id"`
	Text    string   `yaml:"text"`
	Choices []string `yaml:"choices"`
	Mode    string   `yaml:"mode"`
}

// Candidate is a database the fixture can recommend. Its score is Base
// plus the boost of every matching answer, clamped to [0, 1].
type Candidate struct {
	Name        string                        `yaml:"name"`
	Explanation string                        `yaml:"explanation"`
	Base        float64                       `yaml:"base"`
	Boosts      map[string]map[string]float64 `yaml:"boosts"`
}

// Fixture is a canned backend: a question set plus scoring rules.
type Fixture struct {
	Questions       []Question  `yaml:"questions"`
	Recommendations []Candidate `yaml:"recommendations"`

	// Limit caps the number of recommendations returned. Zero returns all.
	Limit int `yaml:"limit"`

	// FailRecommend makes the first N recommend calls answer 500.
	FailRecommend int `yaml:"fail_recommend"`
}

// Default returns the built-in fixture.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML fixture.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks question ids and modes.
func (f *Fixture) Validate() error {
	seen := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: id is required", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("question %q: duplicate id", q.ID)
		}
		seen[q.ID] = true
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %q: text is required", q.ID)
		}
		if q.Mode != "" {
			if _, err := questionnaire.ParseSelectionMode(q.Mode); err != nil {
				return fmt.Errorf("question %q: %w", q.ID, err)
			}
		}
	}
	for i, c := range f.Recommendations {
		if c.Name == "" {
			return fmt.Errorf("recommendation %d: name is required", i)
		}
	}
	if f.Limit < 0 || f.FailRecommend < 0 {
		return fmt.Errorf("limit and fail_recommend must not be negative")
	}
	return nil
}

// Recommend scores every candidate against answers and returns them best
// first.
func (f *Fixture) Recommend(req questionnaire.Request) *questionnaire.RecommendationResponse {
	recs := make([]questionnaire.Recommendation, 0, len(f.Recommendations))
	for _, c := range f.Recommendations {
		score := c.Base
		for qid, values := range req.Answers {
			for _, v := range values {
				score += c.Boosts[qid][v]
			}
		}
		recs = append(recs, questionnaire.Recommendation{
			Name:        c.Name,
			Score:       min(max(score, 0), 1),
			Explanation: c.Explanation,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if f.Limit > 0 && len(recs) > f.Limit {
		recs = recs[:f.Limit]
	}

	return &questionnaire.RecommendationResponse{
		QuerySummary:    f.summarize(req),
		Recommendations: recs,
	}
}

// summarize lists the answers in question order.
func (f *Fixture) summarize(req questionnaire.Request) string {
	var parts []string
	for _, q := range f.Questions {
		if values, ok := req.Answers[q.ID]; ok && len(values) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", q.ID, strings.Join(values, ", ")))
		}
	}
	if len(parts) == 0 {
		return "No answers given."
	}
	return "Looking for a database with " + strings.Join(parts, "; ") + "."
}
