package backend

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

var questionsSchema = mustCompile("questions-response", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
		"answer_choices": map[string]any{
			"type": []any{"object", "null"},
			"additionalProperties": map[string]any{
				"type":  []any{"array", "null"},
				"items": map[string]any{"type": "string"},
			},
		},
		"selection_modes": map[string]any{
			"type": []any{"object", "null"},
			"additionalProperties": map[string]any{
				"enum": []any{"single", "multi"},
			},
		},
	},
	"required": []any{"questions"},
})

var recommendationSchema = mustCompile("recommendation-response", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query_summary": map[string]any{"type": "string"},
		"recommendations": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        map[string]any{"type": "string"},
					"score":       map[string]any{"type": "number"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"name", "score"},
			},
		},
	},
	"required": []any{"recommendations"},
})

// decodeQuestions turns the keyed questions payload into an ordered list.
// Order follows the key order of the "questions" object in the document;
// a repeated key keeps its first position and text.
func decodeQuestions(raw []byte, defaultMode questionnaire.SelectionMode) ([]questionnaire.Question, error) {
	if err := questionsSchema.check(raw); err != nil {
		return nil, err
	}

	var body struct {
		AnswerChoices  map[string][]string `json:"answer_choices"`
		SelectionModes map[string]string   `json:"selection_modes"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode questions: %w", err)}
	}

	seen := make(map[string]bool)
	questions := make([]questionnaire.Question, 0)
	gjson.GetBytes(raw, "questions").ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if seen[id] {
			return true
		}
		seen[id] = true

		mode := defaultMode
		if m, ok := body.SelectionModes[id]; ok {
			mode = questionnaire.SelectionMode(m)
		}
		questions = append(questions, questionnaire.NewQuestion(id, value.String(), body.AnswerChoices[id], mode))
		return true
	})
	return questions, nil
}

// decodeRecommendation validates and decodes a recommend response.
func decodeRecommendation(raw []byte) (*questionnaire.RecommendationResponse, error) {
	if err := recommendationSchema.check(raw); err != nil {
		return nil, err
	}
	var resp questionnaire.RecommendationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode recommendation: %w", err)}
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []questionnaire.Recommendation{}
	}
	return &resp, nil
}
