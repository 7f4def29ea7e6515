package backend

import (
	"errors"
	"testing"
)

func TestBodySchemaCheck(t *testing.T) {
	tests := []struct {
		name    string
		schema  *bodySchema
		body    string
		wantErr bool
	}{
		{"questions ok", questionsSchema, `{"questions":{"q1":"Model?"},"answer_choices":{"q1":["SQL"]}}`, false},
		{"questions null choices", questionsSchema, `{"questions":{"q1":"Model?"},"answer_choices":null}`, false},
		{"questions missing", questionsSchema, `{"answer_choices":{}}`, true},
		{"question text not string", questionsSchema, `{"questions":{"q1":3}}`, true},
		{"unknown mode", questionsSchema, `{"questions":{"q1":"Model?"},"selection_modes":{"q1":"ranked"}}`, true},
		{"recommendation ok", recommendationSchema, `{"query_summary":"s","recommendations":[{"name":"PostgreSQL","score":0.9}]}`, false},
		{"recommendation score string", recommendationSchema, `{"recommendations":[{"name":"PostgreSQL","score":"high"}]}`, true},
		{"recommendations missing", recommendationSchema, `{"query_summary":"s"}`, true},
		{"not json", recommendationSchema, `<html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.check([]byte(tt.body))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("check: %v", err)
				}
				return
			}
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want *ErrInvalidResponse", err)
			}
			if string(invalid.Content) != tt.body {
				t.Errorf("content = %q, want the raw body", invalid.Content)
			}
		})
	}
}
