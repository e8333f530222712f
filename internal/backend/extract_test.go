package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "nested final_response answer wins",
			payload: `{"final_response": {"answer": "Y"}, "answer": "X"}`,
			want:    "Y",
		},
		{
			name:    "top-level answer",
			payload: `{"answer": "X"}`,
			want:    "X",
		},
		{
			name:    "final_response as bare string",
			payload: `{"final_response": "plain text reply"}`,
			want:    "plain text reply",
		},
		{
			name:    "null final_response falls through to answer",
			payload: `{"final_response": null, "answer": "X"}`,
			want:    "X",
		},
		{
			name:    "empty nested answer falls through",
			payload: `{"final_response": {"answer": ""}, "answer": "X"}`,
			want:    "X",
		},
		{
			name:    "unknown shape serialized as fallback",
			payload: `{"status": "ok", "retrieved": 3}`,
			want:    `{"status":"ok","retrieved":3}`,
		},
		{
			name:    "final_response object without answer serialized",
			payload: `{"final_response": {"confidence": 0.9}}`,
			want:    `{"confidence": 0.9}`,
		},
		{
			name:    "non-JSON payload returned verbatim",
			payload: `not json at all`,
			want:    "not json at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAnswer([]byte(tt.payload)))
		})
	}
}
