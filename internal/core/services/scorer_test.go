package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMScorer_Score(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     float64
		wantErr  bool
	}{
		{name: "bare integer", response: "8", want: 8},
		{name: "decimal", response: "7.5", want: 7.5},
		{name: "trailing period", response: "8.", want: 8},
		{name: "fraction form", response: "8/10", want: 8},
		{name: "surrounding whitespace", response: "  9 \n", want: 9},
		{name: "zero", response: "0", want: 0},
		{name: "ten", response: "10", want: 10},
		{name: "prose response", response: "the passage is relevant", wantErr: true},
		{name: "out of range high", response: "11", wantErr: true},
		{name: "out of range low", response: "-1", wantErr: true},
		{name: "empty", response: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewLLMScorer(&mockLLM{response: tt.response})

			score, err := scorer.Score(context.Background(), "query", "passage")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestLLMScorer_Score_GenerationFails(t *testing.T) {
	scorer := NewLLMScorer(&mockLLM{generateErr: errors.New("timeout")})

	_, err := scorer.Score(context.Background(), "query", "passage")
	require.Error(t, err)
}

func TestLLMScorer_Score_NoLLM(t *testing.T) {
	scorer := NewLLMScorer(nil)

	_, err := scorer.Score(context.Background(), "query", "passage")
	require.Error(t, err)
}
