package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	response string
	err      error
	system   string
	user     string
}

func (s *stubClient) CreateMessage(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.response, s.err
}

func analysisJSON(t *testing.T) string {
	t.Helper()
	a := validAnalysis()
	b, err := json.Marshal(a)
	require.NoError(t, err)
	return string(b)
}

func TestAnalyzer_Analyze(t *testing.T) {
	req := AnalyzeRequest{
		Title:       "old silver teapot",
		Description: "inherited from grandmother, has some marks on the bottom",
		Category:    "Jewelry",
	}

	t.Run("direct JSON response", func(t *testing.T) {
		client := &stubClient{response: analysisJSON(t)}
		analyzer := NewAnalyzer(client, zerolog.Nop())

		analysis, err := analyzer.Analyze(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "Georgian Sterling Silver Teapot, London 1820", analysis.Title)
		assert.Contains(t, client.user, "old silver teapot")
		assert.Contains(t, client.user, "Suggested category: Jewelry")
	})

	t.Run("fenced code block response", func(t *testing.T) {
		client := &stubClient{response: "Here is the listing:\n```json\n" + analysisJSON(t) + "\n```\nLet me know if you need changes."}
		analyzer := NewAnalyzer(client, zerolog.Nop())

		analysis, err := analyzer.Analyze(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 82.0, analysis.Confidence)
	})

	t.Run("JSON embedded in prose", func(t *testing.T) {
		client := &stubClient{response: "Based on the photos I drafted " + analysisJSON(t) + " as requested."}
		analyzer := NewAnalyzer(client, zerolog.Nop())

		analysis, err := analyzer.Analyze(context.Background(), req)
		require.NoError(t, err)
		assert.InDelta(t, 1450.0, analysis.SuggestedPrice, 0.001)
	})

	t.Run("non-JSON response is rejected", func(t *testing.T) {
		client := &stubClient{response: "I cannot evaluate this item."}
		analyzer := NewAnalyzer(client, zerolog.Nop())

		_, err := analyzer.Analyze(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("out-of-contract analysis is rejected", func(t *testing.T) {
		a := validAnalysis()
		a.Keywords = a.Keywords[:3]
		b, err := json.Marshal(a)
		require.NoError(t, err)

		client := &stubClient{response: string(b)}
		analyzer := NewAnalyzer(client, zerolog.Nop())

		_, err = analyzer.Analyze(context.Background(), req)
		assert.ErrorContains(t, err, "keywords")
	})
}

func TestExtractBalancedObject(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractBalancedObject(`prefix {"a": 1} suffix`))
	assert.Equal(t, `{"a": {"b": 2}}`, extractBalancedObject(`{"a": {"b": 2}}`))
	assert.Equal(t, `{"s": "brace } in string"}`, extractBalancedObject(`{"s": "brace } in string"}`))
	assert.Empty(t, extractBalancedObject("no object here"))
	assert.Empty(t, extractBalancedObject(`{"unclosed": true`))
}
