package usecase

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfidx/internal/domain"
)

func sampleResult() domain.SearchResult {
	return domain.SearchResult{
		Query:      "cat",
		Candidates: 3,
		Results: []domain.ScoredDoc{
			{DocID: 4, Title: "First", Score: 3},
			{DocID: 1, Title: "Second", Score: 2},
			{DocID: 9, Title: "Third", Score: 1},
		},
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		name string
		topK int
		want []string
	}{
		{"fewer than results", 2, []string{"First", "Second"}},
		{"exactly results", 3, []string{"First", "Second", "Third"}},
		{"more than results", 10, []string{"First", "Second", "Third"}},
		{"zero", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles, ok := Titles(sampleResult(), tt.topK)
			assert.True(t, ok)
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestTitles_NoMatch(t *testing.T) {
	titles, ok := Titles(domain.SearchResult{Query: "zebra"}, 3)
	assert.False(t, ok)
	assert.Nil(t, titles)
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPresenter(false).Render(&buf, sampleResult(), 2))
	assert.Equal(t, "[0]First\n[1]Second\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPresenter(false).Render(&buf, domain.SearchResult{}, 2))
	assert.Equal(t, NoMatchMessage+"\n", buf.String())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPresenter(true).Render(&buf, sampleResult(), 2))

	var page ResultPage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &page))
	assert.True(t, page.Match)
	assert.Equal(t, 3, page.Candidates)
	assert.Equal(t, []ResultItem{
		{Rank: 0, DocID: 4, Title: "First", Score: 3},
		{Rank: 1, DocID: 1, Title: "Second", Score: 2},
	}, page.Results)

	buf.Reset()
	require.NoError(t, NewPresenter(true).Render(&buf, domain.SearchResult{Query: "zebra"}, 2))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &page))
	assert.False(t, page.Match)
	assert.Empty(t, page.Results)
}
