package index

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfidx/internal/domain"
)

func buildIndex(t *testing.T, bodies ...string) *Index {
	t.Helper()
	b := NewBuilder()
	for i, body := range bodies {
		_, err := b.Add("doc"+string(rune('A'+i)), strings.Fields(body))
		require.NoError(t, err)
	}
	idx, err := b.Finalize()
	require.NoError(t, err)
	return idx
}

func TestBuilder_WorkedExample(t *testing.T) {
	idx := buildIndex(t, "cat dog cat", "dog bird", "cat bird bird")

	assert.Equal(t, 3, idx.TotalDocs())
	assert.Equal(t, []string{"bird", "cat", "dog"}, idx.Tokens())

	cat, ok := idx.Postings("cat")
	require.True(t, ok)
	assert.Equal(t, []int{0, 2}, cat.Sorted())

	bird, _ := idx.Postings("bird")
	assert.Equal(t, []int{1, 2}, bird.Sorted())

	doc0, ok := idx.Doc(0)
	require.True(t, ok)
	assert.Equal(t, "docA", doc0.Title)
	assert.Equal(t, 3, doc0.Length)
	assert.Equal(t, 2, doc0.MaxFreq)
	assert.Equal(t, 2, doc0.Count("cat"))
	assert.Equal(t, 1, doc0.Count("dog"))

	doc1, _ := idx.Doc(1)
	assert.Equal(t, 1, doc1.MaxFreq, "a document of distinct tokens has max frequency 1")

	require.NoError(t, idx.Validate())
}

func TestBuilder_SequentialIDs(t *testing.T) {
	b := NewBuilder()
	for want := 0; want < 5; want++ {
		id, err := b.Add("t", []string{"x"})
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	assert.Equal(t, 5, b.Len())
}

func TestBuilder_RepeatedTokenAddsDocOnce(t *testing.T) {
	idx := buildIndex(t, "echo echo echo")

	set, ok := idx.Postings("echo")
	require.True(t, ok)
	assert.Equal(t, 1, set.Len())

	doc, _ := idx.Doc(0)
	assert.Equal(t, 3, doc.Count("echo"))
	assert.Equal(t, 3, doc.MaxFreq)
}

func TestBuilder_EmptyDocument(t *testing.T) {
	idx := buildIndex(t, "", "word")

	doc, ok := idx.Doc(0)
	require.True(t, ok)
	assert.Equal(t, 0, doc.Length)
	assert.Equal(t, 0, doc.MaxFreq)
	assert.Empty(t, doc.WordCount)
	assert.Equal(t, 2, idx.TotalDocs())
	require.NoError(t, idx.Validate())
}

func TestBuilder_EmptyCorpus(t *testing.T) {
	idx := buildIndex(t)

	assert.Equal(t, 0, idx.TotalDocs())
	assert.Empty(t, idx.Tokens())
	assert.Empty(t, idx.Docs())
	require.NoError(t, idx.Validate())
}

func TestBuilder_FinalizeOnce(t *testing.T) {
	b := NewBuilder()
	_, err := b.Finalize()
	require.NoError(t, err)

	_, err = b.Add("late", []string{"x"})
	assert.True(t, errors.Is(err, domain.ErrFinalized))

	_, err = b.Finalize()
	assert.True(t, errors.Is(err, domain.ErrFinalized))
}

func TestDocument_CountDoesNotInsert(t *testing.T) {
	idx := buildIndex(t, "alpha beta")

	doc, _ := idx.Doc(0)
	assert.Equal(t, 0, doc.Count("gamma"))
	_, exists := doc.WordCount["gamma"]
	assert.False(t, exists)
	assert.Len(t, doc.WordCount, 2)
}

func TestIndex_Invariants(t *testing.T) {
	idx := buildIndex(t,
		"the quick brown fox",
		"jumps over the lazy dog",
		"the the the end",
		"",
		"fox dog fox dog fox",
	)

	// Referential integrity.
	for _, token := range idx.Tokens() {
		set, _ := idx.Postings(token)
		for id := range set {
			_, ok := idx.Doc(id)
			assert.True(t, ok, "token %q references missing doc %d", token, id)
		}
	}

	// Max frequency and two-way consistency between counts and postings.
	for _, doc := range idx.Docs() {
		max := 0
		for token, n := range doc.WordCount {
			if n > max {
				max = n
			}
			set, ok := idx.Postings(token)
			require.True(t, ok)
			assert.True(t, set.Contains(doc.ID))
		}
		assert.Equal(t, max, doc.MaxFreq, "doc %d", doc.ID)
	}

	assert.Equal(t, len(idx.Docs()), idx.TotalDocs())
	assert.Equal(t, domain.Stats{TotalDocs: 5, TotalTokens: 18, TotalTerms: 9}, idx.Stats())
}

func TestIndex_ValidateDetectsCorruption(t *testing.T) {
	doc := Document{ID: 0, Title: "a", Length: 2, WordCount: map[string]int{"x": 2}, MaxFreq: 2}

	tests := []struct {
		name string
		idx  *Index
	}{
		{
			name: "dangling posting",
			idx:  New(map[string]PostingSet{"x": NewPostingSet(0, 7)}, map[int]Document{0: doc}, 1),
		},
		{
			name: "missing posting",
			idx:  New(map[string]PostingSet{}, map[int]Document{0: doc}, 1),
		},
		{
			name: "wrong total",
			idx:  New(map[string]PostingSet{"x": NewPostingSet(0)}, map[int]Document{0: doc}, 2),
		},
		{
			name: "wrong max frequency",
			idx: New(map[string]PostingSet{"x": NewPostingSet(0)}, map[int]Document{
				0: {ID: 0, WordCount: map[string]int{"x": 2}, MaxFreq: 1},
			}, 1),
		},
		{
			name: "posting for absent word",
			idx: New(map[string]PostingSet{"x": NewPostingSet(0), "y": NewPostingSet(0)},
				map[int]Document{0: doc}, 1),
		},
		{
			name: "non-sequential ids",
			idx: New(map[string]PostingSet{"x": NewPostingSet(0, 5)}, map[int]Document{
				0: doc,
				5: {ID: 5, Title: "b", Length: 2, WordCount: map[string]int{"x": 2}, MaxFreq: 2},
			}, 2),
		},
		{
			name: "mismatched id",
			idx: New(map[string]PostingSet{"x": NewPostingSet(0)}, map[int]Document{
				0: {ID: 3, WordCount: map[string]int{"x": 2}, MaxFreq: 2},
			}, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.idx.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrCorruptSnapshot))
		})
	}
}

func TestPostingSet_Intersect(t *testing.T) {
	a := NewPostingSet(1, 2, 3, 4)
	b := NewPostingSet(3, 4, 5)

	assert.Equal(t, []int{3, 4}, a.Intersect(b).Sorted())
	assert.Equal(t, []int{3, 4}, b.Intersect(a).Sorted())
	assert.Equal(t, 0, a.Intersect(NewPostingSet(9)).Len())
	assert.Equal(t, 4, a.Len(), "operands are not modified")
}

func TestPostingSet_Clone(t *testing.T) {
	a := NewPostingSet(1, 2)
	c := a.Clone()
	c.Add(3)

	assert.False(t, a.Contains(3))
	assert.True(t, c.Contains(3))
}
