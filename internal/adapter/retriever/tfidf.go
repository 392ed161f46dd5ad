package retriever

import (
	"math"
	"sort"

	"tfidx/internal/adapter/analyzer"
	"tfidx/internal/domain"
	"tfidx/internal/index"
)

// TFIDFRetriever answers conjunctive term queries against an immutable index
// and ranks the matches with an augmented tf-idf bag-of-words score.
type TFIDFRetriever struct {
	index     *index.Index
	tokenizer *analyzer.Tokenizer
}

func NewTFIDFRetriever(idx *index.Index, tokenizer *analyzer.Tokenizer) *TFIDFRetriever {
	return &TFIDFRetriever{
		index:     idx,
		tokenizer: tokenizer,
	}
}

// Search tokenizes query, selects the candidate documents and ranks them.
// Only the first min(k, len(Results)) results are ordered.
func (r *TFIDFRetriever) Search(query string, k int) (domain.SearchResult, error) {
	result := domain.SearchResult{Query: query}

	candidates, tokens := r.Candidates(r.tokenizer.Tokenize(query))
	result.Tokens = tokens
	result.Candidates = candidates.Len()
	if candidates.Len() == 0 {
		return result, nil
	}

	result.Results = r.Rank(tokens, candidates, k)
	return result, nil
}

// Candidates intersects the posting sets of the distinct tokens that exist in
// the index. Tokens missing from the index are skipped rather than treated as
// matching nothing. It also returns the distinct tokens in first-seen order.
func (r *TFIDFRetriever) Candidates(tokens []string) (index.PostingSet, []string) {
	distinct := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	var candidates index.PostingSet
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		distinct = append(distinct, token)

		set, ok := r.index.Postings(token)
		if !ok {
			continue
		}
		if candidates == nil {
			candidates = set.Clone()
		} else {
			candidates = candidates.Intersect(set)
		}
	}

	if candidates == nil {
		candidates = index.NewPostingSet()
	}
	return candidates, distinct
}

// Rank scores every candidate as the sum over tokens of tf(t,d)*idf where
//
//	tf(t,d) = 0.5 + 0.5*count(t,d)/maxFreq(d)
//	idf     = ln(totalDocs/|candidates|)
//
// idf uses the size of the final candidate set for every token, not each
// token's own document frequency. candidates must not be empty.
func (r *TFIDFRetriever) Rank(tokens []string, candidates index.PostingSet, k int) []domain.ScoredDoc {
	idf := math.Log(float64(r.index.TotalDocs()) / float64(candidates.Len()))

	results := make([]domain.ScoredDoc, 0, candidates.Len())
	for _, id := range candidates.Sorted() {
		doc, ok := r.index.Doc(id)
		if !ok {
			continue
		}

		// Candidates contain at least one indexed token, so MaxFreq >= 1.
		score := 0.0
		for _, token := range tokens {
			tf := 0.5 + 0.5*float64(doc.Count(token))/float64(doc.MaxFreq)
			score += tf * idf
		}

		results = append(results, domain.ScoredDoc{
			DocID: id,
			Title: doc.Title,
			Score: score,
		})
	}

	selectTopK(results, k)
	return results
}

// selectTopK partially orders results so the first min(k, len) entries are
// the highest scoring ones in descending order. Ties are broken by doc id.
// Entries past k are left in no particular order.
func selectTopK(results []domain.ScoredDoc, k int) {
	if k > len(results) {
		k = len(results)
	}
	if k <= 0 {
		return
	}

	lo, hi := 0, len(results)-1
	for lo < hi {
		p := partition(results, lo, hi)
		if p == k-1 {
			break
		}
		if p < k-1 {
			lo = p + 1
		} else {
			hi = p - 1
		}
	}

	top := results[:k]
	sort.Slice(top, func(i, j int) bool {
		return ranksBefore(top[i], top[j])
	})
}

func partition(s []domain.ScoredDoc, lo, hi int) int {
	mid := lo + (hi-lo)/2
	s[mid], s[hi] = s[hi], s[mid]
	pivot := s[hi]

	i := lo
	for j := lo; j < hi; j++ {
		if ranksBefore(s[j], pivot) {
			s[i], s[j] = s[j], s[i]
			i++
		}
	}
	s[i], s[hi] = s[hi], s[i]
	return i
}

func ranksBefore(a, b domain.ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}
