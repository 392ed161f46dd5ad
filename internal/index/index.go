// Package index holds the inverted index data model and its builder.
//
// An Index maps tokens to posting sets and document ids to per-document
// word statistics. It is produced once by a Builder (or restored from a
// snapshot) and is read-only afterwards, so any number of goroutines may
// query it concurrently.
package index

import (
	"sort"

	"github.com/pkg/errors"

	"tfidx/internal/domain"
)

// Document holds the per-document metadata needed for ranking.
// Values handed out by an Index must not be modified.
type Document struct {
	ID        int
	Title     string
	Length    int
	WordCount map[string]int
	MaxFreq   int
}

// Count returns the number of occurrences of token in the document, or 0.
// It never inserts into WordCount.
func (d Document) Count(token string) int {
	return d.WordCount[token]
}

// Index is an immutable inverted index.
type Index struct {
	postings  map[string]PostingSet
	docs      map[int]Document
	totalDocs int
}

// New assembles an Index from already-built parts. Callers restoring a
// snapshot should run Validate on the result.
func New(postings map[string]PostingSet, docs map[int]Document, totalDocs int) *Index {
	if postings == nil {
		postings = make(map[string]PostingSet)
	}
	if docs == nil {
		docs = make(map[int]Document)
	}
	return &Index{
		postings:  postings,
		docs:      docs,
		totalDocs: totalDocs,
	}
}

// Postings returns the posting set for token. The set must not be modified.
func (idx *Index) Postings(token string) (PostingSet, bool) {
	p, ok := idx.postings[token]
	return p, ok
}

// Doc returns the document with the given id.
func (idx *Index) Doc(id int) (Document, bool) {
	d, ok := idx.docs[id]
	return d, ok
}

// TotalDocs returns the number of indexed documents.
func (idx *Index) TotalDocs() int {
	return idx.totalDocs
}

// Tokens returns every indexed token in sorted order.
func (idx *Index) Tokens() []string {
	tokens := make([]string, 0, len(idx.postings))
	for t := range idx.postings {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Docs returns every document ordered by id.
func (idx *Index) Docs() []Document {
	docs := make([]Document, 0, len(idx.docs))
	for _, d := range idx.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	return docs
}

// Stats summarizes the index.
func (idx *Index) Stats() domain.Stats {
	stats := domain.Stats{
		TotalDocs:  idx.totalDocs,
		TotalTerms: len(idx.postings),
	}
	for _, d := range idx.docs {
		stats.TotalTokens += d.Length
	}
	return stats
}

// Validate checks the structural invariants of the index. Violations are
// reported as domain.ErrCorruptSnapshot.
func (idx *Index) Validate() error {
	if idx.totalDocs != len(idx.docs) {
		return errors.Wrapf(domain.ErrCorruptSnapshot, "total docs %d, have %d documents", idx.totalDocs, len(idx.docs))
	}

	for token, set := range idx.postings {
		if set.Len() == 0 {
			return errors.Wrapf(domain.ErrCorruptSnapshot, "token %q has an empty posting set", token)
		}
		for id := range set {
			doc, ok := idx.docs[id]
			if !ok {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "token %q references unknown document %d", token, id)
			}
			if doc.Count(token) == 0 {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "token %q lists document %d which does not contain it", token, id)
			}
		}
	}

	for id, doc := range idx.docs {
		if id < 0 || id >= idx.totalDocs {
			return errors.Wrapf(domain.ErrCorruptSnapshot, "document id %d outside 0..%d", id, idx.totalDocs-1)
		}
		if doc.ID != id {
			return errors.Wrapf(domain.ErrCorruptSnapshot, "document keyed %d has id %d", id, doc.ID)
		}
		maxFreq := 0
		for token, n := range doc.WordCount {
			if n <= 0 {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "document %d has non-positive count for %q", id, token)
			}
			if !idx.postings[token].Contains(id) {
				return errors.Wrapf(domain.ErrCorruptSnapshot, "document %d contains %q but is missing from its postings", id, token)
			}
			if n > maxFreq {
				maxFreq = n
			}
		}
		if doc.MaxFreq != maxFreq {
			return errors.Wrapf(domain.ErrCorruptSnapshot, "document %d max frequency %d, want %d", id, doc.MaxFreq, maxFreq)
		}
	}

	return nil
}
