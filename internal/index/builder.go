package index

import (
	"tfidx/internal/domain"
)

// Builder accumulates documents in a single forward pass and yields one
// immutable Index from Finalize. A Builder is not safe for concurrent use.
type Builder struct {
	postings  map[string]PostingSet
	docs      map[int]Document
	nextID    int
	finalized bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		postings: make(map[string]PostingSet),
		docs:     make(map[int]Document),
	}
}

// Add indexes one tokenized document and returns its id. Ids are assigned
// sequentially from 0 in call order.
func (b *Builder) Add(title string, tokens []string) (int, error) {
	if b.finalized {
		return 0, domain.ErrFinalized
	}

	id := b.nextID
	b.nextID++

	doc := Document{
		ID:        id,
		Title:     title,
		Length:    len(tokens),
		WordCount: make(map[string]int),
	}

	for _, token := range tokens {
		doc.WordCount[token]++
		if n := doc.WordCount[token]; n > doc.MaxFreq {
			doc.MaxFreq = n
		}

		set, ok := b.postings[token]
		if !ok {
			set = make(PostingSet)
			b.postings[token] = set
		}
		set.Add(id)
	}

	b.docs[id] = doc
	return id, nil
}

// Len returns the number of documents added so far.
func (b *Builder) Len() int {
	return b.nextID
}

// Finalize returns the built Index. The Builder cannot be used afterwards.
func (b *Builder) Finalize() (*Index, error) {
	if b.finalized {
		return nil, domain.ErrFinalized
	}
	b.finalized = true

	idx := New(b.postings, b.docs, b.nextID)
	b.postings = nil
	b.docs = nil
	return idx, nil
}
