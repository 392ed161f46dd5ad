package port

import "tfidx/internal/domain"

// Retriever defines the interface for searching an index.
type Retriever interface {
	// Search answers query; the first min(k, len(Results)) results are the top k.
	Search(query string, k int) (domain.SearchResult, error)
}
