package domain

// ScoredDoc is a ranked candidate document.
type ScoredDoc struct {
	DocID int
	Title string
	Score float64
}

// SearchResult is the outcome of a single query against an index.
//
// Results holds every scored candidate; only the first min(K, len(Results))
// entries are guaranteed to be the top entries in descending score order.
type SearchResult struct {
	Query      string
	Tokens     []string
	Candidates int
	Results    []ScoredDoc
}

// Record is one line of a tab-separated corpus.
type Record struct {
	ID    string
	Title string
	Body  string
}

// Stats summarizes an index.
type Stats struct {
	TotalDocs   int
	TotalTokens int
	TotalTerms  int
}
