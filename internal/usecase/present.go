package usecase

import (
	"encoding/json"
	"fmt"
	"io"

	"tfidx/internal/domain"
)

// NoMatchMessage is printed when a query has no candidate documents.
const NoMatchMessage = "** No matching document found **"

// ResultItem is a simplified result for CLI output.
type ResultItem struct {
	Rank  int     `json:"rank"`
	DocID int     `json:"doc_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// ResultPage is the JSON rendering of one answered query.
type ResultPage struct {
	Query      string       `json:"query"`
	Candidates int          `json:"candidates"`
	Match      bool         `json:"match"`
	Results    []ResultItem `json:"results"`
}

// Presenter renders search results as text or JSON.
type Presenter struct {
	json bool
}

func NewPresenter(asJSON bool) *Presenter {
	return &Presenter{json: asJSON}
}

// Top returns the first min(topK, len(Results)) results.
func Top(result domain.SearchResult, topK int) []domain.ScoredDoc {
	n := len(result.Results)
	if topK < n {
		n = topK
	}
	if n < 0 {
		n = 0
	}
	return result.Results[:n]
}

// Titles returns the titles of the top results in rank order. The second
// value is false when nothing matched.
func Titles(result domain.SearchResult, topK int) ([]string, bool) {
	if len(result.Results) == 0 {
		return nil, false
	}
	top := Top(result, topK)
	titles := make([]string, len(top))
	for i, sd := range top {
		titles[i] = sd.Title
	}
	return titles, true
}

// Render writes the top results to w.
func (p *Presenter) Render(w io.Writer, result domain.SearchResult, topK int) error {
	if p.json {
		return p.renderJSON(w, result, topK)
	}

	titles, ok := Titles(result, topK)
	if !ok {
		_, err := fmt.Fprintln(w, NoMatchMessage)
		return err
	}
	for i, title := range titles {
		if _, err := fmt.Fprintf(w, "[%d]%s\n", i, title); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presenter) renderJSON(w io.Writer, result domain.SearchResult, topK int) error {
	top := Top(result, topK)
	page := ResultPage{
		Query:      result.Query,
		Candidates: result.Candidates,
		Match:      len(result.Results) > 0,
		Results:    make([]ResultItem, 0, len(top)),
	}
	for i, sd := range top {
		page.Results = append(page.Results, ResultItem{
			Rank:  i,
			DocID: sd.DocID,
			Title: sd.Title,
			Score: sd.Score,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}
