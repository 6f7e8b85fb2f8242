package search

import (
	"context"
	"fmt"
	"regexp"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/readnestapp/readnest-server/internal/normalize"
)

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID     string  `json:"id"`
	Type   DocType `json:"type"`
	Score  float64 `json:"score"`
	Name   string  `json:"name"`
	Email  string  `json:"email,omitempty"`
	Author string  `json:"author,omitempty"`
	Status string  `json:"status,omitempty"`
}

// SearchUsers finds users whose name or email contains every term of the
// query, case- and diacritic-insensitively. An empty query matches all users
// sorted by newest first; the caller decides how to present that.
func (s *SearchIndex) SearchUsers(ctx context.Context, queryStr string, limit, offset int) (*SearchResult, error) {
	q := scopedQuery(DocTypeUser, queryStr, []string{"name_folded", "email_folded"})
	return s.run(ctx, queryStr, q, limit, offset)
}

// SearchBooks finds books on one user's shelf whose title or author contains
// every term of the query.
func (s *SearchIndex) SearchBooks(ctx context.Context, ownerID, queryStr string, limit, offset int) (*SearchResult, error) {
	owner := bleve.NewTermQuery(ownerID)
	owner.SetField("owner_id")

	q := scopedQuery(DocTypeBook, queryStr, []string{"name_folded", "author_folded"})
	return s.run(ctx, queryStr, bleve.NewConjunctionQuery(owner, q), limit, offset)
}

// scopedQuery builds a query matching documents of one type where every
// folded query term appears as a substring of at least one of the given
// fields. Terms are ANDed: "emile zola" must match both words somewhere.
func scopedQuery(docType DocType, queryStr string, fields []string) query.Query {
	typeFilter := bleve.NewTermQuery(string(docType))
	typeFilter.SetField("type")

	terms := normalize.FoldTerms(queryStr)
	if len(terms) == 0 {
		return typeFilter
	}

	parts := []query.Query{typeFilter}
	for _, term := range terms {
		// QuoteMeta keeps user-typed wildcard and regexp characters
		// literal; only the surrounding .* may expand.
		pattern := ".*" + regexp.QuoteMeta(term) + ".*"
		fieldQueries := make([]query.Query, len(fields))
		for i, field := range fields {
			// Folded fields are single keyword terms, so an unanchored
			// pattern is a substring match on the whole value.
			rq := bleve.NewRegexpQuery(pattern)
			rq.SetField(field)
			fieldQueries[i] = rq
		}
		parts = append(parts, bleve.NewDisjunctionQuery(fieldQueries...))
	}

	return bleve.NewConjunctionQuery(parts...)
}

// run executes a built query and converts the results.
func (s *SearchIndex) run(ctx context.Context, queryStr string, q query.Query, limit, offset int) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.Fields = []string{"id", "type", "name", "email", "author", "status"}

	// Empty queries fall back to recency, everything else to relevance.
	if normalize.Fold(queryStr) == "" {
		req.SortBy([]string{"-created_at"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  queryStr,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if e, ok := hit.Fields["email"].(string); ok {
			searchHit.Email = e
		}
		if a, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = a
		}
		if st, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = st
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}
