package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

const searchLimit = 10

// SearchBook searches Open Library for a work matching title and author,
// preferring English results. Returns nil without error when nothing matches.
func (c *Client) SearchBook(ctx context.Context, title, author string) (*searchDoc, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	// Build search URL
	params := url.Values{}
	params.Set("q", cleanQuery(title+" "+author))
	params.Set("language", "eng")
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	searchURL := c.baseURL + "/search.json?" + params.Encode()

	c.logger.Debug("searching Open Library",
		"title", title,
		"author", author,
		"url", searchURL,
	)

	// Make request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	// Parse response
	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("Open Library search results",
		"title", title,
		"count", searchResp.NumFound,
	)

	if len(searchResp.Docs) == 0 {
		return nil, nil
	}

	// Prefer the first doc that looks English; fall back to the first doc.
	for i := range searchResp.Docs {
		if isEnglishDoc(&searchResp.Docs[i]) {
			return &searchResp.Docs[i], nil
		}
	}
	return &searchResp.Docs[0], nil
}

// isEnglishDoc reports whether a result looks like an English edition.
// A missing language field counts as English, since many older records
// simply omit it.
func isEnglishDoc(doc *searchDoc) bool {
	hasEnglishLanguage := len(doc.Language) == 0
	for _, lang := range doc.Language {
		if lang == "eng" || lang == "en" {
			hasEnglishLanguage = true
			break
		}
	}
	return hasEnglishLanguage && isMostlyASCII(doc.Title)
}

// isMostlyASCII reports whether the title uses only basic Latin characters
// and common punctuation, a cheap proxy for an English-language title.
func isMostlyASCII(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// cleanQuery strips punctuation from the search query, keeping letters,
// digits, and spaces.
func cleanQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
