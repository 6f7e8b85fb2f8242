// Package openlibrary provides a client for the Open Library search API,
// used to enrich books with page counts, covers, and publication years.
package openlibrary

// Enrichment holds the fields Open Library can fill in for a book.
// Zero values mean the API had nothing for that field.
type Enrichment struct {
	TotalPages      int    `json:"total_pages,omitempty"`
	CoverImageURL   string `json:"cover_image_url,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
}

// searchResponse is the raw Open Library search API response.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

// searchDoc is a single work from Open Library search.
type searchDoc struct {
	Title              string   `json:"title"`
	AuthorName         []string `json:"author_name,omitempty"`
	Language           []string `json:"language,omitempty"`
	CoverID            int64    `json:"cover_i,omitempty"`
	FirstPublishYear   int      `json:"first_publish_year,omitempty"`
	NumberOfPagesMedia int      `json:"number_of_pages_median,omitempty"`
}
