package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// The mapping is designed with these priorities:
//  1. Full-text search on names/titles with English stemming
//  2. Folded fields with the keyword analyzer so wildcard queries get
//     case-insensitive substring matching across the whole value
//  3. Exact keyword matching for type, owner, and status filters
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Author - searchable for book lookups
	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	// --- Folded fields (keyword analyzer, wildcard substring targets) ---

	// Keyword analyzer keeps the whole folded value as a single term,
	// which is what makes "*emile*" match "emile zola".
	nameFoldedMapping := bleve.NewTextFieldMapping()
	nameFoldedMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("name_folded", nameFoldedMapping)

	emailFoldedMapping := bleve.NewTextFieldMapping()
	emailFoldedMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("email_folded", emailFoldedMapping)

	authorFoldedMapping := bleve.NewTextFieldMapping()
	authorFoldedMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("author_folded", authorFoldedMapping)

	// --- Keyword fields (exact match filters) ---

	// Type - for filtering by document type
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Email - stored for retrieval in directory results
	emailFieldMapping := bleve.NewTextFieldMapping()
	emailFieldMapping.Analyzer = keyword.Name
	emailFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("email", emailFieldMapping)

	// Owner - for scoping book searches to one shelf
	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("owner_id", ownerFieldMapping)

	// Reading status - for shelf filtering
	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	// --- Numeric fields ---

	// Timestamp - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
