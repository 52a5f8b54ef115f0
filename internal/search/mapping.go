package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping maps book documents: English-stemmed text for title,
// description, author and chapter titles; keywords for ids; numerics for
// sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	text := func(store, vectors bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = en.AnalyzerName
		f.Store = store
		f.IncludeTermVectors = vectors
		return f
	}
	kw := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		return f
	}
	num := func() *mapping.FieldMapping {
		f := bleve.NewNumericFieldMapping()
		f.Store = true
		return f
	}

	doc.AddFieldMappingsAt("title", text(true, true))
	doc.AddFieldMappingsAt("author", text(true, true))
	// Description is searchable but too large to store.
	doc.AddFieldMappingsAt("description", text(false, false))
	doc.AddFieldMappingsAt("chapter_titles", text(false, true))

	doc.AddFieldMappingsAt("id", kw())
	doc.AddFieldMappingsAt("slug", kw())
	doc.AddFieldMappingsAt("author_id", kw())

	doc.AddFieldMappingsAt("chapter_count", num())
	doc.AddFieldMappingsAt("updated_at", num())

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
