package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit and MaxLimit bound the page size of a search.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search.
type Params struct {
	Query    string
	AuthorID string
	Limit    int
	Offset   int
}

// Result is one page of hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a matching book.
type Hit struct {
	ID           string            `json:"id"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Author       string            `json:"author"`
	ChapterCount int               `json:"chapter_count"`
	Score        float64           `json:"score"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Search runs a ranked query over books.
func (i *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)
	params.Offset = max(params.Offset, 0)

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"slug", "title", "author", "chapter_count"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")
	if params.Query == "" {
		req.SortBy([]string{"-updated_at"})
	}

	i.mu.RLock()
	res, err := i.index.SearchInContext(ctx, req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["slug"].(string); ok {
			hit.Slug = v
		}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["chapter_count"].(float64); ok {
			hit.ChapterCount = int(v)
		}
		for field, fragments := range h.Fragments {
			if len(fragments) == 0 {
				continue
			}
			if hit.Highlights == nil {
				hit.Highlights = make(map[string]string)
			}
			hit.Highlights[field] = fragments[0]
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery ranks title matches above author, chapter title and
// description matches, with fuzzy and prefix fallbacks on the title.
func buildQuery(params Params) query.Query {
	var must []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		match := func(field string, boost float64) query.Query {
			m := bleve.NewMatchQuery(q)
			m.SetField(field)
			m.SetBoost(boost)
			return m
		}
		text := []query.Query{
			match("title", 3.0),
			match("author", 2.0),
			match("chapter_titles", 1.2),
			match("description", 1.0),
		}

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if len(q) >= 2 && !strings.ContainsRune(q, ' ') {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		must = append(must, bleve.NewDisjunctionQuery(text...))
	}

	if params.AuthorID != "" {
		term := bleve.NewTermQuery(params.AuthorID)
		term.SetField("author_id")
		must = append(must, term)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}
