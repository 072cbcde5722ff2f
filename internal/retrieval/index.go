// Package retrieval builds the read-only TF-IDF index over the document
// store and answers similarity queries against it.
package retrieval

import (
	"errors"

	"agriinsight/internal/applog"
	"agriinsight/internal/domain"
	"agriinsight/internal/embedding/tfidf"
	"agriinsight/internal/vectorstore"
	"agriinsight/internal/vectorstore/memory"
)

// Index pairs a prepared embedder with the vectors of every document. It is
// immutable after Build and safe for concurrent use.
type Index struct {
	embedder domain.Embedder
	store    vectorstore.Storage
	docs     []domain.Document
}

// Build vectorises documents with a fresh TF-IDF embedder and an in-memory store.
func Build(documents []string) (*Index, error) {
	return BuildWith(documents, tfidf.NewEmbedder(), memory.NewStorage())
}

// BuildWith builds an index using the given embedder and store. The
// embedder is prepared over documents; the store is reset.
func BuildWith(documents []string, embedder domain.Embedder, store vectorstore.Storage) (*Index, error) {
	if len(documents) == 0 {
		return nil, errors.New("cannot build index over an empty document store")
	}
	if err := embedder.Prepare(documents); err != nil {
		return nil, err
	}
	if err := store.Init(embedder.Dimension()); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, len(documents))
	vectors := make([][]float64, len(documents))
	for i, text := range documents {
		vec, err := embedder.Embed(text)
		if err != nil {
			return nil, err
		}
		docs[i] = domain.Document{Index: i, Text: text}
		vectors[i] = vec
	}
	if err := store.Upsert(docs, vectors); err != nil {
		return nil, err
	}
	applog.Debug("retrieval index built", "documents", len(docs), "terms", embedder.Dimension())
	return &Index{embedder: embedder, store: store, docs: docs}, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Documents returns the indexed texts in store order.
func (ix *Index) Documents() []string {
	out := make([]string, len(ix.docs))
	for i, d := range ix.docs {
		out[i] = d.Text
	}
	return out
}

// Retrieve returns up to k documents most similar to query, best first.
// Equal scores are ordered by document position. A k larger than the store
// returns every document ranked.
func (ix *Index) Retrieve(query string, k int) []domain.SearchResult {
	if k <= 0 {
		return nil
	}
	vec, err := ix.embedder.Embed(query)
	if err != nil {
		applog.Warn("embedding query failed", "error", err)
		return nil
	}
	res, err := ix.store.Search(vec, k)
	if err != nil {
		applog.Warn("index search failed", "error", err)
		return nil
	}
	return res
}

// RetrieveTexts is Retrieve without scores.
func (ix *Index) RetrieveTexts(query string, k int) []string {
	res := ix.Retrieve(query, k)
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.Document.Text
	}
	return out
}
