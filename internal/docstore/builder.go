// Package docstore renders dataset records into the one-line documents the
// retrieval index is built over.
package docstore

import (
	"context"
	"fmt"

	"agriinsight/internal/applog"
	"agriinsight/internal/domain"
)

// DefaultLimit is the number of records requested for the document store.
const DefaultLimit = 500

// Fallback is used when the dataset cannot be fetched or is empty.
var Fallback = []string{
	"Maharashtra | Pune | Crop: Sugarcane | Production: High",
	"Karnataka | Belgaum | Crop: Rice | Production: Medium",
	"Kerala | Thrissur | Crop: Coconut | Production: High",
}

// Build fetches up to limit records and renders one document per record,
// in fetch order. The result is never empty.
func Build(ctx context.Context, fetcher domain.DatasetFetcher, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	table := fetcher.FetchDataset(ctx, limit)
	if table.Empty() {
		applog.Info("dataset unavailable, using fallback documents", "documents", len(Fallback))
		return append([]string(nil), Fallback...)
	}
	docs := Render(table)
	applog.Info("document store built", "documents", len(docs))
	return docs
}

// Render converts every row of table into a document.
func Render(table domain.Table) []string {
	out := make([]string, len(table.Rows))
	for i, rec := range table.Rows {
		out[i] = RenderRecord(rec)
	}
	return out
}

// RenderRecord formats a single record. Missing fields render as empty
// strings; commodity is preferred over crop.
func RenderRecord(rec domain.Record) string {
	crop, ok := rec.Get("commodity")
	if !ok {
		crop = rec["crop"]
	}
	return fmt.Sprintf("%s | %s | Crop: %s | Production: %s", rec["state"], rec["district"], crop, rec["production"])
}
