// Package datagov fetches the crop production dataset from the open
// government data catalog.
package datagov

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agriinsight/internal/applog"
	"agriinsight/internal/domain"
	"agriinsight/internal/httpclient"
)

// Columns recognised in the catalog payload, in output order.
var KnownColumns = []string{"state", "district", "commodity", "crop", "production", "year", "variety"}

// Config configures the catalog client.
type Config struct {
	BaseURL           string
	ResourceID        string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is a DatasetFetcher backed by the catalog HTTP API.
type Client struct {
	endpoint string
	apiKey   string
	http     *httpclient.Client
}

// NewClient creates a catalog client.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.data.gov.in"
	}
	return &Client{
		endpoint: fmt.Sprintf("%s/resource/%s", base, cfg.ResourceID),
		apiKey:   cfg.APIKey,
		http: httpclient.New(httpclient.Config{
			Provider:          "datagov",
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		}),
	}
}

// FetchDataset returns up to limit records. Any failure is logged and
// yields an empty table.
func (c *Client) FetchDataset(ctx context.Context, limit int) domain.Table {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("api-key", c.apiKey)
	}

	var payload struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint, params, &payload); err != nil {
		applog.Warn("error fetching data.gov dataset", "error", err)
		return domain.Table{}
	}
	if len(payload.Records) == 0 {
		applog.Warn("data.gov dataset returned no records")
		return domain.Table{}
	}
	table, err := normalize(payload.Records)
	if err != nil {
		applog.Warn("error decoding data.gov records", "error", err)
		return domain.Table{}
	}
	applog.Debug("data.gov dataset loaded", "records", table.Len(), "columns", table.Columns)
	return table
}

// normalize lower-cases field names and keeps only KnownColumns when at
// least one of them is present.
func normalize(raw []json.RawMessage) (domain.Table, error) {
	var columns []string
	seen := map[string]bool{}
	rows := make([]domain.Record, 0, len(raw))
	for _, r := range raw {
		fields, err := decodeOrdered(r)
		if err != nil {
			return domain.Table{}, err
		}
		rec := make(domain.Record, len(fields))
		for _, f := range fields {
			name := strings.ToLower(f.name)
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
			if _, dup := rec[name]; dup {
				continue
			}
			if v, ok := renderValue(f.value); ok {
				rec[name] = v
			}
		}
		rows = append(rows, rec)
	}

	var keep []string
	for _, c := range KnownColumns {
		if seen[c] {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		return domain.Table{Columns: columns, Rows: rows}, nil
	}
	for i, rec := range rows {
		trimmed := make(domain.Record, len(keep))
		for _, c := range keep {
			if v, ok := rec[c]; ok {
				trimmed[c] = v
			}
		}
		rows[i] = trimmed
	}
	return domain.Table{Columns: keep, Rows: rows}, nil
}

type field struct {
	name  string
	value json.RawMessage
}

// decodeOrdered decodes a JSON object keeping its key order.
func decodeOrdered(raw json.RawMessage) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("record is not a JSON object")
	}
	var out []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("record key is not a string")
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, field{name: key, value: v})
	}
	return out, nil
}

// renderValue turns a JSON scalar into its string form. null is missing.
func renderValue(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s, true
		}
	}
	return string(trimmed), true
}
