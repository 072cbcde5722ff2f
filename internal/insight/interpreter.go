// Package insight answers a small set of recognised questions directly from
// the crop production table, without a language model.
package insight

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"agriinsight/internal/domain"
)

// Intent names a recognised question category.
type Intent string

const (
	IntentHighest      Intent = "highest"
	IntentLowest       Intent = "lowest"
	IntentTopProducers Intent = "top_producers"
	IntentUnknown      Intent = "unknown"
)

const (
	msgNoData       = "No data available to analyze."
	msgNoProduction = "Dataset doesn't have a 'production' column to analyze."
	msgNoNumbers    = "No production numbers to compare."
	msgTopUsage     = "Please ask like: 'Top producers of rice in Maharashtra'"
	msgUsage        = "Try asking about 'highest production', 'lowest production', or 'top producers of <crop> in <state>'."
)

const (
	locationColumn   = "state"
	productionColumn = "production"
	topCropsLimit    = 5
)

var trailingLocation = regexp.MustCompile(`in ([a-zA-Z\s]+)$`)

type rule struct {
	intent Intent
	match  func(q string) bool
	answer func(q string, t table) string
}

// Evaluated in order; the first match wins.
var rules = []rule{
	{
		intent: IntentHighest,
		match: func(q string) bool {
			return strings.Contains(q, "highest") || (strings.Contains(q, "top") && strings.Contains(q, "production"))
		},
		answer: answerHighest,
	},
	{
		intent: IntentLowest,
		match:  func(q string) bool { return strings.Contains(q, "lowest") },
		answer: answerLowest,
	},
	{
		intent: IntentTopProducers,
		match: func(q string) bool {
			return strings.Contains(q, "top") && strings.Contains(q, "producers")
		},
		answer: answerTopProducers,
	},
}

// Classify returns the intent query would be dispatched to.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.match(q) {
			return r.intent
		}
	}
	return IntentUnknown
}

// Interpret answers query from data. It has no side effects.
func Interpret(query string, data domain.Table) string {
	q := strings.ToLower(query)
	if data.Empty() {
		return msgNoData
	}
	if !data.HasColumn(productionColumn) {
		return msgNoProduction
	}
	t := table{Table: data}
	for _, r := range rules {
		if r.match(q) {
			return r.answer(q, t)
		}
	}
	return msgUsage
}

func answerHighest(_ string, t table) string {
	groups := t.sumBy(t.Rows, locationColumn)
	if len(groups) == 0 {
		return msgNoNumbers
	}
	sortGroups(groups, true)
	return fmt.Sprintf("%s has the highest total production: %s (sum over available records).",
		groups[0].key, formatNumber(groups[0].sum))
}

func answerLowest(_ string, t table) string {
	groups := t.sumBy(t.Rows, locationColumn)
	if len(groups) == 0 {
		return msgNoNumbers
	}
	sortGroups(groups, false)
	return fmt.Sprintf("%s has the lowest total production: %s.", groups[0].key, formatNumber(groups[0].sum))
}

func answerTopProducers(q string, t table) string {
	m := trailingLocation.FindStringSubmatch(q)
	cropColumn := t.cropColumn()
	if m == nil || cropColumn == "" {
		return msgTopUsage
	}
	location := cases.Title(language.Und).String(strings.TrimSpace(m[1]))
	if location == "" {
		return msgTopUsage
	}

	var rows []domain.Record
	for _, rec := range t.Rows {
		if v, ok := rec.Get(locationColumn); ok && strings.EqualFold(v, location) {
			rows = append(rows, rec)
		}
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No data for %s.", location)
	}

	groups := t.sumBy(rows, cropColumn)
	sortGroups(groups, true)
	if len(groups) > topCropsLimit {
		groups = groups[:topCropsLimit]
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s (%s)", g.key, formatNumber(g.sum))
	}
	return fmt.Sprintf("Top crops in %s by production:\n%s", location, strings.Join(parts, ", "))
}

type table struct {
	domain.Table
}

type group struct {
	key string
	sum float64
}

// cropColumn prefers commodity over crop.
func (t table) cropColumn() string {
	switch {
	case t.HasColumn("commodity"):
		return "commodity"
	case t.HasColumn("crop"):
		return "crop"
	default:
		return ""
	}
}

// sumBy totals production per value of column. Rows missing the key are
// skipped; non-numeric production counts as zero.
func (t table) sumBy(rows []domain.Record, column string) []group {
	index := map[string]int{}
	var groups []group
	for _, rec := range rows {
		key, ok := rec.Get(column)
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		if v, ok := parseProduction(rec); ok {
			groups[i].sum += v
		}
	}
	return groups
}

// sortGroups orders by sum, breaking ties by key so the result is stable.
func sortGroups(groups []group, descending bool) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.sum != b.sum {
			if descending {
				return a.sum > b.sum
			}
			return a.sum < b.sum
		}
		return a.key < b.key
	})
}

func parseProduction(rec domain.Record) (float64, bool) {
	raw, ok := rec.Get(productionColumn)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
