package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"agriinsight/internal/domain"
)

func sample() domain.Table {
	return domain.Table{
		Columns: []string{"state", "production"},
		Rows: []domain.Record{
			{"state": "A", "production": "10"},
			{"state": "B", "production": "30"},
			{"state": "A", "production": "5"},
		},
	}
}

func crops() domain.Table {
	return domain.Table{
		Columns: []string{"state", "district", "commodity", "production"},
		Rows: []domain.Record{
			{"state": "Kerala", "commodity": "Coconut", "production": "900"},
			{"state": "kerala", "commodity": "Rice", "production": "400"},
			{"state": "Kerala", "commodity": "Coconut", "production": "100"},
			{"state": "Kerala", "commodity": "Pepper", "production": "n/a"},
			{"state": "Kerala", "commodity": "Banana", "production": "50"},
			{"state": "Kerala", "commodity": "Cardamom", "production": "60"},
			{"state": "Kerala", "commodity": "Tea", "production": "70"},
			{"state": "Punjab", "commodity": "Wheat", "production": "5000"},
		},
	}
}

func TestInterpret_Highest(t *testing.T) {
	got := Interpret("Which state has the highest production?", sample())
	assert.Equal(t, "B has the highest total production: 30 (sum over available records).", got)
}

func TestInterpret_TopAndProductionMeansHighest(t *testing.T) {
	got := Interpret("top production state", sample())
	assert.Contains(t, got, "B has the highest total production: 30")
}

func TestInterpret_Lowest(t *testing.T) {
	got := Interpret("LOWEST production", sample())
	assert.Equal(t, "A has the lowest total production: 15.", got)
}

func TestInterpret_HighestWinsOverLowest(t *testing.T) {
	got := Interpret("highest or lowest", sample())
	assert.Contains(t, got, "highest")
}

func TestInterpret_TopProducers(t *testing.T) {
	got := Interpret("Top producers of crops in kerala", crops())
	assert.Equal(t, "Top crops in Kerala by production:\nCoconut (1000), Rice (400), Tea (70), Cardamom (60), Banana (50)", got)
}

func TestInterpret_TopProducersUnknownLocation(t *testing.T) {
	got := Interpret("top producers of rice in Kerala", sample())
	assert.Equal(t, msgTopUsage, got, "no crop column")

	got = Interpret("top producers of rice in Kerala", withoutState(crops(), "kerala"))
	assert.Equal(t, "No data for Kerala.", got)
}

func TestInterpret_TopProducersMultiWordLocation(t *testing.T) {
	data := domain.Table{
		Columns: []string{"state", "commodity", "production"},
		Rows:    []domain.Record{{"state": "Tamil Nadu", "commodity": "Rice", "production": "7"}},
	}
	got := Interpret("top producers in tamil nadu", data)
	assert.Equal(t, "Top crops in Tamil Nadu by production:\nRice (7)", got)
}

func TestInterpret_TopProducersNeedsLocation(t *testing.T) {
	assert.Equal(t, msgTopUsage, Interpret("top producers of rice", crops()))
	assert.Equal(t, msgTopUsage, Interpret("top producers in 2020", crops()))
}

func TestInterpret_TopProducersUsesCropColumn(t *testing.T) {
	data := domain.Table{
		Columns: []string{"state", "crop", "production"},
		Rows:    []domain.Record{{"state": "Goa", "crop": "Cashew", "production": "3"}},
	}
	assert.Equal(t, "Top crops in Goa by production:\nCashew (3)", Interpret("top producers in goa", data))
}

func TestInterpret_Unmatched(t *testing.T) {
	for _, q := range []string{"", "hello", "rainfall in kerala", "which producers"} {
		assert.Equal(t, msgUsage, Interpret(q, sample()), q)
	}
}

func TestInterpret_EmptyOrMissingProduction(t *testing.T) {
	assert.Equal(t, msgNoData, Interpret("highest", domain.Table{}))

	noProd := domain.Table{Columns: []string{"state"}, Rows: []domain.Record{{"state": "A"}}}
	assert.Equal(t, msgNoProduction, Interpret("highest", noProd))
}

func TestInterpret_NonNumericSumsToZero(t *testing.T) {
	data := domain.Table{
		Columns: []string{"state", "production"},
		Rows: []domain.Record{
			{"state": "A", "production": "High"},
			{"state": "B", "production": "2.5"},
			{"state": "C"},
		},
	}
	assert.Equal(t, "A has the lowest total production: 0.", Interpret("lowest", data))
	assert.Contains(t, Interpret("highest", data), "B has the highest total production: 2.5")
}

func TestInterpret_NoGroups(t *testing.T) {
	data := domain.Table{
		Columns: []string{"state", "production"},
		Rows:    []domain.Record{{"production": "4"}},
	}
	assert.Equal(t, msgNoNumbers, Interpret("highest", data))
	assert.Equal(t, msgNoNumbers, Interpret("lowest", data))
}

func TestInterpret_TiesBreakByName(t *testing.T) {
	data := domain.Table{
		Columns: []string{"state", "production"},
		Rows: []domain.Record{
			{"state": "Zeta", "production": "5"},
			{"state": "Alpha", "production": "5"},
		},
	}
	assert.Contains(t, Interpret("highest", data), "Alpha has")
	assert.Contains(t, Interpret("lowest", data), "Alpha has")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, IntentHighest, Classify("Highest yield"))
	assert.Equal(t, IntentHighest, Classify("top production"))
	assert.Equal(t, IntentLowest, Classify("lowest"))
	assert.Equal(t, IntentTopProducers, Classify("top producers in goa"))
	assert.Equal(t, IntentUnknown, Classify("weather"))
}

func withoutState(t domain.Table, state string) domain.Table {
	out := domain.Table{Columns: t.Columns}
	for _, rec := range t.Rows {
		if v, _ := rec.Get("state"); !strings.EqualFold(v, state) {
			out.Rows = append(out.Rows, rec)
		}
	}
	return out
}
