package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var store = []string{
	"Maharashtra | Pune | Crop: Sugarcane | Production: High",
	"Karnataka | Belgaum | Crop: Rice | Production: Medium",
	"Kerala | Thrissur | Crop: Coconut | Production: High",
	"Kerala | Palakkad | Crop: Rice | Production: 5400",
	"Punjab | Ludhiana | Crop: Wheat | Production: 9100",
}

func TestBuild_RejectsEmptyStore(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
}

func TestRetrieve_MostSimilarFirst(t *testing.T) {
	ix, err := Build(store)
	require.NoError(t, err)
	require.Equal(t, len(store), ix.Len())

	got := ix.RetrieveTexts("rice in kerala", 2)
	require.Len(t, got, 2)
	assert.Equal(t, store[3], got[0])
}

func TestRetrieve_AtMostKFromStoreNonIncreasing(t *testing.T) {
	ix, err := Build(store)
	require.NoError(t, err)

	queries := []string{"rice", "high production", "wheat punjab", "nothing matches", "", "Kerala coconut Thrissur"}
	for _, q := range queries {
		for k := 1; k <= 7; k++ {
			res := ix.Retrieve(q, k)
			assert.LessOrEqual(t, len(res), k, q)
			for i, r := range res {
				assert.Contains(t, store, r.Document.Text)
				assert.Equal(t, store[r.Document.Index], r.Document.Text)
				if i > 0 {
					assert.GreaterOrEqual(t, res[i-1].Score, r.Score, fmt.Sprintf("%q k=%d", q, k))
				}
			}
		}
	}
}

func TestRetrieve_KLargerThanStoreReturnsAll(t *testing.T) {
	ix, err := Build(store)
	require.NoError(t, err)
	assert.Len(t, ix.Retrieve("rice", 50), len(store))
}

func TestRetrieve_NonPositiveK(t *testing.T) {
	ix, err := Build(store)
	require.NoError(t, err)
	assert.Empty(t, ix.Retrieve("rice", 0))
}

func TestRetrieve_Deterministic(t *testing.T) {
	ix, err := Build(store)
	require.NoError(t, err)
	first := ix.Retrieve("high production crop", 4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ix.Retrieve("high production crop", 4))
	}
}

func TestRetrieve_TiesFollowStoreOrder(t *testing.T) {
	ix, err := Build(store)
	require.NoError(t, err)

	res := ix.Retrieve("unrelated query words", 3)
	require.Len(t, res, 3)
	for i, r := range res {
		assert.Zero(t, r.Score)
		assert.Equal(t, i, r.Document.Index)
	}
}

func TestBuild_SameInputSameIndex(t *testing.T) {
	a, err := Build(store)
	require.NoError(t, err)
	b, err := Build(append([]string(nil), store...))
	require.NoError(t, err)

	assert.Equal(t, a.Documents(), b.Documents())
	assert.Equal(t, a.Retrieve("rice kerala", 3), b.Retrieve("rice kerala", 3))
}
