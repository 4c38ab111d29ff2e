package core

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/dealwatch/internal/model"
)

func testDeals() []model.Deal {
	return []model.Deal{
		{ID: "1", Name: "Sapphire Ring", Score: 80, MarginPct: 12},
		{ID: "2", Name: "Topaz Ring", Score: 40, MarginPct: -5},
		{ID: "3", BaseType: "Gold Ring", Score: 65, MarginPct: 3},
		{ID: "4", Name: "Leather Belt", Score: 90, MarginPct: 30},
		{ID: "5"},
	}
}

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, DefaultCriteria())
	assert.Len(t, result, 0)
}

func TestFilter_DefaultsExcludeNegativeMargin(t *testing.T) {
	result := Filter(testDeals(), DefaultCriteria())
	require.Len(t, result, 4)
	for _, d := range result {
		assert.NotEqual(t, model.FlexID("2"), d.ID)
	}
}

func TestFilter_UnboundedMarginMatchesEverything(t *testing.T) {
	result := Filter(testDeals(), Criteria{MinMargin: math.Inf(-1)})
	assert.Len(t, result, 5)
}

func TestFilter_RingExample(t *testing.T) {
	items := []model.Deal{
		{Name: "Sapphire Ring", Score: 80, MarginPct: 12},
		{Name: "Topaz Ring", Score: 40, MarginPct: -5},
	}

	result := Filter(items, Criteria{Query: "ring", MinScore: 50, MinMargin: 0})
	require.Len(t, result, 1)
	assert.Equal(t, "Sapphire Ring", result[0].Name)
}

func TestFilter_QueryIsCaseInsensitive(t *testing.T) {
	result := Filter(testDeals(), Criteria{Query: "RING"})
	assert.Len(t, result, 2)

	result = Filter(testDeals(), Criteria{Query: "RING", MinMargin: math.Inf(-1)})
	assert.Len(t, result, 3)
}

func TestFilter_QueryFallsBackToBaseType(t *testing.T) {
	result := Filter(testDeals(), Criteria{Query: "gold"})
	require.Len(t, result, 1)
	assert.Equal(t, model.FlexID("3"), result[0].ID)
}

func TestFilter_QueryExcludesNamelessItems(t *testing.T) {
	result := Filter([]model.Deal{{ID: "x"}}, Criteria{Query: "a"})
	assert.Empty(t, result)
}

func TestFilter_MissingScoreAndMarginReadAsZero(t *testing.T) {
	items := []model.Deal{{ID: "x"}}

	assert.Len(t, Filter(items, Criteria{MinScore: 0, MinMargin: 0}), 1)
	assert.Len(t, Filter(items, Criteria{MinScore: 1}), 0)
	assert.Len(t, Filter(items, Criteria{MinMargin: 0.1}), 0)
	assert.Len(t, Filter(items, Criteria{MinMargin: -1}), 1)
}

func TestFilter_PreservesOrder(t *testing.T) {
	result := Filter(testDeals(), Criteria{MinScore: 50})
	ids := make([]model.FlexID, len(result))
	for i, d := range result {
		ids[i] = d.ID
	}
	assert.Equal(t, []model.FlexID{"1", "3", "4"}, ids)
}

func TestFilter_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		items := randomDeals(r, 20)
		c := randomCriteria(r)

		once := Filter(items, c)
		twice := Filter(once, c)
		assert.Equal(t, once, twice, "criteria %+v", c)
	}
}

func TestFilter_Monotonic(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		items := randomDeals(r, 20)
		c := randomCriteria(r)

		base := len(Filter(items, c))

		higherScore := c
		higherScore.MinScore += r.Float64() * 50
		assert.LessOrEqual(t, len(Filter(items, higherScore)), base)

		higherMargin := c
		higherMargin.MinMargin += r.Float64() * 50
		assert.LessOrEqual(t, len(Filter(items, higherMargin)), base)
	}
}

func TestCriteria_Normalize(t *testing.T) {
	assert.Equal(t, DefaultLimit, Criteria{}.Normalize().Limit)
	assert.Equal(t, 1, Criteria{Limit: -4}.Normalize().Limit)
	assert.Equal(t, 12, Criteria{Limit: 12}.Normalize().Limit)
}

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name                        string
		query, score, margin, limit string
		expected                    Criteria
	}{
		{"empty", "", "", "", "", Criteria{Limit: 30}},
		{"values", "ring", "50", "2.5", "10", Criteria{Query: "ring", MinScore: 50, MinMargin: 2.5, Limit: 10}},
		{"garbage_numbers", "x", "abc", "--", "lots", Criteria{Query: "x", Limit: 30}},
		{"negative_margin", "", "", "-10", "5", Criteria{MinMargin: -10, Limit: 5}},
		{"zero_limit_floors", "", "", "", "0", Criteria{Limit: 1}},
		{"negative_limit_floors", "", "", "", "-3", Criteria{Limit: 1}},
		{"whitespace", "", " 7 ", " 1 ", " 4 ", Criteria{MinScore: 7, MinMargin: 1, Limit: 4}},
		{"nan_reads_as_zero", "", "NaN", "nan", "", Criteria{Limit: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCriteria(tt.query, tt.score, tt.margin, tt.limit))
		})
	}
}

func TestFilter_NaNMinimumDoesNotWidenResults(t *testing.T) {
	items := []model.Deal{
		{ID: "a", Name: "Sapphire Ring", Score: 80, MarginPct: 12},
		{ID: "b", Name: "Topaz Ring", Score: 40, MarginPct: 5},
	}

	strict := Filter(items, ParseCriteria("", "100", "", ""))
	assert.Empty(t, strict)

	nan := Filter(items, ParseCriteria("", "NaN", "NaN", ""))
	assert.Len(t, nan, len(Filter(items, DefaultCriteria())))
}

func randomDeals(r *rand.Rand, n int) []model.Deal {
	names := []string{"Sapphire Ring", "Topaz Ring", "Leather Belt", "", "Ruby Amulet"}
	deals := make([]model.Deal, n)
	for i := range deals {
		deals[i] = model.Deal{
			ID:        model.FlexID(fmt.Sprint(i)),
			Name:      names[r.Intn(len(names))],
			Score:     model.Num(r.Float64() * 100),
			MarginPct: model.Num(r.Float64()*60 - 20),
		}
	}
	return deals
}

func randomCriteria(r *rand.Rand) Criteria {
	queries := []string{"", "ring", "RING", "belt", "zzz"}
	return Criteria{
		Query:     queries[r.Intn(len(queries))],
		MinScore:  r.Float64() * 100,
		MinMargin: r.Float64()*60 - 30,
		Limit:     30,
	}
}
