package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgpulse/pulse/internal/model"
)

var (
	scaleQ = model.Question{Text: "q", Kind: model.KindScale, ScaleMin: 1, ScaleMax: 5}
	multiQ = model.Question{Text: "m", Kind: model.KindMultiSelect, Choices: []string{"foo", "bar", "baz"}}
)

func rec(kv ...any) model.ResponseRecord {
	r := model.ResponseRecord{}
	for i := 0; i < len(kv); i += 2 {
		k := kv[i].(string)
		switch v := kv[i+1].(type) {
		case int:
			r[k] = model.NumberAnswer(float64(v))
		case float64:
			r[k] = model.NumberAnswer(v)
		case string:
			r[k] = model.TextAnswer(v)
		}
	}
	return r
}

func TestAggregateScaleExample(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "A", "q", 4),
		rec("dept", "A", "q", 2),
		rec("dept", "B", "q", 5),
	}
	agg, err := AggregateScale(records, "dept", scaleQ)
	require.NoError(t, err)

	assert.Equal(t, []model.CategoryStat{
		{Category: model.AllCategory, Mean: 3.67, Std: 1.53, Count: 3},
		{Category: "A", Mean: 3.0, Std: 1.41, Count: 2},
		{Category: "B", Mean: 5.0, Std: 0.0, Count: 1},
	}, agg.Rows)
}

func TestAggregateScaleAllRowCoversMissingCategory(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "A", "q", 4),
		rec("q", 2),
		rec("dept", "B"),
	}
	agg, err := AggregateScale(records, "dept", scaleQ)
	require.NoError(t, err)

	all, ok := agg.Row(model.AllCategory)
	require.True(t, ok)
	assert.Equal(t, 2, all.Count)
	assert.Equal(t, 3.0, all.Mean)
	_, ok = agg.Row("B")
	assert.False(t, ok, "category with no rating is dropped")
}

func TestAggregateScaleEmptyAndPinned(t *testing.T) {
	agg, err := AggregateScale(nil, "dept", scaleQ)
	require.NoError(t, err)
	require.Len(t, agg.Rows, 1)
	assert.Equal(t, model.CategoryStat{Category: model.AllCategory}, agg.Rows[0])

	records := []model.ResponseRecord{rec("dept", "B", "q", 3)}
	agg, err = AggregateScale(records, "dept", scaleQ, WithCategories("C", "B"))
	require.NoError(t, err)
	cats := make([]string, len(agg.Rows))
	for i, r := range agg.Rows {
		cats[i] = r.Category
	}
	assert.Equal(t, []string{model.AllCategory, "C", "B"}, cats)
	c, _ := agg.Row("C")
	assert.Equal(t, model.CategoryStat{Category: "C"}, c)
}

func TestAggregateScaleRejectsBadInput(t *testing.T) {
	records := []model.ResponseRecord{rec("dept", "A", "q", 4)}

	_, err := AggregateScale(records, "dept", multiQ)
	assert.True(t, errors.Is(err, model.Code(model.ErrInvalidInput)))

	_, err = AggregateScale(records, "nope", scaleQ)
	assert.True(t, errors.Is(err, model.Code(model.ErrInvalidInput)))
}

func TestAggregateScaleProperties(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "인사", "q", 1), rec("dept", "인사", "q", 5), rec("dept", "인사", "q", 3),
		rec("dept", "재무", "q", 2), rec("dept", "재무", "q", 2),
		rec("dept", "기술", "q", 4),
	}
	first, err := AggregateScale(records, "dept", scaleQ)
	require.NoError(t, err)
	second, err := AggregateScale(records, "dept", scaleQ)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, model.AllCategory, first.Rows[0].Category)
	for _, row := range first.Rows {
		assert.GreaterOrEqual(t, row.Mean, 1.0, row.Category)
		assert.LessOrEqual(t, row.Mean, 5.0, row.Category)
	}
	assert.Equal(t, []string{"기술", "인사", "재무"},
		[]string{first.Rows[1].Category, first.Rows[2].Category, first.Rows[3].Category},
		"categories follow Korean collation")
}

func TestAggregateMultiSelectExample(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "A", "m", "foo bar"),
		rec("dept", "A", "m", "bar"),
	}
	dist, err := AggregateMultiSelect(records, "dept", multiQ, nil)
	require.NoError(t, err)

	row, ok := dist.Row("A")
	require.True(t, ok)
	assert.Equal(t, 2, row.Total)
	assert.Equal(t, map[string]float64{"foo": 50, "bar": 100, "baz": 0}, row.Percentages)
	assert.Equal(t, []string{"foo", "bar", "baz"}, dist.Choices)
}

func TestAggregateMultiSelectDenominatorAndEmpty(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "A", "m", "foo"),
		rec("dept", "A"),
		rec("dept", "A", "m", "   "),
		rec("dept", "A", "m", "baz"),
	}
	dist, err := AggregateMultiSelect(records, "dept", multiQ, nil,
		WithCategories("Z"), WithTotalRow())
	require.NoError(t, err)

	assert.Equal(t, model.AllCategory, dist.Rows[0].Category)
	a, _ := dist.Row("A")
	assert.Equal(t, 4, a.Total)
	assert.Equal(t, 25.0, a.Percentages["foo"])

	z, ok := dist.Row("Z")
	require.True(t, ok)
	assert.Equal(t, 0, z.Total)
	for _, choice := range multiQ.Choices {
		assert.Equal(t, 0.0, z.Percentages[choice])
	}
	for _, row := range dist.Rows {
		for c, p := range row.Percentages {
			assert.True(t, p >= 0 && p <= 100, "%s/%s = %v", row.Category, c, p)
		}
	}
}

func TestAggregateMultiSelectNormalizesUnicode(t *testing.T) {
	// "소통" spelled with decomposed jamo.
	decomposed := "\u1109\u1169\u1110\u1169\u11bc"
	q := model.Question{Text: "m", Kind: model.KindMultiSelect, Choices: []string{"소통"}}
	records := []model.ResponseRecord{rec("dept", "A", "m", decomposed+"부재")}

	dist, err := AggregateMultiSelect(records, "dept", q, nil)
	require.NoError(t, err)
	a, _ := dist.Row("A")
	assert.Equal(t, 100.0, a.Percentages["소통"])
}

func TestAggregateMultiSelectRejectsScale(t *testing.T) {
	_, err := AggregateMultiSelect([]model.ResponseRecord{rec("dept", "A")}, "dept", scaleQ, nil)
	assert.True(t, errors.Is(err, model.Code(model.ErrInvalidInput)))
}

func TestSortLabelsNumeric(t *testing.T) {
	labels := []string{"40대", "20대", "100", "9"}
	SortLabels(labels)
	assert.Equal(t, []string{"9", "20대", "40대", "100"}, labels)
}
