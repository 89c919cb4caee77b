package aggregate

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/orgpulse/pulse/internal/model"
)

// Density is a sampled probability density curve.
type Density struct {
	Category  string    `json:"category"`
	Count     int       `json:"count"`
	Bandwidth float64   `json:"bandwidth"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
}

// KDE estimates a Gaussian kernel density with Scott's bandwidth
// (sample std * n^-1/5) and samples it at points evenly spaced from
// min-3h to max+3h. At least two distinct values are required.
func KDE(values []float64, points int) (Density, error) {
	if points < 2 {
		points = 100
	}
	sd := sampleStd(values)
	if len(values) < 2 || sd == 0 {
		return Density{}, model.NewError(model.ErrMissingData, "density needs at least two distinct values", nil)
	}
	n := float64(len(values))
	h := sd * math.Pow(n, -0.2)
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	lo, hi = lo-3*h, hi+3*h

	d := Density{Count: len(values), Bandwidth: h, X: make([]float64, points), Y: make([]float64, points)}
	step := (hi - lo) / float64(points-1)
	norm := 1 / (n * h * math.Sqrt(2*math.Pi))
	for i := 0; i < points; i++ {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range values {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		d.X[i] = x
		d.Y[i] = sum * norm
	}
	return d, nil
}

// DensityByCategory estimates one density per category for a SCALE
// question. Categories with too few distinct values are skipped.
func DensityByCategory(records []model.ResponseRecord, categoryColumn string, q model.Question, points int) ([]Density, error) {
	agg, err := AggregateScale(records, categoryColumn, q)
	if err != nil {
		return nil, err
	}
	byCat := map[string][]float64{}
	for _, rec := range records {
		v, ok := rec.Score(q.Text)
		if !ok {
			continue
		}
		if cat, ok := categoryOf(rec, categoryColumn); ok {
			byCat[cat] = append(byCat[cat], v)
		}
	}
	var out []Density
	for _, row := range agg.Rows[1:] {
		d, err := KDE(byCat[row.Category], points)
		if err != nil {
			continue
		}
		d.Category = row.Category
		out = append(out, d)
	}
	return out, nil
}
