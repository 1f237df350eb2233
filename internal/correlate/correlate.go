package correlate

import (
	"fmt"
	"math"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

// rowKey identifies one pivot row: a country-year observation.
type rowKey struct {
	country string
	year    int
}

// pivot is the wide table: rows keyed by (country, year), one column
// per indicator. Cells hold nil until a non-nil value arrives; the
// first non-nil value per cell wins. Note this is deliberately the
// opposite duplicate policy from the line projection's last-write-wins.
type pivot struct {
	columns []string
	colSeen map[string]bool
	rows    map[rowKey]map[string]*float64
}

func newPivot() *pivot {
	return &pivot{
		colSeen: make(map[string]bool),
		rows:    make(map[rowKey]map[string]*float64),
	}
}

func (p *pivot) add(r models.Record) {
	if !p.colSeen[r.Indicator] {
		p.colSeen[r.Indicator] = true
		p.columns = append(p.columns, r.Indicator)
	}

	key := rowKey{country: r.Country, year: r.Year}
	cells, ok := p.rows[key]
	if !ok {
		cells = make(map[string]*float64)
		p.rows[key] = cells
	}
	if cells[r.Indicator] == nil {
		cells[r.Indicator] = r.Value
	}
}

// column collects one indicator's values across all rows, parallel to
// the given row order.
func (p *pivot) column(indicator string, order []rowKey) []*float64 {
	values := make([]*float64, len(order))
	for i, key := range order {
		values[i] = p.rows[key][indicator]
	}
	return values
}

func (p *pivot) rowOrder() []rowKey {
	order := make([]rowKey, 0, len(p.rows))
	for key := range p.rows {
		order = append(order, key)
	}
	return order
}

// Matrix pivots records into a country-year × indicator table and
// computes the pairwise-complete Pearson correlation between every
// pair of indicator columns. Pairs with fewer than two complete
// observations, or with zero variance, yield nil rather than a number.
// Diagonal entries are 1.0 when the indicator has at least one
// non-nil observation, nil otherwise. The result is symmetric.
func Matrix(records []models.Record) (map[string]map[string]*float64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no data provided for correlation")
	}

	p := newPivot()
	for _, r := range records {
		p.add(r)
	}

	order := p.rowOrder()
	columns := make(map[string][]*float64, len(p.columns))
	for _, indicator := range p.columns {
		columns[indicator] = p.column(indicator, order)
	}

	result := make(map[string]map[string]*float64, len(p.columns))
	for _, indicator := range p.columns {
		result[indicator] = make(map[string]*float64, len(p.columns))
	}

	for i, ind1 := range p.columns {
		if hasObservation(columns[ind1]) {
			result[ind1][ind1] = models.Float64(1.0)
		} else {
			result[ind1][ind1] = nil
		}

		for _, ind2 := range p.columns[i+1:] {
			coefficient := pearson(columns[ind1], columns[ind2])
			result[ind1][ind2] = coefficient
			result[ind2][ind1] = coefficient
		}
	}

	return result, nil
}

// pearson computes the Pearson correlation coefficient over the rows
// where both columns are non-nil (pairwise-complete observations).
func pearson(xs, ys []*float64) *float64 {
	var xv, yv []float64
	for i := range xs {
		if xs[i] != nil && ys[i] != nil {
			xv = append(xv, *xs[i])
			yv = append(yv, *ys[i])
		}
	}

	n := float64(len(xv))
	if len(xv) < 2 {
		return nil
	}

	var sumX, sumY float64
	for i := range xv {
		sumX += xv[i]
		sumY += yv[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xv {
		dx := xv[i] - meanX
		dy := yv[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return nil
	}

	coefficient := cov / math.Sqrt(varX*varY)
	return &coefficient
}

func hasObservation(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}
