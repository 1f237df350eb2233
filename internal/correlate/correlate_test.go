package correlate

import (
	"math"
	"testing"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

func rec(country string, year int, indicator string, value float64) models.Record {
	return models.Record{Country: country, Year: year, Indicator: indicator, Value: models.Float64(value)}
}

func TestMatrixEmptyRecords(t *testing.T) {
	if _, err := Matrix(nil); err == nil {
		t.Fatal("expected error for empty record set")
	}
}

func TestMatrixDiagonal(t *testing.T) {
	records := []models.Record{
		rec("USA", 2019, "NY.GDP.PCAP.CD", 100),
		rec("USA", 2020, "NY.GDP.PCAP.CD", 110),
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	d := matrix["NY.GDP.PCAP.CD"]["NY.GDP.PCAP.CD"]
	if d == nil || *d != 1.0 {
		t.Errorf("diagonal = %v, want 1.0", d)
	}
}

func TestMatrixDiagonalNilWithoutObservations(t *testing.T) {
	records := []models.Record{
		{Country: "USA", Year: 2020, Indicator: "NY.GDP.PCAP.CD", Value: nil},
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	if d := matrix["NY.GDP.PCAP.CD"]["NY.GDP.PCAP.CD"]; d != nil {
		t.Errorf("diagonal = %v, want nil for an all-missing column", *d)
	}
}

func TestMatrixPerfectCorrelation(t *testing.T) {
	var records []models.Record
	for year := 2015; year <= 2020; year++ {
		x := float64(year - 2014)
		records = append(records,
			rec("USA", year, "X", x),
			rec("USA", year, "Y", 2*x+3),
		)
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	c := matrix["X"]["Y"]
	if c == nil {
		t.Fatal("expected a coefficient, got nil")
	}
	if math.Abs(*c-1.0) > 0.01 {
		t.Errorf("coefficient = %v, want ~1.0", *c)
	}
}

func TestMatrixNegativeCorrelationAndSymmetry(t *testing.T) {
	var records []models.Record
	for year := 2015; year <= 2020; year++ {
		x := float64(year - 2014)
		records = append(records,
			rec("USA", year, "X", x),
			rec("USA", year, "Y", 100-5*x),
		)
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	xy := matrix["X"]["Y"]
	yx := matrix["Y"]["X"]
	if xy == nil || yx == nil {
		t.Fatal("expected coefficients on both sides")
	}
	if math.Abs(*xy+1.0) > 0.01 {
		t.Errorf("coefficient = %v, want ~-1.0", *xy)
	}
	if *xy != *yx {
		t.Errorf("matrix asymmetric: [X][Y]=%v, [Y][X]=%v", *xy, *yx)
	}
}

// Correlation only uses rows where both indicators are observed.
func TestMatrixPairwiseComplete(t *testing.T) {
	records := []models.Record{
		rec("USA", 2018, "X", 1),
		rec("USA", 2019, "X", 2),
		rec("USA", 2020, "X", 3),
		// Y missing for 2018.
		rec("USA", 2019, "Y", 20),
		rec("USA", 2020, "Y", 30),
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	c := matrix["X"]["Y"]
	if c == nil {
		t.Fatal("expected a coefficient from the two complete rows")
	}
	if math.Abs(*c-1.0) > 0.01 {
		t.Errorf("coefficient = %v, want ~1.0", *c)
	}
}

func TestMatrixInsufficientPairs(t *testing.T) {
	records := []models.Record{
		rec("USA", 2020, "X", 1),
		rec("USA", 2020, "Y", 2),
		rec("USA", 2019, "X", 3),
		rec("GBR", 2019, "Y", 4),
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	if c := matrix["X"]["Y"]; c != nil {
		t.Errorf("coefficient = %v, want nil with a single complete pair", *c)
	}
}

func TestMatrixZeroVariance(t *testing.T) {
	records := []models.Record{
		rec("USA", 2019, "X", 5),
		rec("USA", 2020, "X", 5),
		rec("USA", 2019, "Y", 10),
		rec("USA", 2020, "Y", 20),
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	if c := matrix["X"]["Y"]; c != nil {
		t.Errorf("coefficient = %v, want nil for a constant column", *c)
	}
}

// The pivot keeps the first value seen for a duplicate
// (country, year, indicator) cell. The line projection resolves the
// same duplicate the other way; both policies are pinned separately.
func TestMatrixPivotFirstValueWins(t *testing.T) {
	records := []models.Record{
		rec("USA", 2019, "X", 1),
		rec("USA", 2020, "X", 2),
		rec("USA", 2019, "Y", 1),
		rec("USA", 2020, "Y", 2),
		// Duplicate cell: must not displace the 2020 X=2 above. If it
		// did, X would become constant and the coefficient nil.
		rec("USA", 2020, "X", 1),
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	c := matrix["X"]["Y"]
	if c == nil {
		t.Fatal("expected a coefficient; nil suggests the duplicate overwrote the first value")
	}
	if math.Abs(*c-1.0) > 0.01 {
		t.Errorf("coefficient = %v, want ~1.0", *c)
	}
}

func TestMatrixCrossCountryRows(t *testing.T) {
	records := []models.Record{
		rec("USA", 2020, "X", 1),
		rec("USA", 2020, "Y", 10),
		rec("GBR", 2020, "X", 2),
		rec("GBR", 2020, "Y", 20),
		rec("FRA", 2020, "X", 3),
		rec("FRA", 2020, "Y", 30),
	}

	matrix, err := Matrix(records)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	c := matrix["X"]["Y"]
	if c == nil || math.Abs(*c-1.0) > 0.01 {
		t.Errorf("coefficient = %v, want ~1.0 across country rows", c)
	}
}
