package coherence

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
)

func TestPMIBasic(t *testing.T) {
	calc := NewCalculator(1.0)

	// co-occur in 8 of 20 docs, each present in 10
	pmi := calc.PMI(8, 10, 10, 20)
	if pmi <= 0 {
		t.Errorf("PMI for strong association should be positive, got %f", pmi)
	}

	// much rarer together than expected
	pmi = calc.PMI(5, 50, 50, 100)
	if pmi >= 0 {
		t.Errorf("PMI for anti-correlated terms should be negative, got %f", pmi)
	}
}

func TestPMIZeroDocuments(t *testing.T) {
	calc := NewCalculator(-1)
	if got := calc.PMI(0, 0, 0, 0); got != 0 {
		t.Errorf("PMI with zero documents should be 0, got %f", got)
	}
	if got := calc.PMI(5, 10, 10, 100); math.IsNaN(got) {
		t.Error("negative epsilon should fall back to 1.0")
	}
}

func TestNPMIRange(t *testing.T) {
	calc := NewCalculator(1.0)
	for _, tc := range [][4]int64{
		{15, 20, 20, 100},
		{1, 1, 1, 100},
		{50, 50, 50, 100},
		{1, 90, 90, 100},
	} {
		npmi := calc.NPMI(tc[0], tc[1], tc[2], tc[3])
		if npmi < -1 || npmi > 1 {
			t.Errorf("NPMI%v = %f, want within [-1, 1]", tc, npmi)
		}
	}
}

func TestCounterWatchAndDedup(t *testing.T) {
	c := NewCounter("ship", "sail")
	c.AddDocument([]string{"ship", "ship", "sail", "field"})
	c.AddDocument([]string{"sail", "wave"})

	if c.N != 2 {
		t.Errorf("expected 2 documents, got %d", c.N)
	}
	if got := c.TermCount("ship"); got != 1 {
		t.Errorf("ship counted %d times, want 1", got)
	}
	if got := c.TermCount("field"); got != 0 {
		t.Errorf("unwatched term counted %d times", got)
	}
	if c.PairCount("sail", "ship") != 1 || c.PairCount("ship", "sail") != 1 {
		t.Error("pair count should be order independent")
	}
}

func TestScoreSeparatesThemes(t *testing.T) {
	m := &dtm.Matrix{
		Rows:  []string{"a", "b", "c", "d"},
		Terms: []string{"ship", "sail", "field", "grain"},
		Counts: mat.NewDense(4, 4, []float64{
			2, 1, 0, 0,
			1, 3, 0, 0,
			0, 0, 2, 2,
			0, 0, 1, 4,
		}),
	}
	counts := FromMatrix(m)
	calc := NewCalculator(1.0)

	coherent := calc.Score([]string{"ship", "sail"}, counts)
	mixed := calc.Score([]string{"ship", "grain"}, counts)
	if coherent <= mixed {
		t.Errorf("coherent topic scored %f, mixed %f", coherent, mixed)
	}
	if got := calc.Score([]string{"ship"}, counts); got != 0 {
		t.Errorf("single term should score 0, got %f", got)
	}
}
