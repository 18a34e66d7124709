// Package coherence scores topics by how often their top terms co-occur in
// the chunked corpus.
package coherence

import "math"

// Calculator computes smoothed PMI scores.
type Calculator struct {
	epsilon float64 // smoothing constant
}

// NewCalculator creates a calculator; epsilon <= 0 falls back to 1.
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = 1.0
	}
	return &Calculator{epsilon: epsilon}
}

// PMI calculates the pointwise mutual information of two terms
//
// PMI(a,b) = log((N_ab + ε) * N / ((N_a + ε)(N_b + ε)))
func (c *Calculator) PMI(nAB, nA, nB, N int64) float64 {
	if N == 0 {
		return 0
	}

	numerator := (float64(nAB) + c.epsilon) * float64(N)
	denominator := (float64(nA) + c.epsilon) * (float64(nB) + c.epsilon)
	if denominator == 0 {
		return 0
	}
	return math.Log(numerator / denominator)
}

// NPMI normalises PMI into [-1, 1]
// NPMI(a,b) = PMI(a,b) / -log(P(a,b))
func (c *Calculator) NPMI(nAB, nA, nB, N int64) float64 {
	if N == 0 || nAB == 0 {
		return 0
	}

	pAB := (float64(nAB) + c.epsilon) / float64(N)
	logPAB := math.Log(pAB)
	if logPAB == 0 {
		return 0
	}

	npmi := c.PMI(nAB, nA, nB, N) / -logPAB
	return math.Max(-1, math.Min(1, npmi))
}

// Score is the mean NPMI over all pairs of terms. Fewer than two terms
// score 0.
func (c *Calculator) Score(terms []string, counts *Counter) float64 {
	var sum float64
	var pairs int
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			a, b := terms[i], terms[j]
			sum += c.NPMI(counts.PairCount(a, b), counts.TermCount(a), counts.TermCount(b), counts.N)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}
