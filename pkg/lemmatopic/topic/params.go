package topic

import (
	"fmt"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// Params are the sampler settings passed through to the trainer unchanged.
type Params struct {
	K          int     `yaml:"k" json:"k"`
	Seed       int64   `yaml:"seed" json:"seed"`
	BurnIn     int     `yaml:"burn_in" json:"burn_in"`
	Thinning   int     `yaml:"thinning" json:"thinning"`
	Iterations int     `yaml:"iterations" json:"iterations"`
	Alpha      float64 `yaml:"alpha" json:"alpha"`
	Eta        float64 `yaml:"eta" json:"eta"`
}

// DefaultParams returns 25 topics with seed 9161, one burn-in pass,
// thinning 30 and 500 iterations. Alpha and Eta are the sampler's usual
// symmetric priors.
func DefaultParams() Params {
	return Params{
		K:          25,
		Seed:       9161,
		BurnIn:     1,
		Thinning:   30,
		Iterations: 500,
		Alpha:      0.1,
		Eta:        0.01,
	}
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	switch {
	case p.K < 1:
		return fmt.Errorf("%w: topics k must be >= 1, got %d", internalerr.ErrInvalidConfig, p.K)
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations must be >= 1, got %d", internalerr.ErrInvalidConfig, p.Iterations)
	case p.BurnIn < 0:
		return fmt.Errorf("%w: burn_in must be >= 0, got %d", internalerr.ErrInvalidConfig, p.BurnIn)
	case p.Thinning < 1:
		return fmt.Errorf("%w: thinning must be >= 1, got %d", internalerr.ErrInvalidConfig, p.Thinning)
	case p.Alpha <= 0 || p.Eta <= 0:
		return fmt.Errorf("%w: alpha and eta must be positive", internalerr.ErrInvalidConfig)
	}
	return nil
}
